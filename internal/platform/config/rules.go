package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"

	"gopkg.in/yaml.v3"
)

// RulesFile is the YAML layout of a vote rules file:
//
//	nomination:
//	  max_votes_per_user: 5
//	selection:
//	  max_votes_per_user: 1
//	  no_new_restaurants: true
type RulesFile struct {
	Nomination PhaseRulesFile `yaml:"nomination"`
	Selection  PhaseRulesFile `yaml:"selection"`
}

type PhaseRulesFile struct {
	MaxVotesPerUser  *int `yaml:"max_votes_per_user"`
	NoNewRestaurants bool `yaml:"no_new_restaurants"`
}

// LoadRules loads vote rules from a YAML file.
func LoadRules(path string) (tracker.RoundConstraints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tracker.RoundConstraints{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules. Unknown keys are rejected so a typo cannot
// silently drop a limit.
func ParseRules(data []byte) (tracker.RoundConstraints, error) {
	var file RulesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return tracker.RoundConstraints{}, fmt.Errorf("%w: parse rules file: %v", domainerrors.ErrInvalidRules, err)
	}

	rules := tracker.RoundConstraints{
		Nomination: file.Nomination.toPhaseRules(),
		Selection:  file.Selection.toPhaseRules(),
	}
	if err := rules.Validate(); err != nil {
		return tracker.RoundConstraints{}, err
	}
	return rules, nil
}

func (p PhaseRulesFile) toPhaseRules() tracker.PhaseRules {
	rules := tracker.PhaseRules{NoNewRestaurants: p.NoNewRestaurants}
	if p.MaxVotesPerUser != nil {
		rules.MaxVotesPerUser = tracker.Limit(*p.MaxVotesPerUser)
	}
	return rules
}
