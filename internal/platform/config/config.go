package config

import (
	"fmt"
	"strings"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"

	"github.com/caarlos0/env/v11"
)

// Config is centralized process configuration.
// Vote limits below zero mean "no cap" for that phase.
type Config struct {
	ServiceName               string `env:"SERVICE_NAME"                  envDefault:"lunchlauncher"`
	NominationMaxVotesPerUser int    `env:"NOMINATION_MAX_VOTES_PER_USER" envDefault:"-1"`
	SelectionMaxVotesPerUser  int    `env:"SELECTION_MAX_VOTES_PER_USER"  envDefault:"-1"`
	SelectionLockCandidates   bool   `env:"SELECTION_LOCK_CANDIDATES"     envDefault:"true"`
	RulesFile                 string `env:"VOTE_RULES_FILE"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.ServiceName = strings.TrimSpace(cfg.ServiceName)
	if cfg.ServiceName == "" {
		cfg.ServiceName = "lunchlauncher"
	}
	cfg.RulesFile = strings.TrimSpace(cfg.RulesFile)
	return cfg, nil
}

// RoundConstraints resolves the session rules. A rules file, when set,
// replaces the env-derived limits entirely.
func (c Config) RoundConstraints() (tracker.RoundConstraints, error) {
	if c.RulesFile != "" {
		return LoadRules(c.RulesFile)
	}
	return tracker.RoundConstraints{
		Nomination: tracker.PhaseRules{
			MaxVotesPerUser: limitFromEnv(c.NominationMaxVotesPerUser),
		},
		Selection: tracker.PhaseRules{
			MaxVotesPerUser:  limitFromEnv(c.SelectionMaxVotesPerUser),
			NoNewRestaurants: c.SelectionLockCandidates,
		},
	}, nil
}

func limitFromEnv(value int) *int {
	if value < 0 {
		return nil
	}
	return tracker.Limit(value)
}
