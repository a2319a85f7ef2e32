package tracker

import (
	"fmt"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
)

// PhaseRules is the declarative rule set for one phase.
// A nil MaxVotesPerUser means no per-user cap.
type PhaseRules struct {
	MaxVotesPerUser  *int
	NoNewRestaurants bool
}

// RoundConstraints is the value-object form of per-phase rules. Apply turns
// it into regular constraints, so limits keep the inclusive MaxVotesPerUser
// semantics.
type RoundConstraints struct {
	Nomination PhaseRules
	Selection  PhaseRules
}

// DefaultRoundConstraints blocks brand-new candidates once selection starts
// and sets no vote caps.
func DefaultRoundConstraints() RoundConstraints {
	return RoundConstraints{
		Selection: PhaseRules{NoNewRestaurants: true},
	}
}

func (rc RoundConstraints) Validate() error {
	for _, state := range entities.States {
		rules := rc.For(state)
		if rules.MaxVotesPerUser != nil && *rules.MaxVotesPerUser < 0 {
			return fmt.Errorf("%w: %s max_votes_per_user must not be negative", domainerrors.ErrInvalidRules, state)
		}
	}
	return nil
}

func (rc RoundConstraints) For(state entities.State) PhaseRules {
	if state == entities.SelectionPhase {
		return rc.Selection
	}
	return rc.Nomination
}

// Constraints expands the rules of one phase in a fixed order: vote cap
// first, then the candidate lock.
func (r PhaseRules) Constraints() []Constraint {
	var items []Constraint
	if r.MaxVotesPerUser != nil {
		items = append(items, MaxVotesPerUser{Limit: *r.MaxVotesPerUser})
	}
	if r.NoNewRestaurants {
		items = append(items, NoNewRestaurants{})
	}
	return items
}

// Apply registers the rules of every phase on t.
func (rc RoundConstraints) Apply(t *VoteTracker) error {
	if t == nil {
		return domainerrors.ErrInvalidArgument
	}
	if err := rc.Validate(); err != nil {
		return err
	}
	for _, state := range entities.States {
		for _, constraint := range rc.For(state).Constraints() {
			if err := t.SetConstraints(state, constraint); err != nil {
				return err
			}
		}
	}
	return nil
}

// Limit is a helper for building PhaseRules literals.
func Limit(n int) *int {
	return &n
}
