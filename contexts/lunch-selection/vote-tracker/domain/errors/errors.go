package errors

import (
	"errors"
	"fmt"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
)

var (
	ErrConstraintViolation = errors.New("vote rejected by phase constraint")
	ErrUnknownRestaurant   = errors.New("restaurant is not known to the tracker")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNominationClosed    = errors.New("nomination phase is already closed")
	ErrSessionNotFound     = errors.New("voting session not found")
	ErrInvalidRules        = errors.New("invalid round rules")
)

// ConstraintViolation names the first constraint that vetoed a vote.
// It matches ErrConstraintViolation under errors.Is.
type ConstraintViolation struct {
	Constraint string
	Phase      entities.State
	User       entities.User
	Restaurant entities.Restaurant
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s: %s rejected vote by %s for %s during %s",
		ErrConstraintViolation.Error(),
		e.Constraint,
		e.User.ID,
		e.Restaurant.ID,
		e.Phase,
	)
}

func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}
