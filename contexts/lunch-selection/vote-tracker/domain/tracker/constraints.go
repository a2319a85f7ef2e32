package tracker

import (
	"fmt"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
)

// TallyReader is the read-only view of a tracker handed to constraints.
type TallyReader interface {
	VotesForUser(user entities.User) int
	KnowsRestaurant(restaurant entities.Restaurant) bool
}

// Constraint vetoes votes during the phase it is registered for.
// Validate runs before the vote is recorded and must not mutate state.
type Constraint interface {
	Name() string
	Validate(user entities.User, restaurant entities.Restaurant, tallies TallyReader) bool
}

// MaxVotesPerUser passes while the user's current tally is at most Limit.
// The check is inclusive, so a user can land Limit+1 votes in one phase.
type MaxVotesPerUser struct {
	Limit int
}

func (c MaxVotesPerUser) Name() string {
	return fmt.Sprintf("max_votes_per_user(%d)", c.Limit)
}

func (c MaxVotesPerUser) Validate(user entities.User, _ entities.Restaurant, tallies TallyReader) bool {
	return tallies.VotesForUser(user) <= c.Limit
}

// NoNewRestaurants only accepts restaurants that already received a vote.
// Tallies reset to zero still count as known.
type NoNewRestaurants struct{}

func (NoNewRestaurants) Name() string {
	return "no_new_restaurants"
}

func (NoNewRestaurants) Validate(_ entities.User, restaurant entities.Restaurant, tallies TallyReader) bool {
	return tallies.KnowsRestaurant(restaurant)
}

var (
	_ Constraint = MaxVotesPerUser{}
	_ Constraint = NoNewRestaurants{}
)
