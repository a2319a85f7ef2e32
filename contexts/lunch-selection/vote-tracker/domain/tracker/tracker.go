package tracker

import (
	"sort"
	"strings"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
)

// ShortlistSize is how many restaurants survive the nomination phase.
const ShortlistSize = 3

// VoteTracker tallies votes for one voting session.
//
// It is not safe for concurrent use. Callers sharing a tracker must run
// LogVote, CloseNominationPhase and SetConstraints inside one critical
// section per tracker.
type VoteTracker struct {
	userVotes       map[string]int
	restaurantVotes map[string]int
	// restaurants holds known restaurants in first-vote order; keys are
	// never removed, so the order survives tally resets.
	restaurants      []entities.Restaurant
	phaseConstraints map[entities.State][]Constraint
	currentState     entities.State
}

func New() *VoteTracker {
	constraints := make(map[entities.State][]Constraint, len(entities.States))
	for _, state := range entities.States {
		constraints[state] = nil
	}
	return &VoteTracker{
		userVotes:        make(map[string]int),
		restaurantVotes:  make(map[string]int),
		phaseConstraints: constraints,
		currentState:     entities.NominationPhase,
	}
}

func (t *VoteTracker) CurrentState() entities.State {
	return t.currentState
}

// SetConstraints appends constraint to the list evaluated during state.
func (t *VoteTracker) SetConstraints(state entities.State, constraint Constraint) error {
	if constraint == nil || !state.Valid() {
		return domainerrors.ErrInvalidArgument
	}
	t.phaseConstraints[state] = append(t.phaseConstraints[state], constraint)
	return nil
}

// Constraints returns a copy of the constraints registered for state.
func (t *VoteTracker) Constraints(state entities.State) []Constraint {
	items := t.phaseConstraints[state]
	out := make([]Constraint, len(items))
	copy(out, items)
	return out
}

// LogVote records one vote after every constraint of the current phase
// accepts it. A rejected vote leaves all tallies untouched.
func (t *VoteTracker) LogVote(user entities.User, restaurant entities.Restaurant) error {
	if user.IsZero() || restaurant.IsZero() {
		return domainerrors.ErrInvalidArgument
	}
	for _, constraint := range t.phaseConstraints[t.currentState] {
		if !constraint.Validate(user, restaurant, t) {
			return &domainerrors.ConstraintViolation{
				Constraint: constraint.Name(),
				Phase:      t.currentState,
				User:       user,
				Restaurant: restaurant,
			}
		}
	}

	restaurantID := identity(restaurant.ID)
	if _, known := t.restaurantVotes[restaurantID]; !known {
		restaurant.ID = restaurantID
		t.restaurants = append(t.restaurants, restaurant)
	}
	t.userVotes[identity(user.ID)]++
	t.restaurantVotes[restaurantID]++
	return nil
}

// VotesForUser returns the user's tally, or 0 for a user who never voted.
func (t *VoteTracker) VotesForUser(user entities.User) int {
	return t.userVotes[identity(user.ID)]
}

// VotesForRestaurant returns the restaurant's tally. Asking about a
// restaurant that never received a vote is a caller bug.
func (t *VoteTracker) VotesForRestaurant(restaurant entities.Restaurant) (int, error) {
	votes, ok := t.restaurantVotes[identity(restaurant.ID)]
	if !ok {
		return 0, domainerrors.ErrUnknownRestaurant
	}
	return votes, nil
}

func (t *VoteTracker) KnowsRestaurant(restaurant entities.Restaurant) bool {
	_, ok := t.restaurantVotes[identity(restaurant.ID)]
	return ok
}

// Restaurants returns the known restaurants in first-vote order.
func (t *VoteTracker) Restaurants() []entities.Restaurant {
	out := make([]entities.Restaurant, len(t.restaurants))
	copy(out, t.restaurants)
	return out
}

func (t *VoteTracker) TotalVotes() int {
	total := 0
	for _, votes := range t.userVotes {
		total += votes
	}
	return total
}

// Ranked returns every known restaurant ordered by descending tally.
// Ties keep first-vote order.
func (t *VoteTracker) Ranked() []entities.Restaurant {
	ranked := t.Restaurants()
	sort.SliceStable(ranked, func(i, j int) bool {
		return t.restaurantVotes[identity(ranked[i].ID)] > t.restaurantVotes[identity(ranked[j].ID)]
	})
	return ranked
}

// CloseNominationPhase picks the shortlist, zeroes every tally and moves the
// tracker into the selection phase. The shortlist is ranked on the tallies
// as they stood before the reset.
func (t *VoteTracker) CloseNominationPhase() ([]entities.Restaurant, error) {
	if t.currentState != entities.NominationPhase {
		return nil, domainerrors.ErrNominationClosed
	}

	shortlist := t.Ranked()
	if len(shortlist) > ShortlistSize {
		shortlist = shortlist[:ShortlistSize]
	}

	for id := range t.userVotes {
		t.userVotes[id] = 0
	}
	for id := range t.restaurantVotes {
		t.restaurantVotes[id] = 0
	}
	t.currentState = entities.SelectionPhase
	return shortlist, nil
}

func identity(id string) string {
	return strings.TrimSpace(id)
}

var _ TallyReader = (*VoteTracker)(nil)
