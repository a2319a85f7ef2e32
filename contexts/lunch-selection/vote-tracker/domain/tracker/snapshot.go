package tracker

import (
	"sort"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
)

// Snapshot is the serializable layout of a tracker. Field names are part of
// the compatibility contract and must not change.
type Snapshot struct {
	CurrentState     entities.State      `json:"current_state"`
	UserVotes        []UserTally         `json:"user_votes"`
	RestaurantVotes  []RestaurantTally   `json:"restaurant_votes"`
	PhaseConstraints map[string][]string `json:"phase_constraints"`
	TotalVotes       int                 `json:"total_votes"`
}

type UserTally struct {
	UserID string `json:"user_id"`
	Votes  int    `json:"votes"`
}

type RestaurantTally struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name,omitempty"`
	Votes        int    `json:"votes"`
}

// Snapshot copies the tracker state. User tallies are sorted by ID and
// restaurant tallies keep first-vote order.
func (t *VoteTracker) Snapshot() Snapshot {
	users := make([]UserTally, 0, len(t.userVotes))
	for id, votes := range t.userVotes {
		users = append(users, UserTally{UserID: id, Votes: votes})
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].UserID < users[j].UserID
	})

	restaurants := make([]RestaurantTally, 0, len(t.restaurants))
	for _, restaurant := range t.restaurants {
		restaurants = append(restaurants, RestaurantTally{
			RestaurantID: restaurant.ID,
			Name:         restaurant.Name,
			Votes:        t.restaurantVotes[identity(restaurant.ID)],
		})
	}

	constraints := make(map[string][]string, len(t.phaseConstraints))
	for state, items := range t.phaseConstraints {
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Name())
		}
		constraints[state.String()] = names
	}

	return Snapshot{
		CurrentState:     t.currentState,
		UserVotes:        users,
		RestaurantVotes:  restaurants,
		PhaseConstraints: constraints,
		TotalVotes:       t.TotalVotes(),
	}
}
