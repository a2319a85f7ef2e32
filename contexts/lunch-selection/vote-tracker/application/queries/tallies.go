package queries

import (
	"context"
	"strings"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/ports"
)

// Standing is one row of a session leaderboard. Rank is 1-based.
type Standing struct {
	Restaurant entities.Restaurant
	Votes      int
	Rank       int
}

type TallyUseCase struct {
	Sessions ports.SessionRepository
}

func (uc TallyUseCase) UserVotes(ctx context.Context, sessionID string, userID string) (int, error) {
	var votes int
	err := uc.read(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		votes = vt.VotesForUser(entities.NewUser(userID, ""))
		return nil
	})
	return votes, err
}

func (uc TallyUseCase) RestaurantVotes(ctx context.Context, sessionID string, restaurantID string) (int, error) {
	var votes int
	err := uc.read(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		var err error
		votes, err = vt.VotesForRestaurant(entities.NewRestaurant(restaurantID, ""))
		return err
	})
	return votes, err
}

func (uc TallyUseCase) TotalVotes(ctx context.Context, sessionID string) (int, error) {
	var total int
	err := uc.read(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		total = vt.TotalVotes()
		return nil
	})
	return total, err
}

func (uc TallyUseCase) CurrentPhase(ctx context.Context, sessionID string) (entities.State, error) {
	var phase entities.State
	err := uc.read(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		phase = vt.CurrentState()
		return nil
	})
	return phase, err
}

func (uc TallyUseCase) Snapshot(ctx context.Context, sessionID string) (tracker.Snapshot, error) {
	var snapshot tracker.Snapshot
	err := uc.read(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		snapshot = vt.Snapshot()
		return nil
	})
	return snapshot, err
}

// Standings ranks every known restaurant by its current tally. Equal tallies
// share a rank and keep first-vote order.
func (uc TallyUseCase) Standings(ctx context.Context, sessionID string) ([]Standing, error) {
	var items []Standing
	err := uc.read(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		ranked := vt.Ranked()
		items = make([]Standing, 0, len(ranked))
		for i, restaurant := range ranked {
			votes, err := vt.VotesForRestaurant(restaurant)
			if err != nil {
				return err
			}
			rank := i + 1
			if i > 0 && items[i-1].Votes == votes {
				rank = items[i-1].Rank
			}
			items = append(items, Standing{
				Restaurant: restaurant,
				Votes:      votes,
				Rank:       rank,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (uc TallyUseCase) read(ctx context.Context, sessionID string, fn func(vt *tracker.VoteTracker) error) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domainerrors.ErrInvalidArgument
	}
	return uc.Sessions.WithSession(ctx, sessionID, fn)
}
