package queries

import (
	"context"
	"errors"
	"testing"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/adapters/memory"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"
)

func seededStore(t *testing.T, sessionID string, votes [][2]string) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	vt := tracker.New()
	for _, vote := range votes {
		if err := vt.LogVote(entities.NewUser(vote[0], ""), entities.NewRestaurant(vote[1], "")); err != nil {
			t.Fatalf("seed vote %v failed: %v", vote, err)
		}
	}
	if err := store.CreateSession(context.Background(), sessionID, vt); err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	return store
}

func TestTallyQueries(t *testing.T) {
	store := seededStore(t, "s1", [][2]string{{"u1", "r1"}, {"u1", "r2"}, {"u2", "r1"}})
	uc := TallyUseCase{Sessions: store}
	ctx := context.Background()

	userVotes, err := uc.UserVotes(ctx, "s1", "u1")
	if err != nil || userVotes != 2 {
		t.Fatalf("expected 2 votes for u1, got %d (%v)", userVotes, err)
	}
	unseen, err := uc.UserVotes(ctx, "s1", "u9")
	if err != nil || unseen != 0 {
		t.Fatalf("expected 0 votes for unseen user, got %d (%v)", unseen, err)
	}
	restaurantVotes, err := uc.RestaurantVotes(ctx, "s1", "r1")
	if err != nil || restaurantVotes != 2 {
		t.Fatalf("expected 2 votes for r1, got %d (%v)", restaurantVotes, err)
	}
	if _, err := uc.RestaurantVotes(ctx, "s1", "r9"); !errors.Is(err, domainerrors.ErrUnknownRestaurant) {
		t.Fatalf("expected unknown restaurant, got %v", err)
	}
	total, err := uc.TotalVotes(ctx, "s1")
	if err != nil || total != 3 {
		t.Fatalf("expected 3 total votes, got %d (%v)", total, err)
	}
	phase, err := uc.CurrentPhase(ctx, "s1")
	if err != nil || phase != entities.NominationPhase {
		t.Fatalf("expected nomination phase, got %s (%v)", phase, err)
	}
}

func TestStandingsShareRankOnTies(t *testing.T) {
	store := seededStore(t, "s2", [][2]string{
		{"u1", "r1"},
		{"u2", "r2"},
		{"u3", "r2"},
		{"u4", "r3"},
		{"u5", "r1"},
		{"u6", "r4"},
	})
	uc := TallyUseCase{Sessions: store}

	standings, err := uc.Standings(context.Background(), "s2")
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	want := []struct {
		id    string
		votes int
		rank  int
	}{
		{"r1", 2, 1},
		{"r2", 2, 1},
		{"r3", 1, 3},
		{"r4", 1, 3},
	}
	if len(standings) != len(want) {
		t.Fatalf("expected %d standings, got %d", len(want), len(standings))
	}
	for i, item := range standings {
		if item.Restaurant.ID != want[i].id || item.Votes != want[i].votes || item.Rank != want[i].rank {
			t.Fatalf("standings[%d]: expected %+v, got %+v", i, want[i], item)
		}
	}
}

func TestSnapshotQuery(t *testing.T) {
	store := seededStore(t, "s3", [][2]string{{"u2", "r1"}, {"u1", "r1"}})
	uc := TallyUseCase{Sessions: store}

	snapshot, err := uc.Snapshot(context.Background(), "s3")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if snapshot.TotalVotes != 2 || len(snapshot.UserVotes) != 2 || len(snapshot.RestaurantVotes) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.CurrentState != entities.NominationPhase {
		t.Fatalf("expected nomination state, got %s", snapshot.CurrentState)
	}
}

func TestQueriesRequireSession(t *testing.T) {
	uc := TallyUseCase{Sessions: memory.NewStore()}
	ctx := context.Background()

	if _, err := uc.TotalVotes(ctx, " "); !errors.Is(err, domainerrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := uc.Standings(ctx, "missing"); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}
