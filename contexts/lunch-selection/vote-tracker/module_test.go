package votetracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/application/commands"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"
)

func TestInMemoryModuleLunchRound(t *testing.T) {
	rules := tracker.DefaultRoundConstraints()
	rules.Selection.MaxVotesPerUser = tracker.Limit(0)
	module := NewInMemoryModule(rules, nil, nil)
	ctx := context.Background()

	opened, err := module.Sessions.OpenSession(ctx, commands.OpenSessionCommand{})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	sessionID := opened.SessionID

	nominations := []commands.CastVoteCommand{
		{UserID: "ana", RestaurantID: "gracies", RestaurantName: "Gracie's"},
		{UserID: "ben", RestaurantID: "gracies"},
		{UserID: "cai", RestaurantID: "nandos", RestaurantName: "Nando's"},
		{UserID: "ana", RestaurantID: "pho", RestaurantName: "Pho 24"},
		{UserID: "ben", RestaurantID: "pho"},
		{UserID: "cai", RestaurantID: "pho"},
		{UserID: "dee", RestaurantID: "tacos", RestaurantName: "Taco Bar"},
	}
	for _, cmd := range nominations {
		cmd.SessionID = sessionID
		if _, err := module.Sessions.CastVote(ctx, cmd); err != nil {
			t.Fatalf("nomination vote %+v failed: %v", cmd, err)
		}
	}

	closed, err := module.Sessions.CloseNomination(ctx, sessionID)
	if err != nil {
		t.Fatalf("close nomination failed: %v", err)
	}
	want := []string{"pho", "gracies", "nandos"}
	if len(closed.Shortlist) != len(want) {
		t.Fatalf("expected %d shortlisted, got %+v", len(want), closed.Shortlist)
	}
	for i, restaurant := range closed.Shortlist {
		if restaurant.ID != want[i] {
			t.Fatalf("shortlist[%d]: expected %s, got %s", i, want[i], restaurant.ID)
		}
	}

	total, err := module.Tallies.TotalVotes(ctx, sessionID)
	if err != nil || total != 0 {
		t.Fatalf("expected tallies reset after close, got %d (%v)", total, err)
	}

	if _, err := module.Sessions.CastVote(ctx, commands.CastVoteCommand{SessionID: sessionID, UserID: "ana", RestaurantID: "pho"}); err != nil {
		t.Fatalf("selection vote failed: %v", err)
	}
	_, err = module.Sessions.CastVote(ctx, commands.CastVoteCommand{SessionID: sessionID, UserID: "ben", RestaurantID: "burgers"})
	var violation *domainerrors.ConstraintViolation
	if !errors.As(err, &violation) || violation.Constraint != "no_new_restaurants" {
		t.Fatalf("expected no_new_restaurants violation, got %v", err)
	}
	_, err = module.Sessions.CastVote(ctx, commands.CastVoteCommand{SessionID: sessionID, UserID: "ana", RestaurantID: "gracies"})
	if !errors.As(err, &violation) || violation.Constraint != "max_votes_per_user(0)" {
		t.Fatalf("expected per-user cap violation, got %v", err)
	}

	snapshot, err := module.Tallies.Snapshot(ctx, sessionID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if snapshot.CurrentState != entities.SelectionPhase || snapshot.TotalVotes != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal snapshot failed: %v", err)
	}
	if decoded["current_state"] != "selection" {
		t.Fatalf("expected textual state in snapshot, got %v", decoded["current_state"])
	}
}
