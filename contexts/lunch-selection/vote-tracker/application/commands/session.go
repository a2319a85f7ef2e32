package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "lunchlauncher/contexts/lunch-selection/vote-tracker/application"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/entities"
	domainerrors "lunchlauncher/contexts/lunch-selection/vote-tracker/domain/errors"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"
	"lunchlauncher/contexts/lunch-selection/vote-tracker/ports"
)

// OpenSessionCommand starts a voting session. Nil Rules falls back to the
// use case defaults.
type OpenSessionCommand struct {
	Rules *tracker.RoundConstraints
}

type OpenSessionResult struct {
	SessionID string
	Phase     entities.State
}

// AddConstraintCommand registers one more constraint on a live session.
type AddConstraintCommand struct {
	SessionID  string
	Phase      entities.State
	Constraint tracker.Constraint
}

type CastVoteCommand struct {
	SessionID      string
	UserID         string
	UserLabel      string
	RestaurantID   string
	RestaurantName string
}

// CastVoteResult carries the tallies as they stood right after the vote.
type CastVoteResult struct {
	SessionID       string
	Phase           entities.State
	UserVotes       int
	RestaurantVotes int
	TotalVotes      int
}

type CloseNominationResult struct {
	SessionID string
	Shortlist []entities.Restaurant
	Phase     entities.State
}

// SessionUseCase drives voting sessions. Each tracker call runs inside the
// repository's per-session critical section; events are published after the
// section ends. Sessions and IDGen are required; Events and Clock are
// optional.
type SessionUseCase struct {
	Sessions ports.SessionRepository
	Events   ports.EventPublisher
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Rules    tracker.RoundConstraints
	Logger   *slog.Logger
}

func (uc SessionUseCase) OpenSession(ctx context.Context, cmd OpenSessionCommand) (OpenSessionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if uc.Sessions == nil || uc.IDGen == nil {
		return OpenSessionResult{}, domainerrors.ErrInvalidArgument
	}
	rules := uc.Rules
	if cmd.Rules != nil {
		rules = *cmd.Rules
	}

	vt := tracker.New()
	if err := rules.Apply(vt); err != nil {
		logger.Warn("session rules rejected",
			"event", "lunch_session_rules_rejected",
			"module", "lunch-selection/vote-tracker",
			"layer", "application",
			"error", err.Error(),
		)
		return OpenSessionResult{}, err
	}

	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return OpenSessionResult{}, err
	}
	if err := uc.Sessions.CreateSession(ctx, sessionID, vt); err != nil {
		logger.Error("session create failed",
			"event", "lunch_session_create_failed",
			"module", "lunch-selection/vote-tracker",
			"layer", "application",
			"session_id", sessionID,
			"error", err.Error(),
		)
		return OpenSessionResult{}, err
	}

	uc.publish(ctx, EventSessionOpened, sessionID, map[string]any{
		"session_id":  sessionID,
		"phase":       vt.CurrentState().String(),
		"constraints": vt.Snapshot().PhaseConstraints,
	})
	logger.Info("session opened",
		"event", "lunch_session_opened",
		"module", "lunch-selection/vote-tracker",
		"layer", "application",
		"session_id", sessionID,
	)
	return OpenSessionResult{SessionID: sessionID, Phase: vt.CurrentState()}, nil
}

func (uc SessionUseCase) AddConstraint(ctx context.Context, cmd AddConstraintCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	sessionID := strings.TrimSpace(cmd.SessionID)
	if uc.Sessions == nil || sessionID == "" || cmd.Constraint == nil {
		return domainerrors.ErrInvalidArgument
	}
	err := uc.Sessions.WithSession(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		return vt.SetConstraints(cmd.Phase, cmd.Constraint)
	})
	if err != nil {
		return err
	}
	logger.Info("session constraint added",
		"event", "lunch_session_constraint_added",
		"module", "lunch-selection/vote-tracker",
		"layer", "application",
		"session_id", sessionID,
		"phase", cmd.Phase.String(),
		"constraint", cmd.Constraint.Name(),
	)
	return nil
}

// CastVote logs a vote. A constraint rejection is returned as
// *domainerrors.ConstraintViolation and published as vote.rejected.
func (uc SessionUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID := strings.TrimSpace(cmd.SessionID)
	user := entities.NewUser(cmd.UserID, cmd.UserLabel)
	restaurant := entities.NewRestaurant(cmd.RestaurantID, cmd.RestaurantName)
	if uc.Sessions == nil || sessionID == "" || user.IsZero() || restaurant.IsZero() {
		logger.Warn("vote validation failed",
			"event", "lunch_vote_validation_failed",
			"module", "lunch-selection/vote-tracker",
			"layer", "application",
			"session_id", sessionID,
			"user_id", user.ID,
			"restaurant_id", restaurant.ID,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidArgument
	}

	result := CastVoteResult{SessionID: sessionID}
	err := uc.Sessions.WithSession(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		result.Phase = vt.CurrentState()
		if err := vt.LogVote(user, restaurant); err != nil {
			return err
		}
		votes, err := vt.VotesForRestaurant(restaurant)
		if err != nil {
			return err
		}
		result.UserVotes = vt.VotesForUser(user)
		result.RestaurantVotes = votes
		result.TotalVotes = vt.TotalVotes()
		return nil
	})

	var violation *domainerrors.ConstraintViolation
	if errors.As(err, &violation) {
		uc.publish(ctx, EventVoteRejected, sessionID, map[string]any{
			"session_id":    sessionID,
			"user_id":       user.ID,
			"restaurant_id": restaurant.ID,
			"phase":         violation.Phase.String(),
			"constraint":    violation.Constraint,
		})
		logger.Warn("vote rejected by constraint",
			"event", "lunch_vote_rejected",
			"module", "lunch-selection/vote-tracker",
			"layer", "application",
			"session_id", sessionID,
			"user_id", user.ID,
			"restaurant_id", restaurant.ID,
			"phase", violation.Phase.String(),
			"constraint", violation.Constraint,
		)
		return CastVoteResult{}, err
	}
	if err != nil {
		return CastVoteResult{}, err
	}

	uc.publish(ctx, EventVoteLogged, sessionID, map[string]any{
		"session_id":       sessionID,
		"user_id":          user.ID,
		"restaurant_id":    restaurant.ID,
		"restaurant_name":  restaurant.Name,
		"phase":            result.Phase.String(),
		"user_votes":       result.UserVotes,
		"restaurant_votes": result.RestaurantVotes,
	})
	logger.Info("vote logged",
		"event", "lunch_vote_logged",
		"module", "lunch-selection/vote-tracker",
		"layer", "application",
		"session_id", sessionID,
		"user_id", user.ID,
		"restaurant_id", restaurant.ID,
		"phase", result.Phase.String(),
		"total_votes", result.TotalVotes,
	)
	return result, nil
}

// CloseNomination ends the nomination phase and returns the shortlist that
// seeds the selection round.
func (uc SessionUseCase) CloseNomination(ctx context.Context, sessionID string) (CloseNominationResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID = strings.TrimSpace(sessionID)
	if uc.Sessions == nil || sessionID == "" {
		return CloseNominationResult{}, domainerrors.ErrInvalidArgument
	}

	result := CloseNominationResult{SessionID: sessionID}
	err := uc.Sessions.WithSession(ctx, sessionID, func(vt *tracker.VoteTracker) error {
		shortlist, err := vt.CloseNominationPhase()
		if err != nil {
			return err
		}
		result.Shortlist = shortlist
		result.Phase = vt.CurrentState()
		return nil
	})
	if err != nil {
		logger.Warn("nomination close failed",
			"event", "lunch_nomination_close_failed",
			"module", "lunch-selection/vote-tracker",
			"layer", "application",
			"session_id", sessionID,
			"error", err.Error(),
		)
		return CloseNominationResult{}, err
	}

	shortlistIDs := make([]string, 0, len(result.Shortlist))
	for _, restaurant := range result.Shortlist {
		shortlistIDs = append(shortlistIDs, restaurant.ID)
	}
	uc.publish(ctx, EventNominationClosed, sessionID, map[string]any{
		"session_id": sessionID,
		"phase":      result.Phase.String(),
		"shortlist":  shortlistIDs,
	})
	logger.Info("nomination closed",
		"event", "lunch_nomination_closed",
		"module", "lunch-selection/vote-tracker",
		"layer", "application",
		"session_id", sessionID,
		"shortlist", shortlistIDs,
	)
	return result, nil
}

// EndSession discards the session's tracker.
func (uc SessionUseCase) EndSession(ctx context.Context, sessionID string) error {
	logger := application.ResolveLogger(uc.Logger)
	sessionID = strings.TrimSpace(sessionID)
	if uc.Sessions == nil || sessionID == "" {
		return domainerrors.ErrInvalidArgument
	}
	if err := uc.Sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	logger.Info("session ended",
		"event", "lunch_session_ended",
		"module", "lunch-selection/vote-tracker",
		"layer", "application",
		"session_id", sessionID,
	)
	return nil
}

// publish is best effort: the tracker has already changed by the time an
// event goes out, so failures are logged rather than returned.
func (uc SessionUseCase) publish(ctx context.Context, eventType string, sessionID string, data map[string]any) {
	if uc.Events == nil {
		return
	}
	logger := application.ResolveLogger(uc.Logger)
	var (
		eventID string
		err     = domainerrors.ErrInvalidArgument
	)
	if uc.IDGen != nil {
		eventID, err = uc.IDGen.NewID(ctx)
	}
	if err == nil {
		var envelope ports.EventEnvelope
		envelope, err = newTrackerEnvelope(eventID, eventType, sessionID, uc.now(), data)
		if err == nil {
			err = uc.Events.Publish(ctx, eventType, envelope)
		}
	}
	if err != nil {
		logger.Warn("tracker event publish failed",
			"event", "lunch_event_publish_failed",
			"module", "lunch-selection/vote-tracker",
			"layer", "application",
			"session_id", sessionID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (uc SessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
