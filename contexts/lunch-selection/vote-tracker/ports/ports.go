package ports

import (
	"context"
	"time"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/domain/tracker"
	contractsv1 "lunchlauncher/contracts/gen/events/v1"
)

// SessionRepository owns live trackers keyed by session ID.
// WithSession runs fn as one critical section for that session.
type SessionRepository interface {
	CreateSession(ctx context.Context, sessionID string, vt *tracker.VoteTracker) error
	WithSession(ctx context.Context, sessionID string, fn func(vt *tracker.VoteTracker) error) error
	DeleteSession(ctx context.Context, sessionID string) error
}

type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
