package commands

import (
	"encoding/json"
	"time"

	"lunchlauncher/contexts/lunch-selection/vote-tracker/ports"
)

const (
	EventSessionOpened    = "lunch_session.opened"
	EventVoteLogged       = "vote.logged"
	EventVoteRejected     = "vote.rejected"
	EventNominationClosed = "nomination.closed"
)

func newTrackerEnvelope(
	eventID string,
	eventType string,
	sessionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Events are partitioned by session so consumers see one session in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "vote-tracker",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "session_id",
		PartitionKey:     sessionID,
		Data:             payload,
	}, nil
}
