// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// activityQueueName is the single durable queue carrying tracker activity.
const activityQueueName = "tracker.activity"

// Event types carried on the activity queue.
const (
	TypeShowCompleted   = "show.completed"
	TypeImportCompleted = "import.completed"
)

// Envelope wraps every published event with an id, type tag and timestamp so
// downstream consumers can route without knowing each payload shape.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload (already marshaled) under a fresh event id.
func NewEnvelope(eventType string, payload []byte) Envelope {
	return Envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	}
}

// ShowCompletedEvent is published when a show's status transition lands on
// COMPLETED.  It contains enough information for downstream consumers to
// log or notify without querying the primary database.
type ShowCompletedEvent struct {
	ShowID          uint64 `json:"show_id"`
	Title           string `json:"title"`
	TotalEpisodes   uint32 `json:"total_episodes"`
	WatchedEpisodes uint32 `json:"watched_episodes"`
	CompletedAt     string `json:"completed_at"`
}

// ImportCompletedEvent is published after a MAL list import or a YouTube
// playlist import finishes.
type ImportCompletedEvent struct {
	Source     string `json:"source"`  // "mal" or "youtube"
	Subject    string `json:"subject"` // username or playlist id
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	FinishedAt string `json:"finished_at"`
}
