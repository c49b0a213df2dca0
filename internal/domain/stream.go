package domain

import "github.com/google/uuid"

// Stream names (must match the publishing tracker backend)
const (
	StreamFeedIngest   = "stream:feed:ingest"
	StreamSceneUpdated = "stream:scene:updated"
)

// FeedIngestEvent - raw feed payload queued for decoding. Payload is the
// untouched response body, JSON or XML.
type FeedIngestEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	Payload   string    `json:"payload"`
}

// SceneUpdatedEvent - published after a feed has been decoded and
// installed into its session.
type SceneUpdatedEvent struct {
	SessionID    uuid.UUID `json:"session_id"`
	Sequence     uint64    `json:"sequence"`
	DatasetCount int       `json:"dataset_count"`
	PushpinCount int       `json:"pushpin_count"`
	Error        string    `json:"error,omitempty"`
}

// StreamMessage - message read from a Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
