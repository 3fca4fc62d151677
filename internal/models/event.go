package models

import "time"

// EventType names a service event pushed to realtime subscribers.
type EventType string

const (
	// EventCacheFilled is emitted after an upstream fetch populated a cache key.
	EventCacheFilled EventType = "cache_filled"
	// EventCacheCleared is emitted after the whole cache was flushed.
	EventCacheCleared EventType = "cache_cleared"
)

type Event struct {
	Type EventType `json:"type"`
	Key  string    `json:"key,omitempty"`
	At   time.Time `json:"at"`
}
