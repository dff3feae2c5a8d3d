package model

import "time"

// ConversationSummary is one conversation observed in dependency telemetry
// within the lookback window.
type ConversationSummary struct {
	ID        string    `json:"id"`
	FirstSeen time.Time `json:"first_seen"`
	SpanCount int       `json:"span_count"`
}
