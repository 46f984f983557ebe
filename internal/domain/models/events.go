package models

import "time"

type EventType string

const (
	EventAnalysis  EventType = "analysis.completed"
	EventNews      EventType = "news.aggregated"
	EventTableView EventType = "table.built"
	EventRefresh   EventType = "table.refresh"
)

// Event is published to the events topic; Key is the partitioning key (ticker or country).
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Key     string      `json:"key"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
}

// RefreshCommand asks workers to rebuild one country's table.
type RefreshCommand struct {
	Country     string    `json:"country"`
	RequestedAt time.Time `json:"requestedAt"`
}
