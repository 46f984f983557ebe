package models

import "time"

type AnalysisKind string

const (
	AnalysisPrice        AnalysisKind = "price"
	AnalysisConsolidated AnalysisKind = "consolidated"
)

// Valid reports whether k names a known requester.
func (k AnalysisKind) Valid() bool {
	return k == AnalysisPrice || k == AnalysisConsolidated
}

// AnalysisResult is request scoped; the view keeps it until superseded.
type AnalysisResult struct {
	Kind        AnalysisKind `json:"kind"`
	Country     string       `json:"country"`
	Ticker      string       `json:"ticker"`
	Text        string       `json:"text"`
	RequestedAt time.Time    `json:"requestedAt"`
}

// AnalysisRecord is one stored analysis attempt, successful or not.
type AnalysisRecord struct {
	ID         string       `json:"id"`
	Kind       AnalysisKind `json:"kind"`
	Country    string       `json:"country"`
	Ticker     string       `json:"ticker"`
	OK         bool         `json:"ok"`
	Text       string       `json:"text"`
	Error      string       `json:"error,omitempty"`
	TookMs     int64        `json:"tookMs"`
	RecordedAt time.Time    `json:"recordedAt"`
}
