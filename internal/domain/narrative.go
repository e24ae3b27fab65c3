package domain

import "time"

// NarrativeStatus is the lifecycle state of a persisted narrative.
//
// State machine:
//
//	ACTIVE --(3 consecutive unmatched runs)--> FADED
//	FADED  --(matched again)-->                ACTIVE
//	FADED  --(7 days unmatched)-->             ARCHIVED (terminal)
type NarrativeStatus string

const (
	StatusActive   NarrativeStatus = "ACTIVE"
	StatusFaded    NarrativeStatus = "FADED"
	StatusArchived NarrativeStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid value.
func (s NarrativeStatus) IsValid() bool {
	return s == StatusActive || s == StatusFaded || s == StatusArchived
}

// ConfidencePoint is one confidence observation in an entry's history.
type ConfidencePoint struct {
	Time       time.Time  `json:"time"`
	Confidence Confidence `json:"confidence"`
}

// DirectionPoint is one direction observation in an entry's history.
type DirectionPoint struct {
	Time      time.Time `json:"time"`
	Direction Direction `json:"direction"`
}

// NarrativeEntry is the persistent record for one tracked narrative.
// Owned exclusively by the narrative store; the ID never changes once
// assigned, while the name and canonical name track the latest matched
// proposal.
type NarrativeEntry struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CanonicalName string          `json:"canonical_name"`
	Status        NarrativeStatus `json:"status"`

	FirstDetected time.Time  `json:"first_detected"`
	LastDetected  time.Time  `json:"last_detected"`
	LastUpdated   time.Time  `json:"last_updated"`
	FadedAt       *time.Time `json:"faded_at,omitempty"`

	// DetectionCount is monotonically non-decreasing across the
	// ACTIVE→FADED→ACTIVE cycle. MissedCount resets to 0 exactly on a match.
	DetectionCount int `json:"detection_count"`
	MissedCount    int `json:"missed_count"`

	CurrentConfidence Confidence `json:"current_confidence"`
	CurrentDirection  Direction  `json:"current_direction"`
	Explanation       string     `json:"explanation,omitempty"`
	TrendEvidence     string     `json:"trend_evidence,omitempty"`
	MarketOpportunity string     `json:"market_opportunity,omitempty"`
	Topics            []string   `json:"topics,omitempty"`

	// AllSignals is deduplicated by URL, capped at 30, highest score per URL kept.
	AllSignals []SupportingSignal `json:"all_signals"`
	Ideas      []Idea             `json:"ideas,omitempty"`
	References []string           `json:"references,omitempty"`

	// Append-only logs capped at the most recent 20 entries.
	ConfidenceHistory []ConfidencePoint `json:"confidence_history"`
	DirectionHistory  []DirectionPoint  `json:"direction_history"`
}

// StoreMeta carries store-level bookkeeping persisted alongside entries.
type StoreMeta struct {
	TotalPipelineRuns int       `json:"total_pipeline_runs"`
	LastUpdated       time.Time `json:"last_updated"`
}
