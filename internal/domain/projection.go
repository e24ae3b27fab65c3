package domain

import "time"

// TrendingStatus is the derived status exposed to the API layer. It is
// computed from a NarrativeEntry at read time and is distinct from the
// raw lifecycle NarrativeStatus.
type TrendingStatus string

const (
	TrendingNew       TrendingStatus = "NEW"
	TrendingRising    TrendingStatus = "RISING"
	TrendingDeclining TrendingStatus = "DECLINING"
	TrendingStable    TrendingStatus = "STABLE"
	TrendingFaded     TrendingStatus = "FADED"
)

// NarrativeView is the read-only projection of a NarrativeEntry consumed
// by the API layer. Field names are part of the external contract.
type NarrativeView struct {
	Name              string             `json:"name"`
	Confidence        Confidence         `json:"confidence"`
	Direction         Direction          `json:"direction"`
	Explanation       string             `json:"explanation"`
	TrendEvidence     string             `json:"trend_evidence,omitempty"`
	MarketOpportunity string             `json:"market_opportunity,omitempty"`
	Topics            []string           `json:"topics"`
	SupportingSignals []SupportingSignal `json:"supporting_signals"`
	Ideas             []Idea             `json:"ideas"`
	References        []string           `json:"references"`
	Status            TrendingStatus     `json:"status"`
	FirstDetected     time.Time          `json:"first_detected"`
	LastDetected      time.Time          `json:"last_detected"`
	DetectionCount    int                `json:"detection_count"`
	ConfidenceHistory []ConfidencePoint  `json:"confidence_history"`
	DirectionHistory  []DirectionPoint   `json:"direction_history"`
	TotalPipelineRuns int                `json:"total_pipeline_runs"`

	// Velocity is optional enrichment from the signal history store.
	Velocity *TopicVelocity `json:"velocity,omitempty"`
}
