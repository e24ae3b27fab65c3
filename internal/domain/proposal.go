package domain

// Confidence is the detector's confidence in a narrative.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Rank maps confidence to a sortable integer (HIGH=3, MEDIUM=2, LOW=1).
// Unknown values rank 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Direction is the detector's read on where a narrative is heading.
type Direction string

const (
	DirectionAccelerating Direction = "ACCELERATING"
	DirectionEmerging     Direction = "EMERGING"
	DirectionStabilizing  Direction = "STABILIZING"
)

// SupportingSignal is one piece of evidence attached to a narrative.
type SupportingSignal struct {
	Text    string  `json:"text"`
	URL     string  `json:"url,omitempty"`
	Source  string  `json:"source,omitempty"`
	Comment string  `json:"comment,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// Idea is a build idea generated for a narrative.
type Idea struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	TargetUser   string   `json:"target_user,omitempty"`
	Integrations []string `json:"integrations,omitempty"`
	Complexity   string   `json:"complexity,omitempty"` // DAYS | WEEKS | MONTHS
	WhyItWins    string   `json:"why_it_wins,omitempty"`
}

// NarrativeProposal is one named narrative produced by the detection step
// (LLM-backed or rule-based). Proposals are ephemeral: they exist for one
// pipeline run and are merged into the persistent store.
type NarrativeProposal struct {
	Name              string             `json:"name"`
	Confidence        Confidence         `json:"confidence"`
	Direction         Direction          `json:"direction"`
	Explanation       string             `json:"explanation,omitempty"`
	TrendEvidence     string             `json:"trend_evidence,omitempty"`
	MarketOpportunity string             `json:"market_opportunity,omitempty"`
	Topics            []string           `json:"topics,omitempty"`
	SupportingSignals []SupportingSignal `json:"supporting_signals,omitempty"`
	Ideas             []Idea             `json:"ideas,omitempty"`
	References        []string           `json:"references,omitempty"`
}
