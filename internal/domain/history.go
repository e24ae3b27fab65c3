package domain

import "time"

// RunRecord summarizes one completed pipeline run for the history archive.
type RunRecord struct {
	RunID           string         `json:"run_id"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedAt     time.Time      `json:"completed_at"`
	TotalSignals    int            `json:"total_signals"`
	TotalNarratives int            `json:"total_narratives"`
	SourceCounts    map[string]int `json:"source_counts,omitempty"`
}

// ArchivedSignal is the slimmed-down form of a scored signal kept in the
// history archive for velocity queries.
type ArchivedSignal struct {
	Source      string    `json:"source"`
	SignalType  string    `json:"signal_type,omitempty"`
	Name        string    `json:"name"`
	Content     string    `json:"content,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	Score       float64   `json:"score"`
	CollectedAt time.Time `json:"collected_at"`
	RunID       string    `json:"run_id"`
}

// TopicVelocity is the growth profile of a topic over recent daily counts.
// Velocity compares the second half of the window against the first half,
// as a percentage.
type TopicVelocity struct {
	Velocity    float64        `json:"velocity"`
	Trend       string         `json:"trend"` // accelerating | stable | decelerating | insufficient_data
	DataPoints  int            `json:"data_points"`
	DailyCounts map[string]int `json:"daily_counts,omitempty"`
}

// HistoryStats summarizes the history archive.
type HistoryStats struct {
	TotalSignalsCollected int `json:"total_signals_collected"`
	TotalRuns             int `json:"total_runs"`
}
