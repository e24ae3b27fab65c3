package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"narrative-radar/internal/domain"
)

// reportVersion tags the report schema.
const reportVersion = "0.2.0"

// ReportPeriod describes the window a report covers.
type ReportPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Type  string `json:"type"`
}

// SignalSummary aggregates the run's signal counts.
type SignalSummary struct {
	TotalCollected   int            `json:"total_collected"`
	SourceCounts     map[string]int `json:"source_counts"`
	HighScoreSignals int            `json:"high_score_signals"`
}

// Report is the full output of one pipeline run.
type Report struct {
	RunID         string                 `json:"run_id"`
	ReportPeriod  ReportPeriod           `json:"report_period"`
	SignalSummary SignalSummary          `json:"signal_summary"`
	Narratives    []domain.NarrativeView `json:"narratives"`
	StartedAt     time.Time              `json:"started_at"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Version       string                 `json:"version"`
}

func (r *Runner) buildReport(runID string, started time.Time, raw, scored []domain.Signal, views []domain.NarrativeView) *Report {
	sourceCounts := make(map[string]int)
	for _, s := range raw {
		sourceCounts[domain.NormalizeSource(s.Source)]++
	}
	highScore := 0
	for _, s := range scored {
		if s.Score > highScoreFloor {
			highScore++
		}
	}

	now := r.clock().UTC()
	day := now.Format("2006-01-02")
	return &Report{
		RunID: runID,
		ReportPeriod: ReportPeriod{
			Start: day,
			End:   day,
			Type:  "fortnightly",
		},
		SignalSummary: SignalSummary{
			TotalCollected:   len(raw),
			SourceCounts:     sourceCounts,
			HighScoreSignals: highScore,
		},
		Narratives:  views,
		StartedAt:   started,
		GeneratedAt: now,
		Version:     reportVersion,
	}
}

// SaveReport writes the report twice under dir: latest_report.json, always
// overwritten, and a dated report_YYYY-MM-DD.json kept for history.
func SaveReport(dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	latest := filepath.Join(dir, "latest_report.json")
	if err := os.WriteFile(latest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", latest, err)
	}

	dated := filepath.Join(dir, fmt.Sprintf("report_%s.json", report.GeneratedAt.Format("2006-01-02")))
	if err := os.WriteFile(dated, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dated, err)
	}
	return nil
}
