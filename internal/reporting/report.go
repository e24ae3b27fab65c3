// Package reporting builds and renders read-only digests of the narrative
// store: the current narrative landscape plus archive totals, without
// running the pipeline.
package reporting

import (
	"time"

	"narrative-radar/internal/domain"
)

// Digest is a point-in-time snapshot of tracked narratives. Narratives
// holds active entries first (highest confidence first) followed by
// recent fades.
type Digest struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	TotalPipelineRuns int                    `json:"total_pipeline_runs"`
	LastUpdated       time.Time              `json:"last_updated"`
	Narratives        []domain.NarrativeView `json:"narratives"`
	Archive           *domain.HistoryStats   `json:"archive,omitempty"`
}

// ActiveCount returns the number of non-faded narratives in the digest.
func (d *Digest) ActiveCount() int {
	n := 0
	for _, v := range d.Narratives {
		if v.Status != domain.TrendingFaded {
			n++
		}
	}
	return n
}
