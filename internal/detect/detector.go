// Package detect turns one run's scored signals into narrative proposals.
// The production detector is an external LLM labeling step; this package
// defines its contract and ships a rule-based fallback so the pipeline
// still produces narratives when the labeling step is unavailable.
package detect

import (
	"context"

	"narrative-radar/internal/domain"
)

// Input is everything a detector gets to work with for one run.
type Input struct {
	// Signals are the run's scored signals, sorted by score descending.
	Signals []domain.Signal

	// Clusters are advisory pre-groupings of related signals, ordered by
	// each cluster's best score. Detectors may use or ignore them.
	Clusters [][]domain.Signal

	// Hints are one-line summaries of narratives already in the store,
	// so a detector can reuse established names instead of inventing
	// near-duplicates.
	Hints []string
}

// NarrativeDetector proposes narratives from one run's signals.
type NarrativeDetector interface {
	Detect(ctx context.Context, in Input) ([]domain.NarrativeProposal, error)
}
