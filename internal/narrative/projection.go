package narrative

import (
	"time"

	"narrative-radar/internal/domain"
)

// Project converts a stored entry into its read-side view, deriving the
// trending status from lifecycle state, age, and confidence trajectory.
func Project(e *domain.NarrativeEntry, totalRuns int, now time.Time) domain.NarrativeView {
	return domain.NarrativeView{
		Name:              e.Name,
		Confidence:        e.CurrentConfidence,
		Direction:         e.CurrentDirection,
		Explanation:       e.Explanation,
		TrendEvidence:     e.TrendEvidence,
		MarketOpportunity: e.MarketOpportunity,
		Topics:            e.Topics,
		SupportingSignals: e.AllSignals,
		Ideas:             e.Ideas,
		References:        e.References,
		Status:            trendingStatus(e, now),
		FirstDetected:     e.FirstDetected,
		LastDetected:      e.LastDetected,
		DetectionCount:    e.DetectionCount,
		ConfidenceHistory: e.ConfidenceHistory,
		DirectionHistory:  e.DirectionHistory,
		TotalPipelineRuns: totalRuns,
	}
}

// trendingStatus derives the read-side status. Precedence: a faded entry is
// FADED no matter what; anything first seen under 24h ago is NEW; then the
// last two confidence observations decide RISING or DECLINING; then repeat
// detections make it STABLE.
func trendingStatus(e *domain.NarrativeEntry, now time.Time) domain.TrendingStatus {
	if e.Status == domain.StatusFaded {
		return domain.TrendingFaded
	}
	if now.Sub(e.FirstDetected) < 24*time.Hour {
		return domain.TrendingNew
	}

	if n := len(e.ConfidenceHistory); n >= 2 {
		prev := e.ConfidenceHistory[n-2].Confidence.Rank()
		last := e.ConfidenceHistory[n-1].Confidence.Rank()
		if last > prev {
			return domain.TrendingRising
		}
		if last < prev {
			return domain.TrendingDeclining
		}
	}

	if e.DetectionCount >= 3 {
		return domain.TrendingStable
	}
	if e.DetectionCount <= 1 {
		return domain.TrendingRising
	}
	return domain.TrendingStable
}
