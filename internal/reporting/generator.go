package reporting

import (
	"context"
	"fmt"
	"time"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/narrative"
	"narrative-radar/internal/storage"
)

// Generator assembles digests from the narrative tracker and, optionally,
// the signal history archive.
type Generator struct {
	tracker *narrative.Tracker
	history storage.SignalHistoryStore // nil when no archive is configured
	clock   func() time.Time
}

// NewGenerator creates a digest generator. history may be nil.
func NewGenerator(tracker *narrative.Tracker, history storage.SignalHistoryStore) *Generator {
	return &Generator{
		tracker: tracker,
		history: history,
		clock:   time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (g *Generator) WithClock(clock func() time.Time) *Generator {
	g.clock = clock
	return g
}

// Build produces a digest of active narratives plus fades within
// fadedWindow of now.
func (g *Generator) Build(ctx context.Context, fadedWindow time.Duration) (*Digest, error) {
	active, err := g.tracker.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active narratives: %w", err)
	}
	faded, err := g.tracker.GetRecentlyFaded(ctx, fadedWindow)
	if err != nil {
		return nil, fmt.Errorf("load faded narratives: %w", err)
	}
	meta, err := g.tracker.Meta(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store meta: %w", err)
	}

	now := g.clock().UTC()
	views := make([]domain.NarrativeView, 0, len(active)+len(faded))
	for _, e := range append(active, faded...) {
		views = append(views, narrative.Project(e, meta.TotalPipelineRuns, now))
	}

	digest := &Digest{
		GeneratedAt:       now,
		TotalPipelineRuns: meta.TotalPipelineRuns,
		LastUpdated:       meta.LastUpdated,
		Narratives:        views,
	}

	if g.history != nil {
		stats, err := g.history.GetStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("load archive stats: %w", err)
		}
		digest.Archive = stats
	}
	return digest, nil
}
