package narrative

import (
	"context"
	"fmt"
	"sort"
	"time"

	"narrative-radar/internal/domain"
)

// GetActive returns ACTIVE narratives ordered by confidence rank, then
// detection count, both descending. Ties break on name for stable output.
func (t *Tracker) GetActive(ctx context.Context) ([]*domain.NarrativeEntry, error) {
	entries, err := t.store.GetByStatus(ctx, domain.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("load active narratives: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].CurrentConfidence.Rank(), entries[j].CurrentConfidence.Rank()
		if ri != rj {
			return ri > rj
		}
		if entries[i].DetectionCount != entries[j].DetectionCount {
			return entries[i].DetectionCount > entries[j].DetectionCount
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// GetRecentlyFaded returns FADED narratives whose fade happened within the
// given window.
func (t *Tracker) GetRecentlyFaded(ctx context.Context, window time.Duration) ([]*domain.NarrativeEntry, error) {
	entries, err := t.store.GetByStatus(ctx, domain.StatusFaded)
	if err != nil {
		return nil, fmt.Errorf("load faded narratives: %w", err)
	}

	cutoff := t.clock().UTC().Add(-window)
	recent := entries[:0]
	for _, e := range entries {
		if e.FadedAt != nil && e.FadedAt.After(cutoff) {
			recent = append(recent, e)
		}
	}
	return recent, nil
}

// Hints summarizes the live (ACTIVE and FADED) narratives as one line each,
// for priming the detection step with what is already known.
func (t *Tracker) Hints(ctx context.Context) ([]string, error) {
	entries, err := t.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load narratives: %w", err)
	}

	now := t.clock().UTC()
	var hints []string
	for _, e := range entries {
		if e.Status == domain.StatusArchived {
			continue
		}
		hints = append(hints, fmt.Sprintf("%s (detected %d times, last: %s)",
			e.Name, e.DetectionCount, formatAgo(now.Sub(e.LastDetected))))
	}
	sort.Strings(hints)
	return hints, nil
}

// Meta returns the store-level bookkeeping.
func (t *Tracker) Meta(ctx context.Context) (*domain.StoreMeta, error) {
	return t.store.LoadMeta(ctx)
}

// formatAgo renders an elapsed duration as a coarse age: minutes under an
// hour, hours under a day, days otherwise.
func formatAgo(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	switch {
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
