// Package narrative maintains the persistent narrative store: new proposals
// are merged against known narratives by canonical-name similarity, and
// entries move through the ACTIVE → FADED → ARCHIVED lifecycle as runs
// stop mentioning them.
package narrative

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/idhash"
	"narrative-radar/internal/storage"
)

// Config holds the consolidation thresholds. Zero values are replaced with
// the defaults from DefaultConfig.
type Config struct {
	// MatchThreshold is the word-overlap score a proposal must strictly
	// exceed to merge into an existing narrative.
	MatchThreshold float64

	// FadeAfterMisses is the number of consecutive runs a narrative can go
	// unmatched before it fades.
	FadeAfterMisses int

	// ArchiveAfter is how long a narrative stays FADED before it is
	// archived for good.
	ArchiveAfter time.Duration

	// SignalCap bounds the accumulated supporting signals per narrative.
	SignalCap int

	// HistoryCap bounds the confidence and direction histories per narrative.
	HistoryCap int
}

// DefaultConfig returns the standard consolidation thresholds.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:  0.5,
		FadeAfterMisses: 3,
		ArchiveAfter:    7 * 24 * time.Hour,
		SignalCap:       30,
		HistoryCap:      20,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MatchThreshold == 0 {
		c.MatchThreshold = def.MatchThreshold
	}
	if c.FadeAfterMisses == 0 {
		c.FadeAfterMisses = def.FadeAfterMisses
	}
	if c.ArchiveAfter == 0 {
		c.ArchiveAfter = def.ArchiveAfter
	}
	if c.SignalCap == 0 {
		c.SignalCap = def.SignalCap
	}
	if c.HistoryCap == 0 {
		c.HistoryCap = def.HistoryCap
	}
	return c
}

// Tracker merges narrative proposals into a NarrativeStore.
type Tracker struct {
	store  storage.NarrativeStore
	cfg    Config
	clock  func() time.Time
	logger *log.Logger
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(store storage.NarrativeStore, cfg Config) *Tracker {
	return &Tracker{
		store:  store,
		cfg:    cfg.withDefaults(),
		clock:  time.Now,
		logger: log.New(os.Stdout, "[narrative] ", log.LstdFlags),
	}
}

// WithClock overrides the time source. Used in tests.
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	t.clock = clock
	return t
}

// WithLogger overrides the default logger.
func (t *Tracker) WithLogger(logger *log.Logger) *Tracker {
	t.logger = logger
	return t
}

// MergeResult summarizes one consolidation run.
type MergeResult struct {
	Created  int
	Matched  int
	Faded    int
	Archived int

	// TotalRuns is the pipeline run counter after this merge.
	TotalRuns int
}

// Merge applies one run's proposals to the store: matched narratives are
// refreshed, unmatched proposals become new entries, active narratives that
// went unmentioned accrue misses, and stale entries fade or archive. All
// changes persist in a single SaveRun.
func (t *Tracker) Merge(ctx context.Context, proposals []domain.NarrativeProposal) (*MergeResult, error) {
	entries, err := t.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load narratives: %w", err)
	}
	meta, err := t.store.LoadMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	now := t.clock().UTC()
	byID := make(map[string]*domain.NarrativeEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	result := &MergeResult{}
	matched := make(map[string]bool)

	for i := range proposals {
		p := &proposals[i]
		if p.Name == "" {
			continue
		}

		if entry := t.findMatch(entries, p.Name, matched); entry != nil {
			t.refreshEntry(entry, p, now)
			matched[entry.ID] = true
			result.Matched++
			continue
		}

		entry := t.newEntry(p, now, byID)
		entries = append(entries, entry)
		byID[entry.ID] = entry
		matched[entry.ID] = true
		result.Created++
	}

	// Active narratives nobody proposed this run accrue a miss.
	for _, e := range entries {
		if matched[e.ID] || e.Status != domain.StatusActive {
			continue
		}
		e.MissedCount++
		if e.MissedCount >= t.cfg.FadeAfterMisses {
			e.Status = domain.StatusFaded
			fadedAt := now
			e.FadedAt = &fadedAt
			e.LastUpdated = now
			result.Faded++
			t.logger.Printf("narrative faded after %d misses: %s", e.MissedCount, e.Name)
		}
	}

	// Faded narratives past the retention window are archived for good.
	for _, e := range entries {
		if e.Status != domain.StatusFaded || e.FadedAt == nil {
			continue
		}
		if now.Sub(*e.FadedAt) >= t.cfg.ArchiveAfter {
			e.Status = domain.StatusArchived
			e.LastUpdated = now
			result.Archived++
		}
	}

	meta.TotalPipelineRuns++
	meta.LastUpdated = now
	result.TotalRuns = meta.TotalPipelineRuns

	if err := t.store.SaveRun(ctx, entries, meta); err != nil {
		return nil, fmt.Errorf("save narratives: %w", err)
	}

	t.logger.Printf("merge complete: %d matched, %d created, %d faded, %d archived (run %d)",
		result.Matched, result.Created, result.Faded, result.Archived, result.TotalRuns)
	return result, nil
}

// findMatch returns the unclaimed narrative whose canonical name overlaps the
// proposal's strictly above the match threshold, preferring the highest
// overlap. Archived narratives never match: they are terminal, and a
// returning name starts a fresh entry.
func (t *Tracker) findMatch(entries []*domain.NarrativeEntry, name string, claimed map[string]bool) *domain.NarrativeEntry {
	canonical := Canonicalize(name)

	var best *domain.NarrativeEntry
	bestScore := t.cfg.MatchThreshold
	for _, e := range entries {
		if claimed[e.ID] || e.Status == domain.StatusArchived {
			continue
		}
		if score := wordOverlap(canonical, e.CanonicalName); score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best
}

// refreshEntry folds a matched proposal into an existing narrative. A FADED
// narrative seen again comes back as ACTIVE.
func (t *Tracker) refreshEntry(e *domain.NarrativeEntry, p *domain.NarrativeProposal, now time.Time) {
	if e.Status == domain.StatusFaded {
		t.logger.Printf("narrative reactivated: %s", e.Name)
	}
	e.Status = domain.StatusActive
	e.MissedCount = 0
	e.FadedAt = nil
	e.DetectionCount++
	e.LastDetected = now
	e.LastUpdated = now

	e.Name = p.Name
	e.CanonicalName = Canonicalize(p.Name)

	e.CurrentConfidence = p.Confidence
	e.CurrentDirection = p.Direction
	if p.Explanation != "" {
		e.Explanation = p.Explanation
	}
	if p.TrendEvidence != "" {
		e.TrendEvidence = p.TrendEvidence
	}
	if p.MarketOpportunity != "" {
		e.MarketOpportunity = p.MarketOpportunity
	}
	if len(p.Topics) > 0 {
		e.Topics = append([]string(nil), p.Topics...)
	}
	e.AllSignals = dedupSignals(append(e.AllSignals, p.SupportingSignals...), t.cfg.SignalCap)
	if len(p.Ideas) > 0 {
		e.Ideas = p.Ideas
	}
	if len(p.References) > 0 {
		e.References = p.References
	}

	e.ConfidenceHistory = appendConfidence(e.ConfidenceHistory, p.Confidence, now, t.cfg.HistoryCap)
	e.DirectionHistory = appendDirection(e.DirectionHistory, p.Direction, now, t.cfg.HistoryCap)
}

// newEntry creates a fresh narrative from a proposal. IDs derive from the
// canonical name; collisions with live IDs get a suffix so a name matching
// an archived narrative starts over under a distinct ID.
func (t *Tracker) newEntry(p *domain.NarrativeProposal, now time.Time, byID map[string]*domain.NarrativeEntry) *domain.NarrativeEntry {
	canonical := Canonicalize(p.Name)
	id := idhash.ResolveCollision(idhash.ComputeNarrativeID(canonical), func(candidate string) bool {
		_, taken := byID[candidate]
		return taken
	})

	e := &domain.NarrativeEntry{
		ID:                id,
		Name:              p.Name,
		CanonicalName:     canonical,
		Status:            domain.StatusActive,
		FirstDetected:     now,
		LastDetected:      now,
		LastUpdated:       now,
		DetectionCount:    1,
		CurrentConfidence: p.Confidence,
		CurrentDirection:  p.Direction,
		Explanation:       p.Explanation,
		TrendEvidence:     p.TrendEvidence,
		MarketOpportunity: p.MarketOpportunity,
		Topics:            append([]string(nil), p.Topics...),
		AllSignals:        dedupSignals(append([]domain.SupportingSignal(nil), p.SupportingSignals...), t.cfg.SignalCap),
		Ideas:             append([]domain.Idea(nil), p.Ideas...),
		References:        append([]string(nil), p.References...),
		ConfidenceHistory: appendConfidence(nil, p.Confidence, now, t.cfg.HistoryCap),
		DirectionHistory:  appendDirection(nil, p.Direction, now, t.cfg.HistoryCap),
	}
	t.logger.Printf("new narrative: %s (%s)", e.Name, e.ID)
	return e
}

// dedupSignals deduplicates by URL keeping the higher-scored copy, then sorts
// by score descending and truncates to the cap. Signals without a URL always pass
// through dedup.
func dedupSignals(signals []domain.SupportingSignal, limit int) []domain.SupportingSignal {
	byURL := make(map[string]int)
	deduped := make([]domain.SupportingSignal, 0, len(signals))
	for _, s := range signals {
		if s.URL == "" {
			deduped = append(deduped, s)
			continue
		}
		if idx, ok := byURL[s.URL]; ok {
			if s.Score > deduped[idx].Score {
				deduped[idx] = s
			}
			continue
		}
		byURL[s.URL] = len(deduped)
		deduped = append(deduped, s)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score > deduped[j].Score
	})
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}

func appendConfidence(history []domain.ConfidencePoint, c domain.Confidence, now time.Time, limit int) []domain.ConfidencePoint {
	history = append(history, domain.ConfidencePoint{Time: now, Confidence: c})
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

func appendDirection(history []domain.DirectionPoint, d domain.Direction, now time.Time, limit int) []domain.DirectionPoint {
	history = append(history, domain.DirectionPoint{Time: now, Direction: d})
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}
