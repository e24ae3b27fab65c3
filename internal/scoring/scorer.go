// Package scoring computes the 5-factor composite score for signal batches.
// Scoring is a total, pure function of the batch: missing fields are treated
// as zero values, no signal is ever dropped, and scoring the same batch
// twice yields identical results.
package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/topics"
)

// Composite weights. Convergence and quality carry the most weight because
// they are the batch-level (cross-source) factors.
const (
	weightVelocity    = 0.20
	weightConvergence = 0.30
	weightNovelty     = 0.15
	weightAuthority   = 0.15
	weightQuality     = 0.20
)

// Scorer scores signal batches. Stateless between calls; the injected clock
// fixes "today" for temporal bucketing and age computations.
type Scorer struct {
	clock func() time.Time
}

// NewScorer creates a Scorer using the wall clock.
func NewScorer() *Scorer {
	return &Scorer{clock: time.Now}
}

// WithClock overrides the clock, for deterministic tests.
func (s *Scorer) WithClock(clock func() time.Time) *Scorer {
	s.clock = clock
	return s
}

// Score annotates every signal with topics, score (1 decimal) and
// score_breakdown, and returns the batch sorted descending by score.
// The input slice is not mutated.
func (s *Scorer) Score(signals []domain.Signal) []domain.Signal {
	if len(signals) == 0 {
		return nil
	}

	bc := s.buildBatchContext(signals)

	scored := make([]domain.Signal, len(signals))
	copy(scored, signals)

	for i := range scored {
		sig := &scored[i]
		sig.Topics = topics.Extract(sig)

		breakdown := domain.ScoreBreakdown{
			Velocity:    s.velocity(sig, bc),
			Convergence: s.convergence(sig, bc),
			Novelty:     s.novelty(sig),
			Authority:   s.authority(sig),
			Quality:     s.quality(sig, bc),
		}
		breakdown.Velocity = round1(breakdown.Velocity)
		breakdown.Convergence = round1(breakdown.Convergence)
		breakdown.Novelty = round1(breakdown.Novelty)
		breakdown.Authority = round1(breakdown.Authority)
		breakdown.Quality = round1(breakdown.Quality)

		composite := breakdown.Velocity*weightVelocity +
			breakdown.Convergence*weightConvergence +
			breakdown.Novelty*weightNovelty +
			breakdown.Authority*weightAuthority +
			breakdown.Quality*weightQuality

		sig.Score = round1(composite)
		sig.ScoreBreakdown = &breakdown
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// batchContext holds the batch-level pre-pass computed once per Score call.
type batchContext struct {
	// topicSources maps topic -> normalized source type -> signal count.
	topicSources map[string]map[string]int

	// crossEntities marks lowercased entity names seen under 2+ distinct
	// normalized source types.
	crossEntities map[string]bool

	// dayCounts maps collected-date -> total signal count;
	// topicDayCounts the same per topic.
	dayCounts      map[string]int
	topicDayCounts map[string]map[string]int

	today string
}

func (s *Scorer) buildBatchContext(signals []domain.Signal) *batchContext {
	bc := &batchContext{
		topicSources:   make(map[string]map[string]int),
		crossEntities:  make(map[string]bool),
		dayCounts:      make(map[string]int),
		topicDayCounts: make(map[string]map[string]int),
		today:          s.clock().UTC().Format("2006-01-02"),
	}

	entitySources := make(map[string]map[string]bool)

	for i := range signals {
		sig := &signals[i]
		srcType := domain.NormalizeSource(sig.Source)
		sigTopics := topics.Extract(sig)

		for _, t := range sigTopics {
			if bc.topicSources[t] == nil {
				bc.topicSources[t] = make(map[string]int)
			}
			bc.topicSources[t][srcType]++
		}

		if name := strings.ToLower(strings.TrimSpace(sig.Name)); name != "" {
			if entitySources[name] == nil {
				entitySources[name] = make(map[string]bool)
			}
			entitySources[name][srcType] = true
		}

		day := signalDate(sig, bc.today)
		bc.dayCounts[day]++
		for _, t := range sigTopics {
			if bc.topicDayCounts[t] == nil {
				bc.topicDayCounts[t] = make(map[string]int)
			}
			bc.topicDayCounts[t][day]++
		}
	}

	for name, sources := range entitySources {
		if len(sources) >= 2 {
			bc.crossEntities[name] = true
		}
	}

	return bc
}

// signalDate extracts the date portion (first 10 chars) of collected_at,
// falling back to created_at, then to today.
func signalDate(sig *domain.Signal, today string) string {
	for _, ts := range []string{sig.CollectedAt, sig.CreatedAt} {
		if len(ts) >= 10 {
			return ts[:10]
		}
	}
	return today
}

// isCrossSourceEntity reports whether the signal's entity appeared under
// 2+ distinct normalized source types in this batch.
func (bc *batchContext) isCrossSourceEntity(sig *domain.Signal) bool {
	name := strings.ToLower(strings.TrimSpace(sig.Name))
	return name != "" && bc.crossEntities[name]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp100(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
