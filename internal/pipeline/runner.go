// Package pipeline orchestrates one narrative-radar run:
// score → pre-cluster → detect → merge → report.
// Collection happens upstream; the runner takes raw signals as input.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"narrative-radar/internal/cluster"
	"narrative-radar/internal/detect"
	"narrative-radar/internal/domain"
	"narrative-radar/internal/narrative"
	"narrative-radar/internal/observability"
	"narrative-radar/internal/scoring"
	"narrative-radar/internal/storage"
)

// velocityWindowDays is how far back velocity enrichment looks.
const velocityWindowDays = 7

// highScoreFloor marks a signal as high-quality in the run summary.
const highScoreFloor = 60.0

// Options configures a Runner.
type Options struct {
	// Required collaborators
	Scorer   *scoring.Scorer
	Detector detect.NarrativeDetector
	Tracker  *narrative.Tracker

	// History is optional; without it velocity enrichment and run
	// archiving are skipped.
	History storage.SignalHistoryStore

	// ClusterThreshold overrides the pre-clusterer similarity cutoff.
	// Zero means cluster.DefaultThreshold.
	ClusterThreshold float64
}

// Runner executes pipeline runs.
type Runner struct {
	scorer           *scoring.Scorer
	detector         detect.NarrativeDetector
	tracker          *narrative.Tracker
	history          storage.SignalHistoryStore
	clusterThreshold float64
	clock            func() time.Time
	logger           *log.Logger
}

// NewRunner creates a Runner from options.
func NewRunner(opts Options) *Runner {
	threshold := opts.ClusterThreshold
	if threshold == 0 {
		threshold = cluster.DefaultThreshold
	}
	return &Runner{
		scorer:           opts.Scorer,
		detector:         opts.Detector,
		tracker:          opts.Tracker,
		history:          opts.History,
		clusterThreshold: threshold,
		clock:            time.Now,
		logger:           log.New(os.Stdout, "[pipeline] ", log.LstdFlags),
	}
}

// WithClock overrides the time source. Used in tests.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// WithLogger overrides the default logger.
func (r *Runner) WithLogger(logger *log.Logger) *Runner {
	r.logger = logger
	return r
}

// Run executes one full pipeline run over the given raw signals and returns
// the run report.
func (r *Runner) Run(ctx context.Context, signals []domain.Signal) (*Report, error) {
	started := r.clock().UTC()
	runID := uuid.NewString()
	r.logger.Printf("run %s: starting with %d raw signals", runID, len(signals))

	// Phase 1: score.
	phaseStart := r.clock()
	scored := r.scorer.Score(signals)
	observability.RecordPhaseDuration("score", r.clock().Sub(phaseStart).Seconds())
	for _, s := range scored {
		observability.RecordSignalScored(domain.NormalizeSource(s.Source), s.Score)
	}

	// Phase 2: pre-cluster as an advisory grouping for detection.
	phaseStart = r.clock()
	clusters := cluster.PreCluster(scored, r.clusterThreshold)
	observability.RecordPhaseDuration("cluster", r.clock().Sub(phaseStart).Seconds())
	observability.RecordClusters(len(clusters))

	// Phase 3: detect narrative proposals, primed with known narratives.
	hints, err := r.tracker.Hints(ctx)
	if err != nil {
		observability.RecordPipelineRun("error")
		return nil, fmt.Errorf("load narrative hints: %w", err)
	}
	phaseStart = r.clock()
	proposals, err := r.detector.Detect(ctx, detect.Input{
		Signals:  scored,
		Clusters: clusters,
		Hints:    hints,
	})
	if err != nil {
		observability.RecordPipelineRun("error")
		return nil, fmt.Errorf("detect narratives: %w", err)
	}
	observability.RecordPhaseDuration("detect", r.clock().Sub(phaseStart).Seconds())
	for _, p := range proposals {
		observability.RecordProposal(string(p.Confidence))
	}

	// Phase 4: merge into the persistent store.
	phaseStart = r.clock()
	mergeResult, err := r.tracker.Merge(ctx, proposals)
	if err != nil {
		observability.RecordPipelineRun("error")
		return nil, fmt.Errorf("merge narratives: %w", err)
	}
	observability.RecordPhaseDuration("merge", r.clock().Sub(phaseStart).Seconds())
	observability.RecordMergeOutcome(mergeResult.Created, mergeResult.Matched, mergeResult.Faded, mergeResult.Archived)

	// Phase 5: build the report from the store.
	views, activeCount, err := r.projectNarratives(ctx, mergeResult.TotalRuns)
	if err != nil {
		observability.RecordPipelineRun("error")
		return nil, err
	}
	observability.UpdateActiveNarratives(activeCount)

	report := r.buildReport(runID, started, signals, scored, views)

	// Phase 6: archive the run. Archive failures do not fail the run.
	if r.history != nil {
		r.enrichVelocity(ctx, report.Narratives)
		if err := r.archiveRun(ctx, report, scored); err != nil {
			r.logger.Printf("run %s: history archive failed: %v", runID, err)
		}
	}

	completed := r.clock().UTC()
	observability.RecordPipelineRun("success")
	observability.MarkSuccessfulRun(completed.Unix())
	r.logger.Printf("run %s: complete in %s, %d narratives (%d active)",
		runID, completed.Sub(started), len(report.Narratives), activeCount)
	return report, nil
}

// projectNarratives renders ACTIVE plus recently faded narratives as views.
func (r *Runner) projectNarratives(ctx context.Context, totalRuns int) ([]domain.NarrativeView, int, error) {
	active, err := r.tracker.GetActive(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load active narratives: %w", err)
	}
	faded, err := r.tracker.GetRecentlyFaded(ctx, 24*time.Hour)
	if err != nil {
		return nil, 0, fmt.Errorf("load faded narratives: %w", err)
	}

	now := r.clock().UTC()
	views := make([]domain.NarrativeView, 0, len(active)+len(faded))
	for _, e := range active {
		views = append(views, narrative.Project(e, totalRuns, now))
	}
	for _, e := range faded {
		views = append(views, narrative.Project(e, totalRuns, now))
	}
	return views, len(active), nil
}

// enrichVelocity attaches topic velocity from the history archive to each
// view that has enough data behind it.
func (r *Runner) enrichVelocity(ctx context.Context, views []domain.NarrativeView) {
	for i := range views {
		topic := velocityTopic(&views[i])
		if topic == "" {
			continue
		}
		velocity, err := r.history.GetSignalVelocity(ctx, topic, velocityWindowDays)
		if err != nil {
			r.logger.Printf("velocity lookup for %q failed: %v", topic, err)
			continue
		}
		if velocity.DataPoints >= 2 {
			views[i].Velocity = velocity
		}
	}
}

// velocityTopic picks the archive topic to query for a narrative: its first
// extracted topic, or its lowercased name when no topics were recorded.
func velocityTopic(v *domain.NarrativeView) string {
	if len(v.Topics) > 0 {
		return v.Topics[0]
	}
	return strings.ToLower(v.Name)
}

func (r *Runner) archiveRun(ctx context.Context, report *Report, scored []domain.Signal) error {
	now := r.clock().UTC()
	archived := make([]domain.ArchivedSignal, 0, len(scored))
	for _, s := range scored {
		archived = append(archived, domain.ArchivedSignal{
			Source:      s.Source,
			SignalType:  s.SignalType,
			Name:        s.Name,
			Content:     truncate(s.Content, 2000),
			Topics:      s.Topics,
			Score:       s.Score,
			CollectedAt: collectedAt(s, now),
			RunID:       report.RunID,
		})
	}

	run := &domain.RunRecord{
		RunID:           report.RunID,
		StartedAt:       report.StartedAt,
		CompletedAt:     now,
		TotalSignals:    report.SignalSummary.TotalCollected,
		TotalNarratives: len(report.Narratives),
		SourceCounts:    report.SignalSummary.SourceCounts,
	}
	return r.history.SaveRun(ctx, run, archived)
}

// collectedAt parses the signal's collection timestamp, falling back to the
// run time when it is missing or malformed.
func collectedAt(s domain.Signal, fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s.CollectedAt); err == nil {
			return ts.UTC()
		}
	}
	return fallback
}

// truncate shortens s to max runes, never splitting a multi-byte character.
func truncate(s string, max int) string {
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max])
	}
	return s
}
