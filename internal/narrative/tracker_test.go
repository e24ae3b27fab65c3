package narrative

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/storage/memory"
)

func newTestTracker(t *testing.T) (*Tracker, *memory.NarrativeStore, *time.Time) {
	t.Helper()
	store := memory.NewNarrativeStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(store, Config{}).
		WithClock(func() time.Time { return now }).
		WithLogger(log.New(io.Discard, "", 0))
	return tracker, store, &now
}

func proposal(name string, conf domain.Confidence) domain.NarrativeProposal {
	return domain.NarrativeProposal{
		Name:       name,
		Confidence: conf,
		Direction:  domain.DirectionEmerging,
		SupportingSignals: []domain.SupportingSignal{
			{Text: name + " signal", URL: "https://example.com/" + name, Score: 50},
		},
	}
}

func TestMerge_CreatesNewNarrative(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	result, err := tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.Created != 1 || result.Matched != 0 {
		t.Errorf("expected 1 created, 0 matched, got %+v", result)
	}
	if result.TotalRuns != 1 {
		t.Errorf("expected run counter 1, got %d", result.TotalRuns)
	}

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Status != domain.StatusActive {
		t.Errorf("expected ACTIVE, got %s", e.Status)
	}
	if e.CanonicalName != "ai trading bots" {
		t.Errorf("unexpected canonical name %q", e.CanonicalName)
	}
	if e.DetectionCount != 1 || e.MissedCount != 0 {
		t.Errorf("unexpected counters: detection=%d missed=%d", e.DetectionCount, e.MissedCount)
	}
	if len(e.ConfidenceHistory) != 1 || len(e.DirectionHistory) != 1 {
		t.Errorf("expected single-point histories, got %d/%d", len(e.ConfidenceHistory), len(e.DirectionHistory))
	}
}

func TestMerge_CreationRunDoesNotCountAsMiss(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	// Second run proposes only a different narrative: the existing one
	// misses, the new one starts clean.
	if _, err := tracker.Merge(ctx, []domain.NarrativeProposal{proposal("Restaking Protocols", domain.ConfidenceMedium)}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	entries, _ := store.LoadAll(ctx)
	byName := make(map[string]*domain.NarrativeEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	if e := byName["AI Trading Bots"]; e == nil || e.MissedCount != 1 {
		t.Errorf("expected the unmentioned narrative to have 1 miss, got %+v", e)
	}
	if e := byName["Restaking Protocols"]; e == nil || e.MissedCount != 0 {
		t.Errorf("expected the just-created narrative to have 0 misses, got %+v", e)
	}
}

func TestMerge_MatchedProposalOverwritesTopics(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	first := proposal("AI Trading Bots", domain.ConfidenceHigh)
	first.Topics = []string{"ai_agents", "trading"}
	if _, err := tracker.Merge(ctx, []domain.NarrativeProposal{first}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	second := proposal("AI Trading Bots", domain.ConfidenceHigh)
	second.Topics = []string{"ai_agents"}
	if _, err := tracker.Merge(ctx, []domain.NarrativeProposal{second}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].Topics; len(got) != 1 || got[0] != "ai_agents" {
		t.Errorf("expected topics overwritten to [ai_agents], got %v", got)
	}

	// A proposal without topics keeps what the entry already has.
	third := proposal("AI Trading Bots", domain.ConfidenceHigh)
	if _, err := tracker.Merge(ctx, []domain.NarrativeProposal{third}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	entries, _ = store.LoadAll(ctx)
	if got := entries[0].Topics; len(got) != 1 || got[0] != "ai_agents" {
		t.Errorf("expected topics preserved as [ai_agents], got %v", got)
	}
}

func TestMerge_SameNarrativeTwiceMatches(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	for range 2 {
		if _, err := tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)}); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
	}

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after repeat merge, got %d", len(entries))
	}
	if entries[0].DetectionCount != 2 {
		t.Errorf("expected detection_count 2, got %d", entries[0].DetectionCount)
	}
}

func TestMerge_NameVariantsMatch(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceMedium)})
	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("The AI-Trading Bots on Solana", domain.ConfidenceHigh)})

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected variants to merge into 1 entry, got %d", len(entries))
	}
	if entries[0].CurrentConfidence != domain.ConfidenceHigh {
		t.Errorf("expected confidence refreshed to HIGH, got %s", entries[0].CurrentConfidence)
	}
}

func TestMerge_BelowThresholdCreatesSeparateEntry(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("Liquid Staking Growth", domain.ConfidenceHigh)})

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected 2 distinct entries, got %d", len(entries))
	}
}

func TestMerge_ExactHalfOverlapDoesNotMatch(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	// "ai agents" vs "ai trading": overlap 1/min(2,2) = 0.5, not above 0.5.
	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Agents", domain.ConfidenceHigh)})
	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading", domain.ConfidenceHigh)})

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 2 {
		t.Fatalf("overlap exactly at threshold must not match, got %d entries", len(entries))
	}
}

func TestMerge_FadesAfterThreeMisses(t *testing.T) {
	tracker, store, now := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})

	for i := 1; i <= 3; i++ {
		*now = now.Add(time.Hour)
		result, err := tracker.Merge(ctx, nil)
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		entries, _ := store.LoadAll(ctx)
		e := entries[0]
		if i < 3 {
			if e.Status != domain.StatusActive || e.MissedCount != i {
				t.Errorf("after %d misses: expected ACTIVE with missed=%d, got %s missed=%d", i, i, e.Status, e.MissedCount)
			}
			if result.Faded != 0 {
				t.Errorf("after %d misses: expected 0 faded, got %d", i, result.Faded)
			}
		} else {
			if e.Status != domain.StatusFaded {
				t.Errorf("after 3 misses: expected FADED, got %s", e.Status)
			}
			if e.FadedAt == nil || !e.FadedAt.Equal(*now) {
				t.Errorf("expected faded_at set to merge time")
			}
			if result.Faded != 1 {
				t.Errorf("expected 1 faded in result, got %d", result.Faded)
			}
		}
	}
}

func TestMerge_FadedReactivates(t *testing.T) {
	tracker, store, now := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	for range 3 {
		*now = now.Add(time.Hour)
		tracker.Merge(ctx, nil)
	}

	*now = now.Add(time.Hour)
	result, err := tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceMedium)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.Matched != 1 || result.Created != 0 {
		t.Errorf("expected faded narrative to match, got %+v", result)
	}

	entries, _ := store.LoadAll(ctx)
	e := entries[0]
	if e.Status != domain.StatusActive {
		t.Errorf("expected reactivated ACTIVE, got %s", e.Status)
	}
	if e.MissedCount != 0 || e.FadedAt != nil {
		t.Errorf("expected miss bookkeeping reset, got missed=%d fadedAt=%v", e.MissedCount, e.FadedAt)
	}
	if e.DetectionCount != 2 {
		t.Errorf("detection count survives the fade cycle, want 2 got %d", e.DetectionCount)
	}
}

func TestMerge_FadedArchivesAfterRetention(t *testing.T) {
	tracker, store, now := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	for range 3 {
		*now = now.Add(time.Hour)
		tracker.Merge(ctx, nil)
	}

	*now = now.Add(7 * 24 * time.Hour)
	result, err := tracker.Merge(ctx, nil)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.Archived != 1 {
		t.Errorf("expected 1 archived, got %d", result.Archived)
	}

	entries, _ := store.LoadAll(ctx)
	if entries[0].Status != domain.StatusArchived {
		t.Errorf("expected ARCHIVED, got %s", entries[0].Status)
	}
}

// An archived narrative is terminal: a proposal with the same name starts a
// fresh entry under a suffixed ID instead of reviving the old record.
func TestMerge_ArchivedNeverReactivates(t *testing.T) {
	tracker, store, now := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	for range 3 {
		*now = now.Add(time.Hour)
		tracker.Merge(ctx, nil)
	}
	*now = now.Add(7 * 24 * time.Hour)
	tracker.Merge(ctx, nil)

	*now = now.Add(time.Hour)
	result, err := tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.Created != 1 || result.Matched != 0 {
		t.Errorf("expected new entry instead of revival, got %+v", result)
	}

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected archived original plus fresh entry, got %d", len(entries))
	}
	var archived, fresh *domain.NarrativeEntry
	for _, e := range entries {
		if e.Status == domain.StatusArchived {
			archived = e
		} else {
			fresh = e
		}
	}
	if archived == nil || fresh == nil {
		t.Fatalf("expected one archived and one live entry")
	}
	if fresh.ID == archived.ID {
		t.Errorf("fresh entry must not reuse the archived ID")
	}
	if fresh.ID != archived.ID+"x" {
		t.Errorf("expected suffixed collision ID %q, got %q", archived.ID+"x", fresh.ID)
	}
	if fresh.DetectionCount != 1 {
		t.Errorf("fresh entry starts over, want detection_count 1 got %d", fresh.DetectionCount)
	}
}

func TestMerge_DedupsSignalsByURL(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	p := domain.NarrativeProposal{
		Name:       "AI Trading Bots",
		Confidence: domain.ConfidenceHigh,
		Direction:  domain.DirectionEmerging,
		SupportingSignals: []domain.SupportingSignal{
			{Text: "low copy", URL: "https://example.com/a", Score: 40},
			{Text: "high copy", URL: "https://example.com/a", Score: 80},
			{Text: "no url", Score: 10},
		},
	}
	if _, err := tracker.Merge(ctx, []domain.NarrativeProposal{p}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	entries, _ := store.LoadAll(ctx)
	signals := entries[0].AllSignals
	if len(signals) != 2 {
		t.Fatalf("expected URL dedup to leave 2 signals, got %d", len(signals))
	}
	if signals[0].Text != "high copy" || signals[0].Score != 80 {
		t.Errorf("expected higher-scored copy kept first, got %+v", signals[0])
	}
}

func TestMerge_SignalCapKeepsTopScores(t *testing.T) {
	tracker, store, _ := newTestTracker(t)
	ctx := context.Background()

	var signals []domain.SupportingSignal
	for i := range 40 {
		signals = append(signals, domain.SupportingSignal{
			Text:  "signal",
			URL:   "https://example.com/" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Score: float64(i),
		})
	}
	p := domain.NarrativeProposal{
		Name:              "AI Trading Bots",
		Confidence:        domain.ConfidenceHigh,
		Direction:         domain.DirectionEmerging,
		SupportingSignals: signals,
	}
	tracker.Merge(ctx, []domain.NarrativeProposal{p})

	entries, _ := store.LoadAll(ctx)
	kept := entries[0].AllSignals
	if len(kept) != 30 {
		t.Fatalf("expected signal cap 30, got %d", len(kept))
	}
	if kept[0].Score != 39 {
		t.Errorf("expected highest score retained first, got %v", kept[0].Score)
	}
	if kept[len(kept)-1].Score != 10 {
		t.Errorf("expected lowest retained score 10, got %v", kept[len(kept)-1].Score)
	}
}

func TestMerge_HistoryCap(t *testing.T) {
	tracker, store, now := newTestTracker(t)
	ctx := context.Background()

	for range 25 {
		tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
		*now = now.Add(time.Hour)
	}

	entries, _ := store.LoadAll(ctx)
	e := entries[0]
	if len(e.ConfidenceHistory) != 20 {
		t.Errorf("expected confidence history capped at 20, got %d", len(e.ConfidenceHistory))
	}
	if len(e.DirectionHistory) != 20 {
		t.Errorf("expected direction history capped at 20, got %d", len(e.DirectionHistory))
	}
	if e.DetectionCount != 25 {
		t.Errorf("detection count keeps counting past the cap, want 25 got %d", e.DetectionCount)
	}
}

func TestGetActive_Ordering(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{
		proposal("Low Confidence Topic", domain.ConfidenceLow),
		proposal("High Confidence Topic", domain.ConfidenceHigh),
		proposal("Medium Confidence Topic", domain.ConfidenceMedium),
	})
	// Bump detection count of one HIGH entry above another.
	tracker.Merge(ctx, []domain.NarrativeProposal{
		proposal("Another Strong Topic", domain.ConfidenceHigh),
	})
	tracker.Merge(ctx, []domain.NarrativeProposal{
		proposal("Another Strong Topic", domain.ConfidenceHigh),
	})

	active, err := tracker.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if len(active) != 4 {
		t.Fatalf("expected 4 active narratives, got %d", len(active))
	}
	if active[0].Name != "Another Strong Topic" {
		t.Errorf("expected repeat HIGH narrative first, got %s", active[0].Name)
	}
	if active[1].Name != "High Confidence Topic" {
		t.Errorf("expected single-detection HIGH second, got %s", active[1].Name)
	}
	if active[2].CurrentConfidence != domain.ConfidenceMedium {
		t.Errorf("expected MEDIUM third, got %s", active[2].CurrentConfidence)
	}
	if active[3].CurrentConfidence != domain.ConfidenceLow {
		t.Errorf("expected LOW last, got %s", active[3].CurrentConfidence)
	}
}

func TestGetRecentlyFaded(t *testing.T) {
	tracker, _, now := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("Old Fade", domain.ConfidenceLow)})
	for range 3 {
		*now = now.Add(time.Hour)
		tracker.Merge(ctx, nil)
	}
	// Old Fade faded at +3h. Advance two days, fade a second narrative.
	*now = now.Add(48 * time.Hour)
	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("Recent Fade", domain.ConfidenceLow)})
	for range 3 {
		*now = now.Add(time.Hour)
		tracker.Merge(ctx, nil)
	}

	recent, err := tracker.GetRecentlyFaded(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("GetRecentlyFaded failed: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recently faded, got %d", len(recent))
	}
	if recent[0].Name != "Recent Fade" {
		t.Errorf("expected Recent Fade, got %s", recent[0].Name)
	}
}

func TestHints(t *testing.T) {
	tracker, _, now := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	*now = now.Add(3 * time.Hour)
	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("AI Trading Bots", domain.ConfidenceHigh)})
	*now = now.Add(30 * time.Minute)

	hints, err := tracker.Hints(ctx)
	if err != nil {
		t.Fatalf("Hints failed: %v", err)
	}
	if len(hints) != 1 {
		t.Fatalf("expected 1 hint, got %d", len(hints))
	}
	want := "AI Trading Bots (detected 2 times, last: 30m ago)"
	if hints[0] != want {
		t.Errorf("hint = %q, want %q", hints[0], want)
	}
}

func TestHints_ExcludesArchived(t *testing.T) {
	tracker, _, now := newTestTracker(t)
	ctx := context.Background()

	tracker.Merge(ctx, []domain.NarrativeProposal{proposal("Gone Topic", domain.ConfidenceLow)})
	for range 3 {
		*now = now.Add(time.Hour)
		tracker.Merge(ctx, nil)
	}
	*now = now.Add(7 * 24 * time.Hour)
	tracker.Merge(ctx, nil)

	hints, err := tracker.Hints(ctx)
	if err != nil {
		t.Fatalf("Hints failed: %v", err)
	}
	if len(hints) != 0 {
		t.Errorf("archived narratives must not appear in hints, got %v", hints)
	}
}

func TestFormatAgo(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{10 * time.Minute, "10m ago"},
		{59 * time.Minute, "59m ago"},
		{90 * time.Minute, "1h ago"},
		{23 * time.Hour, "23h ago"},
		{25 * time.Hour, "1d ago"},
		{72 * time.Hour, "3d ago"},
	}
	for _, tt := range tests {
		if got := formatAgo(tt.elapsed); got != tt.want {
			t.Errorf("formatAgo(%v) = %q, want %q", tt.elapsed, got, tt.want)
		}
	}
}
