package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/storage"
)

func entry(id string, status domain.NarrativeStatus) *domain.NarrativeEntry {
	return &domain.NarrativeEntry{
		ID:                id,
		Name:              "Narrative " + id,
		CanonicalName:     "narrative " + id,
		Status:            status,
		FirstDetected:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DetectionCount:    1,
		CurrentConfidence: domain.ConfidenceMedium,
		Topics:            []string{"defi"},
	}
}

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "narratives.json")
}

func TestNarrativeStore_AbsentFileIsEmpty(t *testing.T) {
	store := NewNarrativeStore(storePath(t))
	ctx := context.Background()

	entries, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll on absent file failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty store, got %d entries", len(entries))
	}

	meta, err := store.LoadMeta(ctx)
	if err != nil {
		t.Fatalf("LoadMeta on absent file failed: %v", err)
	}
	if meta.TotalPipelineRuns != 0 {
		t.Errorf("expected zero runs, got %d", meta.TotalPipelineRuns)
	}
}

func TestNarrativeStore_SaveAndReload(t *testing.T) {
	path := storePath(t)
	ctx := context.Background()

	store := NewNarrativeStore(path)
	faded := entry("b", domain.StatusFaded)
	fadedAt := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	faded.FadedAt = &fadedAt

	err := store.SaveRun(ctx, []*domain.NarrativeEntry{entry("a", domain.StatusActive), faded}, &domain.StoreMeta{TotalPipelineRuns: 3})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	// A fresh store instance must see the persisted snapshot.
	reopened := NewNarrativeStore(path)
	entries, err := reopened.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	byID := make(map[string]*domain.NarrativeEntry)
	for _, e := range entries {
		byID[e.ID] = e
	}
	got, ok := byID["b"]
	if !ok {
		t.Fatal("entry b missing after reload")
	}
	if got.Status != domain.StatusFaded {
		t.Errorf("expected faded status, got %q", got.Status)
	}
	if got.FadedAt == nil || !got.FadedAt.Equal(fadedAt) {
		t.Errorf("faded_at not round-tripped: %v", got.FadedAt)
	}

	meta, _ := reopened.LoadMeta(ctx)
	if meta.TotalPipelineRuns != 3 {
		t.Errorf("expected 3 runs, got %d", meta.TotalPipelineRuns)
	}
}

func TestNarrativeStore_UpsertReplaces(t *testing.T) {
	store := NewNarrativeStore(storePath(t))
	ctx := context.Background()

	e := entry("a", domain.StatusActive)
	if err := store.SaveRun(ctx, []*domain.NarrativeEntry{e}, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	e.DetectionCount = 9
	if err := store.SaveRun(ctx, []*domain.NarrativeEntry{e}, nil); err != nil {
		t.Fatalf("second SaveRun failed: %v", err)
	}

	entries, _ := store.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after upsert, got %d", len(entries))
	}
	if entries[0].DetectionCount != 9 {
		t.Errorf("expected detection count 9, got %d", entries[0].DetectionCount)
	}
}

func TestNarrativeStore_RejectsMissingID(t *testing.T) {
	store := NewNarrativeStore(storePath(t))

	err := store.SaveRun(context.Background(), []*domain.NarrativeEntry{{Name: "no id"}}, nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNarrativeStore_MetaSurvivesEntryOnlySave(t *testing.T) {
	store := NewNarrativeStore(storePath(t))
	ctx := context.Background()

	store.SaveRun(ctx, nil, &domain.StoreMeta{TotalPipelineRuns: 5})
	store.SaveRun(ctx, []*domain.NarrativeEntry{entry("a", domain.StatusActive)}, nil)

	meta, err := store.LoadMeta(ctx)
	if err != nil {
		t.Fatalf("LoadMeta failed: %v", err)
	}
	if meta.TotalPipelineRuns != 5 {
		t.Errorf("nil meta save overwrote run count: got %d", meta.TotalPipelineRuns)
	}
}

func TestNarrativeStore_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "narratives.json")
	store := NewNarrativeStore(path)

	err := store.SaveRun(context.Background(), []*domain.NarrativeEntry{entry("a", domain.StatusActive)}, nil)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store file not created: %v", err)
	}
}

func TestNarrativeStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewNarrativeStore(filepath.Join(dir, "narratives.json"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.SaveRun(ctx, []*domain.NarrativeEntry{entry("a", domain.StatusActive)}, nil); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("expected only the store file in dir, got %d files", len(files))
	}
}
