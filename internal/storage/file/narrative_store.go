// Package file provides a JSON-file implementation of storage.NarrativeStore
// for single-node deployments without a database.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/storage"
)

// snapshot is the on-disk document: all entries plus store meta.
type snapshot struct {
	Narratives map[string]*domain.NarrativeEntry `json:"narratives"`
	Meta       domain.StoreMeta                  `json:"meta"`
}

// NarrativeStore persists narratives as one JSON document. Writes go
// through a temp file + rename so a crash mid-write leaves the previous
// snapshot intact, which gives SaveRun its all-or-nothing semantics.
type NarrativeStore struct {
	mu   sync.Mutex
	path string
}

// NewNarrativeStore creates a store backed by the JSON file at path.
// The file is created on first SaveRun.
func NewNarrativeStore(path string) *NarrativeStore {
	return &NarrativeStore{path: path}
}

// Compile-time interface check.
var _ storage.NarrativeStore = (*NarrativeStore)(nil)

// LoadAll retrieves every entry regardless of status.
func (s *NarrativeStore) LoadAll(_ context.Context) ([]*domain.NarrativeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read()
	if err != nil {
		return nil, err
	}

	result := make([]*domain.NarrativeEntry, 0, len(snap.Narratives))
	for _, e := range snap.Narratives {
		result = append(result, e)
	}
	return result, nil
}

// GetByStatus retrieves entries with the given lifecycle status.
func (s *NarrativeStore) GetByStatus(ctx context.Context, status domain.NarrativeStatus) ([]*domain.NarrativeEntry, error) {
	all, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	var result []*domain.NarrativeEntry
	for _, e := range all {
		if e.Status == status {
			result = append(result, e)
		}
	}
	return result, nil
}

// LoadMeta retrieves store-level bookkeeping.
func (s *NarrativeStore) LoadMeta(_ context.Context) (*domain.StoreMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read()
	if err != nil {
		return nil, err
	}
	meta := snap.Meta
	return &meta, nil
}

// SaveRun upserts entries and meta as one atomic document rewrite.
func (s *NarrativeStore) SaveRun(_ context.Context, entries []*domain.NarrativeEntry, meta *domain.StoreMeta) error {
	for _, e := range entries {
		if e == nil || e.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read()
	if err != nil {
		return err
	}

	for _, e := range entries {
		snap.Narratives[e.ID] = e
	}
	if meta != nil {
		snap.Meta = *meta
	}

	return s.write(snap)
}

// read loads the snapshot, returning an empty one when the file is absent.
func (s *NarrativeStore) read() (*snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &snapshot{Narratives: make(map[string]*domain.NarrativeEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read narrative store file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode narrative store file: %w", err)
	}
	if snap.Narratives == nil {
		snap.Narratives = make(map[string]*domain.NarrativeEntry)
	}
	return &snap, nil
}

// write replaces the snapshot atomically via temp file + rename.
func (s *NarrativeStore) write(snap *snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode narrative store file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create narrative store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".narratives-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace narrative store file: %w", err)
	}
	return nil
}
