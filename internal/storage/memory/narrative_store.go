package memory

import (
	"context"
	"sync"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/storage"
)

// NarrativeStore is an in-memory implementation of storage.NarrativeStore.
type NarrativeStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.NarrativeEntry // keyed by entry ID
	meta    domain.StoreMeta
}

// NewNarrativeStore creates a new in-memory narrative store.
func NewNarrativeStore() *NarrativeStore {
	return &NarrativeStore{
		entries: make(map[string]*domain.NarrativeEntry),
	}
}

// Compile-time interface check.
var _ storage.NarrativeStore = (*NarrativeStore)(nil)

// LoadAll retrieves every entry regardless of status.
func (s *NarrativeStore) LoadAll(_ context.Context) ([]*domain.NarrativeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.NarrativeEntry, 0, len(s.entries))
	for _, e := range s.entries {
		result = append(result, copyEntry(e))
	}
	return result, nil
}

// GetByStatus retrieves entries with the given lifecycle status.
func (s *NarrativeStore) GetByStatus(_ context.Context, status domain.NarrativeStatus) ([]*domain.NarrativeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NarrativeEntry
	for _, e := range s.entries {
		if e.Status == status {
			result = append(result, copyEntry(e))
		}
	}
	return result, nil
}

// LoadMeta retrieves store-level bookkeeping.
func (s *NarrativeStore) LoadMeta(_ context.Context) (*domain.StoreMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta := s.meta
	return &meta, nil
}

// SaveRun upserts entries and meta atomically under one lock.
func (s *NarrativeStore) SaveRun(_ context.Context, entries []*domain.NarrativeEntry, meta *domain.StoreMeta) error {
	for _, e := range entries {
		if e == nil || e.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries[e.ID] = copyEntry(e)
	}
	if meta != nil {
		s.meta = *meta
	}
	return nil
}

// copyEntry deep-copies an entry so callers cannot mutate stored state.
func copyEntry(e *domain.NarrativeEntry) *domain.NarrativeEntry {
	c := *e
	if e.FadedAt != nil {
		faded := *e.FadedAt
		c.FadedAt = &faded
	}
	c.Topics = append([]string(nil), e.Topics...)
	c.AllSignals = append([]domain.SupportingSignal(nil), e.AllSignals...)
	c.Ideas = append([]domain.Idea(nil), e.Ideas...)
	c.References = append([]string(nil), e.References...)
	c.ConfidenceHistory = append([]domain.ConfidencePoint(nil), e.ConfidenceHistory...)
	c.DirectionHistory = append([]domain.DirectionPoint(nil), e.DirectionHistory...)
	return &c
}
