package memory

import (
	"context"
	"sync"
	"time"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/storage"
)

// SignalHistoryStore is an in-memory implementation of
// storage.SignalHistoryStore.
type SignalHistoryStore struct {
	mu      sync.RWMutex
	runs    map[string]*domain.RunRecord
	signals []domain.ArchivedSignal
	clock   func() time.Time
}

// NewSignalHistoryStore creates a new in-memory history store.
func NewSignalHistoryStore() *SignalHistoryStore {
	return &SignalHistoryStore{
		runs:  make(map[string]*domain.RunRecord),
		clock: time.Now,
	}
}

// WithClock overrides the clock, for deterministic tests.
func (s *SignalHistoryStore) WithClock(clock func() time.Time) *SignalHistoryStore {
	s.clock = clock
	return s
}

// Compile-time interface check.
var _ storage.SignalHistoryStore = (*SignalHistoryStore)(nil)

// SaveRun archives one run's record and its scored signals.
func (s *SignalHistoryStore) SaveRun(_ context.Context, run *domain.RunRecord, signals []domain.ArchivedSignal) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := *run
	s.runs[run.RunID] = &r
	s.signals = append(s.signals, signals...)
	return nil
}

// GetSignalVelocity computes the topic's growth profile from daily counts
// over the last `days` days: second half of the window vs. the first half,
// as a percentage.
func (s *SignalHistoryStore) GetSignalVelocity(_ context.Context, topic string, days int) (*domain.TopicVelocity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.clock().UTC().AddDate(0, 0, -days)

	daily := make(map[string]int)
	for i := range s.signals {
		sig := &s.signals[i]
		if sig.CollectedAt.Before(cutoff) || !hasTopic(sig.Topics, topic) {
			continue
		}
		daily[sig.CollectedAt.UTC().Format("2006-01-02")]++
	}

	return storage.ComputeTopicVelocity(daily), nil
}

// GetStats summarizes the archive.
func (s *SignalHistoryStore) GetStats(_ context.Context) (*domain.HistoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &domain.HistoryStats{
		TotalSignalsCollected: len(s.signals),
		TotalRuns:             len(s.runs),
	}, nil
}

func hasTopic(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}
