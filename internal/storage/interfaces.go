package storage

import (
	"context"

	"narrative-radar/internal/domain"
)

// NarrativeStore persists narrative entries across pipeline runs.
//
// Merge bookkeeping (missed_count, detection_count) assumes at most one
// concurrent writer per store; run serialization is the caller's job.
// SaveRun must apply all upserts atomically so a crash mid-merge cannot
// leave some entries updated and others stale for the same run.
type NarrativeStore interface {
	// LoadAll retrieves every entry regardless of status.
	LoadAll(ctx context.Context) ([]*domain.NarrativeEntry, error)

	// GetByStatus retrieves entries with the given lifecycle status,
	// in no particular order.
	GetByStatus(ctx context.Context, status domain.NarrativeStatus) ([]*domain.NarrativeEntry, error)

	// LoadMeta retrieves store-level bookkeeping. A fresh store returns
	// zero-valued meta, not ErrNotFound.
	LoadMeta(ctx context.Context) (*domain.StoreMeta, error)

	// SaveRun upserts the given entries and meta as one atomic unit.
	SaveRun(ctx context.Context, entries []*domain.NarrativeEntry, meta *domain.StoreMeta) error
}

// SignalHistoryStore archives scored signals per run and answers topic
// velocity queries over the archive.
type SignalHistoryStore interface {
	// SaveRun archives one run's record and its scored signals.
	SaveRun(ctx context.Context, run *domain.RunRecord, signals []domain.ArchivedSignal) error

	// GetSignalVelocity computes the growth profile of a topic over the
	// last `days` days of archived signals.
	GetSignalVelocity(ctx context.Context, topic string, days int) (*domain.TopicVelocity, error)

	// GetStats summarizes the archive.
	GetStats(ctx context.Context) (*domain.HistoryStats, error)
}
