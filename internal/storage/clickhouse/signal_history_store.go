package clickhouse

import (
	"context"
	"fmt"
	"time"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/storage"
)

// SignalHistoryStore implements storage.SignalHistoryStore using ClickHouse.
type SignalHistoryStore struct {
	conn  *Conn
	clock func() time.Time
}

// NewSignalHistoryStore creates a new SignalHistoryStore.
func NewSignalHistoryStore(conn *Conn) *SignalHistoryStore {
	return &SignalHistoryStore{conn: conn, clock: time.Now}
}

// WithClock overrides the clock, for deterministic tests.
func (s *SignalHistoryStore) WithClock(clock func() time.Time) *SignalHistoryStore {
	s.clock = clock
	return s
}

// Compile-time interface check.
var _ storage.SignalHistoryStore = (*SignalHistoryStore)(nil)

// SaveRun archives one run's record and its scored signals.
func (s *SignalHistoryStore) SaveRun(ctx context.Context, run *domain.RunRecord, signals []domain.ArchivedSignal) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	if len(signals) > 0 {
		batch, err := s.conn.PrepareBatch(ctx, `
			INSERT INTO signal_history (
				run_id, source, signal_type, name, content, topics, score, collected_at
			)
		`)
		if err != nil {
			return fmt.Errorf("prepare signal batch: %w", err)
		}

		for i := range signals {
			sig := &signals[i]
			err = batch.Append(
				sig.RunID, sig.Source, sig.SignalType, sig.Name,
				sig.Content, sig.Topics, sig.Score, sig.CollectedAt,
			)
			if err != nil {
				return fmt.Errorf("append signal to batch: %w", err)
			}
		}

		if err := batch.Send(); err != nil {
			return fmt.Errorf("send signal batch: %w", err)
		}
	}

	err := s.conn.Exec(ctx, `
		INSERT INTO pipeline_runs (run_id, started_at, completed_at, total_signals, total_narratives)
		VALUES (?, ?, ?, ?, ?)
	`, run.RunID, run.StartedAt, run.CompletedAt, uint32(run.TotalSignals), uint32(run.TotalNarratives))
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}

	return nil
}

// GetSignalVelocity computes the topic's growth profile from daily counts
// over the last `days` days of archived signals.
func (s *SignalHistoryStore) GetSignalVelocity(ctx context.Context, topic string, days int) (*domain.TopicVelocity, error) {
	cutoff := s.clock().UTC().AddDate(0, 0, -days)

	query := `
		SELECT toString(toDate(collected_at)) AS day, count() AS cnt
		FROM signal_history
		WHERE has(topics, ?) AND collected_at > ?
		GROUP BY day
		ORDER BY day
	`

	rows, err := s.conn.Query(ctx, query, topic, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query topic velocity: %w", err)
	}
	defer rows.Close()

	daily := make(map[string]int)
	for rows.Next() {
		var day string
		var count uint64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan velocity row: %w", err)
		}
		daily[day] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate velocity rows: %w", err)
	}

	return storage.ComputeTopicVelocity(daily), nil
}

// GetStats summarizes the archive.
func (s *SignalHistoryStore) GetStats(ctx context.Context) (*domain.HistoryStats, error) {
	var totalSignals, totalRuns uint64

	row := s.conn.QueryRow(ctx, `SELECT count() FROM signal_history`)
	if err := row.Scan(&totalSignals); err != nil {
		return nil, fmt.Errorf("count archived signals: %w", err)
	}

	row = s.conn.QueryRow(ctx, `SELECT uniqExact(run_id) FROM pipeline_runs`)
	if err := row.Scan(&totalRuns); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	return &domain.HistoryStats{
		TotalSignalsCollected: int(totalSignals),
		TotalRuns:             int(totalRuns),
	}, nil
}
