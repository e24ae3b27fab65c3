package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/storage"
)

// Meta keys in the narrative_meta key/value table.
const (
	metaKeyTotalRuns   = "total_pipeline_runs"
	metaKeyLastUpdated = "last_updated"
)

// NarrativeStore implements storage.NarrativeStore using PostgreSQL.
// List-valued entry fields are stored as JSONB columns.
type NarrativeStore struct {
	pool *Pool
}

// NewNarrativeStore creates a new NarrativeStore.
func NewNarrativeStore(pool *Pool) *NarrativeStore {
	return &NarrativeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NarrativeStore = (*NarrativeStore)(nil)

const entryColumns = `
	id, name, canonical_name, status, first_detected, last_detected,
	last_updated, faded_at, detection_count, missed_count,
	current_confidence, current_direction, explanation, trend_evidence,
	market_opportunity, topics, all_signals, ideas, refs,
	confidence_history, direction_history
`

// LoadAll retrieves every entry regardless of status.
func (s *NarrativeStore) LoadAll(ctx context.Context) ([]*domain.NarrativeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM narratives`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load narratives: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByStatus retrieves entries with the given lifecycle status.
func (s *NarrativeStore) GetByStatus(ctx context.Context, status domain.NarrativeStatus) ([]*domain.NarrativeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM narratives WHERE status = $1`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("get narratives by status: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LoadMeta retrieves store-level bookkeeping. A fresh store returns
// zero-valued meta.
func (s *NarrativeStore) LoadMeta(ctx context.Context) (*domain.StoreMeta, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM narrative_meta`)
	if err != nil {
		return nil, fmt.Errorf("load narrative meta: %w", err)
	}
	defer rows.Close()

	meta := &domain.StoreMeta{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan meta row: %w", err)
		}
		switch key {
		case metaKeyTotalRuns:
			if n, err := strconv.Atoi(value); err == nil {
				meta.TotalPipelineRuns = n
			}
		case metaKeyLastUpdated:
			if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
				meta.LastUpdated = t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meta rows: %w", err)
	}
	return meta, nil
}

// SaveRun upserts entries and meta inside a single transaction, so a crash
// mid-merge cannot leave a run half-persisted.
func (s *NarrativeStore) SaveRun(ctx context.Context, entries []*domain.NarrativeEntry, meta *domain.StoreMeta) error {
	for _, e := range entries {
		if e == nil || e.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if err := upsertEntry(ctx, tx, e); err != nil {
			return err
		}
	}

	if meta != nil {
		if err := upsertMeta(ctx, tx, metaKeyTotalRuns, strconv.Itoa(meta.TotalPipelineRuns)); err != nil {
			return err
		}
		if err := upsertMeta(ctx, tx, metaKeyLastUpdated, meta.LastUpdated.UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

func upsertEntry(ctx context.Context, tx pgx.Tx, e *domain.NarrativeEntry) error {
	topics, err := marshalJSON(e.Topics)
	if err != nil {
		return err
	}
	allSignals, err := marshalJSON(e.AllSignals)
	if err != nil {
		return err
	}
	ideas, err := marshalJSON(e.Ideas)
	if err != nil {
		return err
	}
	refs, err := marshalJSON(e.References)
	if err != nil {
		return err
	}
	confHistory, err := marshalJSON(e.ConfidenceHistory)
	if err != nil {
		return err
	}
	dirHistory, err := marshalJSON(e.DirectionHistory)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO narratives (` + entryColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			canonical_name = EXCLUDED.canonical_name,
			status = EXCLUDED.status,
			first_detected = EXCLUDED.first_detected,
			last_detected = EXCLUDED.last_detected,
			last_updated = EXCLUDED.last_updated,
			faded_at = EXCLUDED.faded_at,
			detection_count = EXCLUDED.detection_count,
			missed_count = EXCLUDED.missed_count,
			current_confidence = EXCLUDED.current_confidence,
			current_direction = EXCLUDED.current_direction,
			explanation = EXCLUDED.explanation,
			trend_evidence = EXCLUDED.trend_evidence,
			market_opportunity = EXCLUDED.market_opportunity,
			topics = EXCLUDED.topics,
			all_signals = EXCLUDED.all_signals,
			ideas = EXCLUDED.ideas,
			refs = EXCLUDED.refs,
			confidence_history = EXCLUDED.confidence_history,
			direction_history = EXCLUDED.direction_history
	`

	_, err = tx.Exec(ctx, query,
		e.ID,
		e.Name,
		e.CanonicalName,
		string(e.Status),
		e.FirstDetected,
		e.LastDetected,
		e.LastUpdated,
		e.FadedAt,
		e.DetectionCount,
		e.MissedCount,
		string(e.CurrentConfidence),
		string(e.CurrentDirection),
		e.Explanation,
		e.TrendEvidence,
		e.MarketOpportunity,
		topics,
		allSignals,
		ideas,
		refs,
		confHistory,
		dirHistory,
	)
	if err != nil {
		return fmt.Errorf("upsert narrative %s: %w", e.ID, err)
	}
	return nil
}

func upsertMeta(ctx context.Context, tx pgx.Tx, key, value string) error {
	query := `
		INSERT INTO narrative_meta (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := tx.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert meta %s: %w", key, err)
	}
	return nil
}

// scanEntries scans rows into narrative entries, decoding JSONB columns.
func scanEntries(rows pgx.Rows) ([]*domain.NarrativeEntry, error) {
	var entries []*domain.NarrativeEntry

	for rows.Next() {
		var (
			e          domain.NarrativeEntry
			status     string
			confidence string
			direction  string
			topics     []byte
			allSignals []byte
			ideas      []byte
			refs       []byte
			confHist   []byte
			dirHist    []byte
		)

		err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.CanonicalName,
			&status,
			&e.FirstDetected,
			&e.LastDetected,
			&e.LastUpdated,
			&e.FadedAt,
			&e.DetectionCount,
			&e.MissedCount,
			&confidence,
			&direction,
			&e.Explanation,
			&e.TrendEvidence,
			&e.MarketOpportunity,
			&topics,
			&allSignals,
			&ideas,
			&refs,
			&confHist,
			&dirHist,
		)
		if err != nil {
			return nil, fmt.Errorf("scan narrative row: %w", err)
		}

		e.Status = domain.NarrativeStatus(status)
		e.CurrentConfidence = domain.Confidence(confidence)
		e.CurrentDirection = domain.Direction(direction)

		if err := unmarshalJSON(topics, &e.Topics); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(allSignals, &e.AllSignals); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(ideas, &e.Ideas); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(refs, &e.References); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(confHist, &e.ConfidenceHistory); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(dirHist, &e.DirectionHistory); err != nil {
			return nil, err
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate narrative rows: %w", err)
	}
	return entries, nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb column: %w", err)
	}
	return data, nil
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode jsonb column: %w", err)
	}
	return nil
}
