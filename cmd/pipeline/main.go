// Package main runs one narrative-radar pipeline pass over a batch of
// collected signals: score → pre-cluster → detect → merge → report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"narrative-radar/internal/detect"
	"narrative-radar/internal/domain"
	"narrative-radar/internal/narrative"
	"narrative-radar/internal/observability"
	"narrative-radar/internal/pipeline"
	"narrative-radar/internal/scoring"
	"narrative-radar/internal/storage"
	chstore "narrative-radar/internal/storage/clickhouse"
	filestore "narrative-radar/internal/storage/file"
	"narrative-radar/internal/storage/memory"
	"narrative-radar/internal/storage/migrations"
	pgstore "narrative-radar/internal/storage/postgres"
)

func main() {
	signalsPath := flag.String("signals", "data/signals.json", "Path to the collected signals JSON file")
	demo := flag.Bool("demo", false, "Run on a built-in sample batch instead of a signals file")
	reportDir := flag.String("report-dir", "data", "Directory for generated reports")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the narrative store")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the signal history archive")
	storePath := flag.String("store-path", "", "JSON-file narrative store path (used when no postgres-dsn is given)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage, discarding state after the run")
	matchThreshold := flag.Float64("match-threshold", 0, "Narrative name-overlap match threshold (0 = default)")
	clusterThreshold := flag.Float64("cluster-threshold", 0, "Signal pre-cluster similarity threshold (0 = default)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stdout, "[main] ", log.LstdFlags)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling run...", sig)
		cancel()
	}()

	var signals []domain.Signal
	if *demo {
		signals = pipeline.SampleSignals(time.Now())
		logger.Printf("Demo mode: using %d built-in sample signals", len(signals))
	} else {
		var err error
		signals, err = loadSignals(*signalsPath)
		if err != nil {
			logger.Fatalf("Load signals: %v", err)
		}
		logger.Printf("Loaded %d signals from %s", len(signals), *signalsPath)
	}

	narrativeStore, history, cleanup, err := createStores(ctx, logger, *postgresDSN, *clickhouseDSN, *storePath, *useMemory)
	if err != nil {
		logger.Fatalf("Storage setup: %v", err)
	}
	defer cleanup()

	runner := pipeline.NewRunner(pipeline.Options{
		Scorer:           scoring.NewScorer(),
		Detector:         detect.NewRuleBased(),
		Tracker:          narrative.NewTracker(narrativeStore, narrative.Config{MatchThreshold: *matchThreshold}),
		History:          history,
		ClusterThreshold: *clusterThreshold,
	})

	report, err := runner.Run(ctx, signals)
	if err != nil {
		logger.Fatalf("Pipeline run: %v", err)
	}

	if err := pipeline.SaveReport(*reportDir, report); err != nil {
		logger.Fatalf("Save report: %v", err)
	}

	fmt.Printf("Run %s complete:\n", report.RunID)
	fmt.Printf("  Signals collected: %d (%d high-score)\n",
		report.SignalSummary.TotalCollected, report.SignalSummary.HighScoreSignals)
	fmt.Printf("  Narratives: %d\n", len(report.Narratives))
	for _, n := range report.Narratives {
		fmt.Printf("    [%s] %s (%s, seen %d times)\n", n.Status, n.Name, n.Confidence, n.DetectionCount)
	}
	fmt.Printf("  Report written to %s\n", *reportDir)
}

// signalsFile matches the collector output format: either a bare JSON array
// of signals or an object with a "signals" key.
type signalsFile struct {
	Signals []domain.Signal `json:"signals"`
}

func loadSignals(path string) ([]domain.Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var bare []domain.Signal
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}
	var wrapped signalsFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wrapped.Signals, nil
}

// createStores wires the narrative store and signal history archive:
// postgres/clickhouse when DSNs are given, a JSON file or memory otherwise.
func createStores(ctx context.Context, logger *log.Logger, postgresDSN, clickhouseDSN, storePath string, useMemory bool) (storage.NarrativeStore, storage.SignalHistoryStore, func(), error) {
	noop := func() {}

	if useMemory {
		logger.Println("Using in-memory storage")
		return memory.NewNarrativeStore(), memory.NewSignalHistoryStore(), noop, nil
	}

	var narrativeStore storage.NarrativeStore
	cleanup := noop

	switch {
	case postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		narrativeStore = pgstore.NewNarrativeStore(pool)
		cleanup = pool.Close
		logger.Println("Narrative store: postgres")
	case storePath != "":
		narrativeStore = filestore.NewNarrativeStore(storePath)
		logger.Printf("Narrative store: file (%s)", storePath)
	default:
		narrativeStore = memory.NewNarrativeStore()
		logger.Println("Narrative store: memory (no -postgres-dsn or -store-path)")
	}

	var history storage.SignalHistoryStore
	if clickhouseDSN != "" {
		start := time.Now()
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("clickhouse setup: %w", err)
		}
		logger.Printf("Signal history: clickhouse (migrations in %s)", time.Since(start).Round(time.Millisecond))
		history = chstore.NewSignalHistoryStore(conn)
		prev := cleanup
		cleanup = func() {
			conn.Close()
			prev()
		}
	} else {
		history = memory.NewSignalHistoryStore()
		logger.Println("Signal history: memory (no -clickhouse-dsn)")
	}

	return narrativeStore, history, cleanup, nil
}
