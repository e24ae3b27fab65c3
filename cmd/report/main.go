// Package main renders the current narrative store as a digest without
// running the pipeline: active narratives, recent fades, archive stats.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"narrative-radar/internal/narrative"
	"narrative-radar/internal/reporting"
	"narrative-radar/internal/storage"
	chstore "narrative-radar/internal/storage/clickhouse"
	filestore "narrative-radar/internal/storage/file"
	pgstore "narrative-radar/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the narrative store")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for archive stats")
	storePath := flag.String("store-path", "data/narratives.json", "JSON-file narrative store path (used when no postgres-dsn is given)")
	format := flag.String("format", "markdown", "Output format: markdown, json or csv")
	fadedWindow := flag.Duration("faded-window", 24*time.Hour, "How recent a fade must be to appear in the digest")
	flag.Parse()

	ctx := context.Background()

	var store storage.NarrativeStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fatalf("connecting to postgres: %v", err)
		}
		defer pool.Close()
		store = pgstore.NewNarrativeStore(pool)
	} else {
		store = filestore.NewNarrativeStore(*storePath)
	}

	var history storage.SignalHistoryStore
	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			fatalf("connecting to clickhouse: %v", err)
		}
		defer conn.Close()
		history = chstore.NewSignalHistoryStore(conn)
	}

	tracker := narrative.NewTracker(store, narrative.Config{})
	digest, err := reporting.NewGenerator(tracker, history).Build(ctx, *fadedWindow)
	if err != nil {
		fatalf("building digest: %v", err)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(digest); err != nil {
			fatalf("encoding digest: %v", err)
		}
	case "markdown":
		fmt.Print(reporting.RenderMarkdown(digest))
	case "csv":
		fmt.Print(reporting.RenderCSV(digest))
	default:
		fatalf("unknown format %q (want markdown, json or csv)", *format)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error "+format+"\n", args...)
	os.Exit(1)
}
