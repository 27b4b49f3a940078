// Package loader builds the dataset Store from durable sources.
//
// Each table is looked up in the configured sources in order; the first
// source that has data for it wins. A table no source knows about, or one
// whose source fails, is loaded as an empty table so the Store always holds
// every requested name.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JonMunkholm/datasets/internal/core"
)

// ErrNoData is returned by a Source that has nothing for a table.
// Load moves on to the next source when it sees it.
var ErrNoData = errors.New("no data for table")

// Source loads one table by name.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	Load(ctx context.Context, table string) (core.Table, error)
}

// Options controls Load.
type Options struct {
	Tables  []string // Table names; defaults to core.DefaultTables()
	Sources []Source // Tried in order for each table
	Logger  *slog.Logger
}

// Load builds an immutable Store. It never fails: problems are logged and
// the affected table is left empty.
func Load(ctx context.Context, opts Options) *core.Store {
	names := opts.Tables
	if len(names) == 0 {
		names = core.DefaultTables()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tables := make(map[string]core.Table, len(names))
	for _, name := range names {
		tables[name] = loadTable(ctx, logger, name, opts.Sources)
	}

	return core.NewStore(names, tables)
}

func loadTable(ctx context.Context, logger *slog.Logger, name string, sources []Source) core.Table {
	for _, src := range sources {
		start := time.Now()
		t, err := src.Load(ctx, name)
		if errors.Is(err, ErrNoData) {
			logger.Debug("table not found in source", "table", name, "source", src.Name())
			continue
		}
		if err != nil {
			logger.Warn("failed to load table, serving it empty",
				"table", name,
				"source", src.Name(),
				"error", err,
			)
			return core.Table{}
		}
		logger.Info("table loaded",
			"table", name,
			"source", src.Name(),
			"rows", len(t),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if t == nil {
			t = core.Table{}
		}
		return t
	}

	logger.Warn("no source has data for table, serving it empty", "table", name)
	return core.Table{}
}

// DefaultSources returns the standard source chain: Postgres when db is
// non-nil, then Parquet and CSV files in dir.
func DefaultSources(dir string, db Querier) []Source {
	var sources []Source
	if db != nil {
		sources = append(sources, &PostgresSource{DB: db})
	}
	if dir != "" {
		sources = append(sources, &ParquetSource{Dir: dir}, &CSVSource{Dir: dir})
	}
	return sources
}
