// Package engine owns the pipeline from files on disk to a queryable
// snapshot: scan, link resolution, health checks, derived listings.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/dagaz/internal/derive"
	"github.com/starford/dagaz/internal/graph"
	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/scanner"
	"github.com/starford/dagaz/internal/storage"
)

// Config assembles the per-stage configuration.
type Config struct {
	Scan   scanner.Config
	Graph  graph.Options
	Health health.Config
}

// Snapshot is one consistent view of the repository. All fields are built
// from the same scan, so the graph, report, and listings always agree with
// the collection. Snapshots are immutable once published.
type Snapshot struct {
	Tree       *models.Tree
	Collection *models.Collection
	Graph      *graph.Graph
	Report     *health.Report
	Listings   *derive.Listings
	Failures   []scanner.Failure
	BuiltAt    time.Time
}

// Engine rebuilds snapshots on demand and serves the latest one to any
// number of concurrent readers.
type Engine struct {
	store   storage.Provider
	scanner *scanner.Scanner
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.RWMutex
	snap *Snapshot
}

// New creates an Engine over the given provider.
func New(store storage.Provider, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		scanner: scanner.New(store, cfg.Scan, logger),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// UseCache attaches a scan cache to the underlying scanner.
func (e *Engine) UseCache(c scanner.Cache) { e.scanner.UseCache(c) }

// Rebuild runs the full pipeline and publishes the result. Readers holding
// the previous snapshot are unaffected; the swap is atomic under the lock.
func (e *Engine) Rebuild(ctx context.Context) (*Snapshot, error) {
	start := e.now()

	res, err := e.scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: rebuild: %w", err)
	}

	g := graph.Build(res.Collection, e.cfg.Graph)
	report := health.Run(res.Collection, g, res.Failures, start, e.cfg.Health)
	listings := derive.Derive(res.Collection, report)

	snap := &Snapshot{
		Tree:       res.Tree,
		Collection: res.Collection,
		Graph:      g,
		Report:     report,
		Listings:   listings,
		Failures:   res.Failures,
		BuiltAt:    start,
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	errs, warns, _ := report.Counts()
	e.logger.Info("engine: rebuilt",
		slog.Int("docs", res.Collection.Len()),
		slog.Int("failures", len(res.Failures)),
		slog.Int("errors", errs),
		slog.Int("warnings", warns),
		slog.Duration("took", e.now().Sub(start)))
	return snap, nil
}

// Snapshot returns the latest published snapshot, or nil before the first
// successful Rebuild.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}
