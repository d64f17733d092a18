// Package scanner walks the docs root and assembles the document tree and
// collection.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/parser"
	"github.com/starford/dagaz/internal/storage"
)

// defaultIgnore is always applied on top of configured patterns.
var defaultIgnore = []string{".git/**", ".obsidian/**", "node_modules/**"}

// ScanError is fatal: the root itself could not be scanned. Per-file
// problems never produce one.
type ScanError struct {
	Err error
}

func (e *ScanError) Error() string { return fmt.Sprintf("scan failed: %v", e.Err) }
func (e *ScanError) Unwrap() error { return e.Err }

// Failure records a file that was found but could not join the collection.
// Err is usually a *parser.Error; per-file read errors land here too.
type Failure struct {
	Path string
	Err  error
}

// Result is the outcome of one scan. Failed files are excluded from the
// Collection but appear in the Tree as flagged leaves.
type Result struct {
	Tree       *models.Tree
	Collection *models.Collection
	Failures   []Failure
}

// Cache lets the scanner skip re-parsing files whose checksum is unchanged.
// Purely an optimization: scan results are identical with or without it.
type Cache interface {
	Get(path, checksum string) (*models.Document, bool)
	Put(path, checksum string, doc *models.Document) error
}

// Config controls scanning.
type Config struct {
	Ignore  []string     // doublestar patterns matched against relative paths
	Rules   parser.Rules // category inference rules
	Workers int          // parallel parse width; <=0 means GOMAXPROCS
}

// Scanner scans a docs tree into a Result.
type Scanner struct {
	store  storage.Provider
	cfg    Config
	cache  Cache
	logger *slog.Logger
}

// New creates a Scanner over the given provider.
func New(store storage.Provider, cfg Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{store: store, cfg: cfg, logger: logger}
}

// UseCache attaches a scan cache.
func (s *Scanner) UseCache(c Cache) { s.cache = c }

// Scan enumerates, parses, and assembles the tree and collection. Files are
// parsed in parallel; results are collected back into the lexicographic
// enumeration order, so two scans of an unchanged tree are identical.
// Only root-level failures abort; everything per-file is recorded.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	entries, err := s.store.List()
	if err != nil {
		return nil, &ScanError{Err: err}
	}

	candidates := entries[:0:0]
	for _, e := range entries {
		if s.ignored(e.Path) {
			continue
		}
		candidates = append(candidates, e)
	}

	slots := make([]slot, len(candidates))

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = s.scanFile(e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &ScanError{Err: err}
	}

	var (
		docs     []*models.Document
		failures []Failure
		okPaths  []string
		badPaths []string
	)
	for _, sl := range slots {
		switch {
		case sl.doc != nil:
			docs = append(docs, sl.doc)
			okPaths = append(okPaths, sl.doc.Path)
		case sl.fail != nil:
			failures = append(failures, *sl.fail)
			badPaths = append(badPaths, sl.fail.Path)
		}
	}

	return &Result{
		Tree:       models.NewTree(okPaths, badPaths),
		Collection: models.NewCollection(docs),
		Failures:   failures,
	}, nil
}

// slot holds one file's outcome, at its enumeration position.
type slot struct {
	doc  *models.Document
	fail *Failure
}

func (s *Scanner) scanFile(e storage.Entry) (out slot) {
	if e.Err != nil {
		s.logger.Warn("scan: unreadable path", slog.String("path", e.Path), slog.String("error", e.Err.Error()))
		out.fail = &Failure{Path: e.Path, Err: e.Err}
		return out
	}

	if s.cache != nil {
		if doc, ok := s.cache.Get(e.Path, e.Checksum); ok {
			out.doc = doc
			return out
		}
	}

	data, err := s.store.Read(e.Path)
	if err != nil {
		s.logger.Warn("scan: read failed", slog.String("path", e.Path), slog.String("error", err.Error()))
		out.fail = &Failure{Path: e.Path, Err: err}
		return out
	}

	res, err := parser.Parse(data)
	if err != nil {
		out.fail = &Failure{Path: e.Path, Err: err}
		return out
	}

	out.doc = res.Document(e.Path, s.cfg.Rules)
	if s.cache != nil {
		if err := s.cache.Put(e.Path, e.Checksum, out.doc); err != nil {
			s.logger.Warn("scan: cache put failed", slog.String("path", e.Path), slog.String("error", err.Error()))
		}
	}
	return out
}

func (s *Scanner) ignored(path string) bool {
	for _, pat := range defaultIgnore {
		if ok, _ := doublestar.Match(pat, path); ok {
			return true
		}
	}
	for _, pat := range s.cfg.Ignore {
		if ok, _ := doublestar.Match(pat, path); ok {
			return true
		}
	}
	return false
}
