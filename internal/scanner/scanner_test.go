package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/parser"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/testutil"
)

func scanFixture(t *testing.T, cfg Config) *Result {
	t.Helper()
	_, store := testutil.TestDocs(t)
	s := New(store, cfg, testutil.Logger(t))
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return res
}

func TestScan_CollectionContents(t *testing.T) {
	res := scanFixture(t, Config{Rules: parser.DefaultRules()})

	// bare.md has no frontmatter: excluded from the collection.
	wantPaths := []string{
		"active/api/endpoints.md",
		"active/architecture/core-concepts.md",
		"active/architecture/execution-engine.md",
		"archive/2025/old-design.md",
		"index.md",
		"research/survey.md",
	}
	if got := res.Collection.Paths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("paths = %v, want %v", got, wantPaths)
	}

	doc, ok := res.Collection.Get("active/architecture/core-concepts.md")
	if !ok {
		t.Fatal("core-concepts not in collection")
	}
	if doc.Title != "Core Concepts" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Category != "active" {
		t.Errorf("category = %q, want active (path rule)", doc.Category)
	}
}

func TestScan_FailedFileFlaggedInTree(t *testing.T) {
	res := scanFixture(t, Config{Rules: parser.DefaultRules()})

	if len(res.Failures) != 1 || res.Failures[0].Path != "misc/bare.md" {
		t.Fatalf("failures = %+v, want one for misc/bare.md", res.Failures)
	}
	var perr *parser.Error
	if !errors.As(res.Failures[0].Err, &perr) || perr.Kind != parser.KindMissingFrontmatter {
		t.Errorf("failure err = %v, want missing_frontmatter", res.Failures[0].Err)
	}

	var flagged *models.Leaf
	res.Tree.Walk(func(l *models.Leaf) {
		if l.Path == "misc/bare.md" {
			flagged = l
		}
	})
	if flagged == nil {
		t.Fatal("bare.md missing from tree")
	}
	if !flagged.Failed {
		t.Error("bare.md leaf not flagged as failed")
	}
}

func TestScan_UnreadableFileBecomesFailure(t *testing.T) {
	root, store := testutil.TestDocs(t)
	// A dangling symlink is enumerated but unreadable.
	if err := os.Symlink(filepath.Join(root, "missing-target"), filepath.Join(root, "misc", "broken.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s := New(store, Config{Rules: parser.DefaultRules()}, testutil.Logger(t))
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var found bool
	for _, f := range res.Failures {
		if f.Path == "misc/broken.md" {
			found = true
			if f.Err == nil {
				t.Error("failure for misc/broken.md carries no error")
			}
		}
	}
	if !found {
		t.Fatalf("failures = %+v, want one for misc/broken.md", res.Failures)
	}
	if res.Collection.Len() != 6 {
		t.Errorf("collection len = %d, want 6: one bad file must not hide the rest", res.Collection.Len())
	}
}

func TestScan_Deterministic(t *testing.T) {
	_, store := testutil.TestDocs(t)
	s := New(store, Config{Rules: parser.DefaultRules(), Workers: 4}, testutil.Logger(t))

	first, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Collection.Paths(), second.Collection.Paths()) {
		t.Error("collection ordering differs between scans")
	}
	if !reflect.DeepEqual(first.Tree, second.Tree) {
		t.Error("tree differs between scans")
	}
}

func TestScan_IgnorePatterns(t *testing.T) {
	res := scanFixture(t, Config{
		Rules:  parser.DefaultRules(),
		Ignore: []string{"archive/**"},
	})
	if _, ok := res.Collection.Get("archive/2025/old-design.md"); ok {
		t.Error("archived doc should be ignored")
	}
	if _, ok := res.Collection.Get("index.md"); !ok {
		t.Error("index.md should still be present")
	}
}

func TestScan_RootErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir, ".md")
	if err != nil {
		t.Fatal(err)
	}
	// Scanning an empty root works and yields an empty result...
	s := New(store, Config{}, testutil.Logger(t))
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan on empty root: %v", err)
	}
	if res.Collection.Len() != 0 {
		t.Errorf("len = %d, want 0", res.Collection.Len())
	}
	// ...while a missing root fails at provider construction.
	if _, err := storage.NewFS(dir+"/missing", ".md"); err == nil {
		t.Error("expected error for missing root")
	}
}

type fakeCache struct {
	store map[string]*models.Document
	hits  int
	puts  int
}

func (c *fakeCache) Get(path, checksum string) (*models.Document, bool) {
	d, ok := c.store[path+"\x00"+checksum]
	if ok {
		c.hits++
	}
	return d, ok
}

func (c *fakeCache) Put(path, checksum string, doc *models.Document) error {
	c.store[path+"\x00"+checksum] = doc
	c.puts++
	return nil
}

func TestScan_CacheIsInvisible(t *testing.T) {
	_, store := testutil.TestDocs(t)

	cold := New(store, Config{Rules: parser.DefaultRules()}, testutil.Logger(t))
	want, err := cold.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	c := &fakeCache{store: make(map[string]*models.Document)}
	warm := New(store, Config{Rules: parser.DefaultRules()}, testutil.Logger(t))
	warm.UseCache(c)

	first, err := warm.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.puts == 0 {
		t.Error("expected cache puts on cold scan")
	}
	second, err := warm.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.hits == 0 {
		t.Error("expected cache hits on warm scan")
	}

	for _, res := range []*Result{first, second} {
		if !reflect.DeepEqual(res.Collection.Paths(), want.Collection.Paths()) {
			t.Error("cached scan produced different collection")
		}
	}
}
