package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/graph"
	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/parser"
	"github.com/starford/dagaz/internal/scanner"
	"github.com/starford/dagaz/internal/testutil"
)

type fixture struct {
	coll   *models.Collection
	graph  *graph.Graph
	report *health.Report
}

func load(t *testing.T) fixture {
	t.Helper()
	_, store := testutil.TestDocs(t)
	s := scanner.New(store, scanner.Config{Rules: parser.DefaultRules()}, testutil.Logger(t))
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	g := graph.Build(res.Collection, graph.Options{})
	now, _ := time.Parse("2006-01-02", "2026-04-01")
	report := health.Run(res.Collection, g, res.Failures, now, health.Config{
		Roots:          []string{"index.md"},
		DefaultCadence: 180 * 24 * time.Hour,
	})
	return fixture{coll: res.Collection, graph: g, report: report}
}

func TestByTag_CaseInsensitive(t *testing.T) {
	f := load(t)
	docs := ByTag(f.coll, "ARCHITECTURE")
	want := []string{
		"active/architecture/core-concepts.md",
		"active/architecture/execution-engine.md",
	}
	if len(docs) != len(want) {
		t.Fatalf("got %d docs, want %d", len(docs), len(want))
	}
	for i, d := range docs {
		if d.Path != want[i] {
			t.Errorf("docs[%d] = %s, want %s", i, d.Path, want[i])
		}
	}
}

func TestByKeyword(t *testing.T) {
	f := load(t)

	docs := ByKeyword(f.coll, "execution")
	found := false
	for _, d := range docs {
		if d.Path == "active/architecture/core-concepts.md" {
			found = true // body mentions the execution engine
		}
	}
	if !found {
		t.Errorf("keyword search missed body match, got %d docs", len(docs))
	}

	if docs := ByKeyword(f.coll, ""); docs != nil {
		t.Errorf("empty keyword returned %d docs, want none", len(docs))
	}
	if docs := ByKeyword(f.coll, "zzz-not-present"); len(docs) != 0 {
		t.Errorf("bogus keyword returned %d docs", len(docs))
	}
}

func TestSummarize(t *testing.T) {
	f := load(t)

	s, err := Summarize(f.coll, f.graph, f.report, "active/architecture/core-concepts.md")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(s.Outbound) != 2 {
		t.Errorf("outbound = %v, want 2 targets", s.Outbound)
	}
	if len(s.Backlinks) != 2 {
		t.Errorf("backlinks = %v, want 2 sources", s.Backlinks)
	}

	s, err = Summarize(f.coll, f.graph, f.report, "research/survey.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Issues) != 3 {
		t.Errorf("survey issues = %d, want 3", len(s.Issues))
	}
}

func TestSummarize_NotFound(t *testing.T) {
	f := load(t)
	_, err := Summarize(f.coll, f.graph, f.report, "nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCounts(t *testing.T) {
	f := load(t)
	counts := Counts(f.coll)

	got := make(map[string]int)
	for _, c := range counts {
		got[c.Category] = c.Count
	}
	if got["active"] != 3 {
		t.Errorf("active = %d, want 3", got["active"])
	}
	if got["archive"] != 1 {
		t.Errorf("archive = %d, want 1", got["archive"])
	}
	for i := 1; i < len(counts); i++ {
		if counts[i-1].Category > counts[i].Category {
			t.Error("counts not sorted by category")
		}
	}
}
