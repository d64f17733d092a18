package docservice

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/parser"
	"github.com/starford/dagaz/internal/testutil"
)

func fixtureService(t *testing.T) (string, *Service) {
	t.Helper()
	root, store := testutil.TestDocs(t)
	return root, NewService(store)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Core Concepts":       "core-concepts",
		"  API: v2 design!  ": "api-v2-design",
		"already-slugged":     "already-slugged",
		"---":                 "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew_CreatesParsableDraft(t *testing.T) {
	_, svc := fixtureService(t)

	rel, err := svc.New("research", "Query Planning Notes", day("2026-03-01"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if rel != "research/query-planning-notes.md" {
		t.Errorf("rel = %q", rel)
	}

	data, err := svc.store.Read(rel)
	if err != nil {
		t.Fatal(err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("new doc does not parse: %v", err)
	}
	doc := res.Document(rel, parser.DefaultRules())
	if doc.Status != models.StatusDraft {
		t.Errorf("status = %s, want draft", doc.Status)
	}
	if doc.Title != "Query Planning Notes" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Created == nil || doc.Created.Format("2006-01-02") != "2026-03-01" {
		t.Errorf("created = %v", doc.Created)
	}
}

func TestNew_Conflict(t *testing.T) {
	_, svc := fixtureService(t)
	if _, err := svc.New("research", "Survey", day("2026-03-01")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestNew_RejectsEmptyTitle(t *testing.T) {
	_, svc := fixtureService(t)
	if _, err := svc.New("research", "   ", day("2026-03-01")); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestArchive_MovesAndMarks(t *testing.T) {
	_, svc := fixtureService(t)

	dest, err := svc.Archive("research/survey.md", "superseded", day("2026-03-01"))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if dest != "archive/2026/survey.md" {
		t.Errorf("dest = %q", dest)
	}

	if _, err := svc.store.Read("research/survey.md"); err == nil {
		t.Error("original still exists after archive")
	}

	data, err := svc.store.Read(dest)
	if err != nil {
		t.Fatal(err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("archived doc does not parse: %v", err)
	}
	doc := res.Document(dest, parser.DefaultRules())
	if doc.Status != models.StatusArchived {
		t.Errorf("status = %s, want archived", doc.Status)
	}
	// Original fields and body survive the rewrite.
	if doc.Title != "Research Survey" {
		t.Errorf("title = %q", doc.Title)
	}
	if !strings.Contains(doc.Body, "# Research Survey") {
		t.Errorf("body lost: %q", doc.Body)
	}
	if !strings.Contains(string(data), "archive_reason: superseded") {
		t.Errorf("reason not recorded:\n%s", data)
	}
}

func TestArchive_NotFound(t *testing.T) {
	_, svc := fixtureService(t)
	if _, err := svc.Archive("nope.md", "", day("2026-03-01")); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestArchive_DestConflict(t *testing.T) {
	root, svc := fixtureService(t)
	// Archiving a second file with the same name into the same year collides.
	if _, err := svc.Archive("research/survey.md", "", day("2026-03-01")); err != nil {
		t.Fatal(err)
	}
	testutil.WriteDoc(t, root, "research/survey.md", "---\ntitle: Survey Again\n---\nBody\n")
	if _, err := svc.Archive("research/survey.md", "", day("2026-03-01")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}
