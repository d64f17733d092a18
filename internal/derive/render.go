package derive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/models"
)

// RenderIndex renders the by-category listing as a markdown index.
func RenderIndex(l *Listings, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Index\n\nGenerated %s.\n", now.Format("2006-01-02"))
	for _, g := range l.ByCategory {
		fmt.Fprintf(&b, "\n## %s\n\n", g.Category)
		for _, r := range g.Rows {
			fmt.Fprintf(&b, "- [%s](%s)", r.Title, r.Path)
			if r.Status != "" {
				fmt.Fprintf(&b, " — %s", r.Status)
			}
			if r.Issues > 0 {
				fmt.Fprintf(&b, " (%d issues)", r.Issues)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderChangelog lists the documents touched within the window, newest
// first.
func RenderChangelog(l *Listings, now time.Time, days int) string {
	cutoff := now.AddDate(0, 0, -days)

	var b strings.Builder
	fmt.Fprintf(&b, "# Changelog\n\nDocuments touched in the last %d days.\n\n", days)
	n := 0
	for _, r := range l.ByRecency {
		last, ok := r.lastTouched()
		if !ok || last.Before(cutoff) {
			continue
		}
		fmt.Fprintf(&b, "- %s [%s](%s)\n", last.Format("2006-01-02"), r.Title, r.Path)
		n++
	}
	if n == 0 {
		b.WriteString("No changes in this window.\n")
	}
	return b.String()
}

// RenderRoadmap lists the work the repository itself implies: drafts still
// in flight and documents due for review.
func RenderRoadmap(l *Listings, report *health.Report) string {
	var b strings.Builder
	b.WriteString("# Roadmap\n\n## Drafts\n\n")
	drafts := 0
	for _, r := range l.ByRecency {
		if r.Status != models.StatusDraft {
			continue
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", r.Title, r.Path)
		drafts++
	}
	if drafts == 0 {
		b.WriteString("None.\n")
	}

	b.WriteString("\n## Review queue\n\n")
	stale := 0
	if report != nil {
		for _, is := range report.Issues {
			if is.Kind != health.KindStale {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", is.Path, is.Detail)
			stale++
		}
	}
	if stale == 0 {
		b.WriteString("Nothing due for review.\n")
	}
	return b.String()
}

// WriteAll renders all three documents into dir.
func WriteAll(dir string, l *Listings, report *health.Report, now time.Time, changelogDays int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("derive: create output dir: %w", err)
	}
	files := map[string]string{
		"INDEX.md":     RenderIndex(l, now),
		"CHANGELOG.md": RenderChangelog(l, now, changelogDays),
		"ROADMAP.md":   RenderRoadmap(l, report),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("derive: write %s: %w", name, err)
		}
	}
	return nil
}
