// Package health runs the repository checks: staleness, orphans, broken and
// ambiguous references, and frontmatter problems.
package health

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/graph"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/scanner"
)

// Kind identifies a check.
type Kind int

const (
	KindFrontmatter Kind = iota
	KindBrokenLink
	KindAmbiguousLink
	KindStale
	KindOrphan
)

func (k Kind) String() string {
	switch k {
	case KindFrontmatter:
		return "frontmatter"
	case KindBrokenLink:
		return "broken_link"
	case KindAmbiguousLink:
		return "ambiguous_link"
	case KindStale:
		return "stale"
	case KindOrphan:
		return "orphan"
	default:
		return "unknown"
	}
}

// Severity ranks an issue. Errors fail a check run; warnings and info do not.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Issue is one finding against one document.
type Issue struct {
	Path     string   `json:"path"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
	Ref      string   `json:"ref,omitempty"` // the offending reference, for link issues
}

// Report is the outcome of one health run. Issues are sorted by
// (path, kind, detail) so repeated runs over an unchanged tree are
// byte-identical.
type Report struct {
	Issues      []Issue   `json:"issues"`
	DocsChecked int       `json:"docs_checked"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Config controls a health run.
type Config struct {
	// Roots are reachability roots for the orphan check, as collection
	// paths. When empty (or none exist), documents nothing links to act
	// as roots instead.
	Roots []string
	// DefaultCadence applies to documents that declare no review cadence.
	// Zero disables the staleness check for them.
	DefaultCadence time.Duration
}

// Run executes every check against a scanned collection and its link graph.
// failures carries the files that never made it into the collection; they
// surface as frontmatter errors. Archived documents are exempt from the
// staleness and orphan checks: archiving marks a document as deliberately
// retired, and flagging the whole archive on every run would drown the
// report.
func Run(coll *models.Collection, g *graph.Graph, failures []scanner.Failure, now time.Time, cfg Config) *Report {
	r := &Report{
		DocsChecked: coll.Len() + len(failures),
		GeneratedAt: now,
	}

	for _, f := range failures {
		r.Issues = append(r.Issues, Issue{
			Path:     f.Path,
			Kind:     KindFrontmatter,
			Severity: SeverityError,
			Detail:   f.Err.Error(),
		})
	}

	r.Issues = append(r.Issues, linkIssues(g)...)
	r.Issues = append(r.Issues, staleIssues(coll, now, cfg.DefaultCadence)...)
	r.Issues = append(r.Issues, orphanIssues(coll, g, cfg.Roots)...)

	sort.Slice(r.Issues, func(i, j int) bool {
		a, b := r.Issues[i], r.Issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Kind != b.Kind {
			return a.Kind.String() < b.Kind.String()
		}
		return a.Detail < b.Detail
	})
	return r
}

func linkIssues(g *graph.Graph) []Issue {
	var out []Issue
	for _, e := range g.Broken() {
		detail := fmt.Sprintf("reference %q does not resolve", e.Ref)
		if e.Occurrences > 1 {
			detail = fmt.Sprintf("%s (%d occurrences)", detail, e.Occurrences)
		}
		out = append(out, Issue{
			Path:     e.Source,
			Kind:     KindBrokenLink,
			Severity: SeverityError,
			Detail:   detail,
			Ref:      e.Ref,
		})
	}
	for _, e := range g.Ambiguous() {
		out = append(out, Issue{
			Path:     e.Source,
			Kind:     KindAmbiguousLink,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("reference %q matches multiple documents: %s", e.Ref, strings.Join(e.Candidates, ", ")),
			Ref:      e.Ref,
		})
	}
	return out
}

// staleIssues flags documents whose last touch predates now minus their
// cadence. The boundary is exclusive: a document touched exactly one cadence
// ago is not yet stale. Archived documents are exempt.
func staleIssues(coll *models.Collection, now time.Time, defaultCadence time.Duration) []Issue {
	var out []Issue
	for _, doc := range coll.All() {
		if doc.Status == models.StatusArchived {
			continue
		}
		cadence := doc.Cadence
		if cadence == 0 {
			cadence = defaultCadence
		}
		if cadence == 0 {
			continue
		}
		last := doc.LastTouched()
		if last == nil {
			out = append(out, Issue{
				Path:     doc.Path,
				Kind:     KindFrontmatter,
				Severity: SeverityWarning,
				Detail:   "review cadence applies but no created or updated date is set",
			})
			continue
		}
		if last.Before(now.Add(-cadence)) {
			out = append(out, Issue{
				Path:     doc.Path,
				Kind:     KindStale,
				Severity: SeverityWarning,
				Detail: fmt.Sprintf("last touched %s, past its %s review cadence",
					last.Format("2006-01-02"), formatCadence(cadence)),
			})
		}
	}
	return out
}

// orphanIssues flags documents unreachable from the configured roots. With
// no configured roots present in the collection, documents with no inbound
// references serve as roots, which confines findings to docs that are only
// reachable from inside a cycle. Archived documents are exempt.
func orphanIssues(coll *models.Collection, g *graph.Graph, roots []string) []Issue {
	var present []string
	for _, r := range roots {
		if _, ok := coll.Get(r); ok {
			present = append(present, r)
		}
	}
	if len(present) == 0 {
		for _, doc := range coll.All() {
			if g.InDegree(doc.Path) == 0 {
				present = append(present, doc.Path)
			}
		}
	}

	reach := g.Reachable(present)
	var out []Issue
	for _, doc := range coll.All() {
		if reach[doc.Path] || doc.Status == models.StatusArchived {
			continue
		}
		out = append(out, Issue{
			Path:     doc.Path,
			Kind:     KindOrphan,
			Severity: SeverityInfo,
			Detail:   "not reachable from any root document",
		})
	}
	return out
}

func formatCadence(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	if days > 0 && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return d.String()
}

// Counts returns the number of issues per severity.
func (r *Report) Counts() (errors, warnings, infos int) {
	for _, is := range r.Issues {
		switch is.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return errors, warnings, infos
}

// HasErrors reports whether any issue is error severity.
func (r *Report) HasErrors() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ForPath returns the issues recorded against one document, in report order.
func (r *Report) ForPath(path string) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Path == path {
			out = append(out, is)
		}
	}
	return out
}

// Format renders the report as plain text for the CLI.
func (r *Report) Format() string {
	var b strings.Builder
	for _, is := range r.Issues {
		fmt.Fprintf(&b, "%-7s %-14s %s: %s\n", is.Severity, is.Kind, is.Path, is.Detail)
	}
	errors, warnings, infos := r.Counts()
	fmt.Fprintf(&b, "\n%d documents checked: %d errors, %d warnings, %d info\n",
		r.DocsChecked, errors, warnings, infos)
	return b.String()
}
