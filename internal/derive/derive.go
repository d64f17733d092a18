// Package derive turns a scanned collection and its health report into
// navigable listings and rendered index documents.
package derive

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/models"
)

// Row is one document in a listing.
type Row struct {
	Path     string        `json:"path"`
	Title    string        `json:"title"`
	Category string        `json:"category"`
	Status   models.Status `json:"status"`
	Created  *time.Time    `json:"created,omitempty"`
	Updated  *time.Time    `json:"updated,omitempty"`
	Issues   int           `json:"issues"`
}

// lastTouched mirrors the document rule: updated wins over created.
func (r Row) lastTouched() (time.Time, bool) {
	if r.Updated != nil {
		return *r.Updated, true
	}
	if r.Created != nil {
		return *r.Created, true
	}
	return time.Time{}, false
}

// CategoryGroup is one category's rows.
type CategoryGroup struct {
	Category string `json:"category"`
	Rows     []Row  `json:"rows"`
}

// StatusListing partitions rows into active and archived documents. Rows
// with any other status appear in neither partition.
type StatusListing struct {
	Active   []Row `json:"active"`
	Archived []Row `json:"archived"`
}

// Listings are the derived views over one collection. All orderings are
// total, so deriving twice from the same inputs yields identical listings.
type Listings struct {
	ByCategory []CategoryGroup `json:"by_category"`
	ByRecency  []Row           `json:"by_recency"`
	ByStatus   StatusListing   `json:"by_status"`
}

// Derive builds every listing. The report is optional; when present, each
// row carries its issue count.
func Derive(coll *models.Collection, report *health.Report) *Listings {
	rows := make([]Row, 0, coll.Len())
	for _, doc := range coll.All() {
		row := Row{
			Path:     doc.Path,
			Title:    doc.Title,
			Category: doc.Category,
			Status:   doc.Status,
			Created:  doc.Created,
			Updated:  doc.Updated,
		}
		if report != nil {
			row.Issues = len(report.ForPath(doc.Path))
		}
		rows = append(rows, row)
	}

	l := &Listings{
		ByCategory: byCategory(rows),
		ByRecency:  byRecency(rows),
	}
	for _, row := range l.ByRecency {
		switch row.Status {
		case models.StatusArchived:
			l.ByStatus.Archived = append(l.ByStatus.Archived, row)
		case models.StatusActive:
			l.ByStatus.Active = append(l.ByStatus.Active, row)
		}
	}
	return l
}

// byCategory groups rows by category, categories alphabetical, rows by
// case-insensitive title with path as the tiebreak.
func byCategory(rows []Row) []CategoryGroup {
	grouped := make(map[string][]Row)
	for _, r := range rows {
		grouped[r.Category] = append(grouped[r.Category], r)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]CategoryGroup, 0, len(names))
	for _, name := range names {
		g := CategoryGroup{Category: name, Rows: grouped[name]}
		sort.Slice(g.Rows, func(i, j int) bool {
			a, b := strings.ToLower(g.Rows[i].Title), strings.ToLower(g.Rows[j].Title)
			if a != b {
				return a < b
			}
			return g.Rows[i].Path < g.Rows[j].Path
		})
		out = append(out, g)
	}
	return out
}

// byRecency orders rows newest first. Rows without any date sort after all
// dated rows; path breaks every tie.
func byRecency(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		ti, iok := out[i].lastTouched()
		tj, jok := out[j].lastTouched()
		switch {
		case iok && !jok:
			return true
		case !iok && jok:
			return false
		case iok && jok && !ti.Equal(tj):
			return ti.After(tj)
		}
		return out[i].Path < out[j].Path
	})
	return out
}
