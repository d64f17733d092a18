// Package query answers read-side questions over a scanned collection.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/graph"
	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/models"
)

// ByTag returns every document carrying the tag, case-insensitively, in
// collection order.
func ByTag(coll *models.Collection, tag string) []*models.Document {
	var out []*models.Document
	for _, doc := range coll.All() {
		if doc.HasTag(tag) {
			out = append(out, doc)
		}
	}
	return out
}

// ByKeyword returns every document whose title or body contains the keyword,
// case-insensitively, in collection order.
func ByKeyword(coll *models.Collection, keyword string) []*models.Document {
	needle := strings.ToLower(keyword)
	if needle == "" {
		return nil
	}
	var out []*models.Document
	for _, doc := range coll.All() {
		if strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Body), needle) {
			out = append(out, doc)
		}
	}
	return out
}

// Summary describes one document's place in the repository.
type Summary struct {
	Document  *models.Document `json:"document"`
	Outbound  []string         `json:"outbound"`
	Backlinks []string         `json:"backlinks"`
	Issues    []health.Issue   `json:"issues"`
}

// Summarize builds a Summary for path. Returns apperr.ErrNotFound when the
// path is not in the collection.
func Summarize(coll *models.Collection, g *graph.Graph, report *health.Report, path string) (*Summary, error) {
	doc, ok := coll.Get(path)
	if !ok {
		return nil, fmt.Errorf("query: summarize %q: %w", path, apperr.ErrNotFound)
	}
	s := &Summary{
		Document:  doc,
		Outbound:  g.Out(path),
		Backlinks: g.Backlinks(path),
	}
	if report != nil {
		s.Issues = report.ForPath(path)
	}
	return s, nil
}

// CategoryCount pairs a category with its document count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Counts tallies documents per category, categories sorted.
func Counts(coll *models.Collection) []CategoryCount {
	tally := make(map[string]int)
	for _, doc := range coll.All() {
		tally[doc.Category]++
	}
	out := make([]CategoryCount, 0, len(tally))
	for cat, n := range tally {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
