package api

import (
	"time"

	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/query"
)

// DocListItem is a lightweight item in a list response.
type DocListItem struct {
	Path     string        `json:"path"`
	Title    string        `json:"title"`
	Category string        `json:"category"`
	Status   models.Status `json:"status"`
	Tags     []string      `json:"tags"`
	Updated  *time.Time    `json:"updated,omitempty"`
}

// DocListResponse wraps a document listing.
type DocListResponse struct {
	Docs  []DocListItem `json:"docs"`
	Total int           `json:"total"`
}

// DocDetail is the full representation of one document.
type DocDetail struct {
	Path      string         `json:"path"`
	Title     string         `json:"title"`
	Category  string         `json:"category"`
	Status    models.Status  `json:"status"`
	Tags      []string       `json:"tags"`
	Created   *time.Time     `json:"created,omitempty"`
	Updated   *time.Time     `json:"updated,omitempty"`
	Body      string         `json:"body"`
	Outbound  []string       `json:"outbound"`
	Backlinks []string       `json:"backlinks"`
	Issues    []health.Issue `json:"issues"`
}

// CreateDocRequest is the request body for creating a document.
type CreateDocRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
}

// ArchiveDocRequest is the request body for archiving a document.
type ArchiveDocRequest struct {
	Path   string `json:"path"`
	Reason string `json:"reason,omitempty"`
}

// GraphNode is a node in the reference graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GraphLink is an edge in the reference graph.
type GraphLink struct {
	Source      string `json:"source"`
	Target      string `json:"target,omitempty"`
	Ref         string `json:"ref"`
	Kind        string `json:"kind"`
	Occurrences int    `json:"occurrences"`
}

// GraphResponse wraps the reference graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []DocListItem `json:"results"`
}

// StatusResponse is the repository overview.
type StatusResponse struct {
	Docs       int                   `json:"docs"`
	Failures   int                   `json:"failures"`
	Errors     int                   `json:"errors"`
	Warnings   int                   `json:"warnings"`
	Infos      int                   `json:"infos"`
	Categories []query.CategoryCount `json:"categories"`
	BuiltAt    time.Time             `json:"built_at"`
}

func listItem(doc *models.Document) DocListItem {
	return DocListItem{
		Path:     doc.Path,
		Title:    doc.Title,
		Category: doc.Category,
		Status:   doc.Status,
		Tags:     nonNilSlice(doc.Tags),
		Updated:  doc.Updated,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
