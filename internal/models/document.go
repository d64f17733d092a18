// Package models defines the domain types for Dagaz.
package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state declared in a document's frontmatter.
type Status string

// The fixed set of document statuses. Anything else is a parse failure.
const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusStale    Status = "stale"
	StatusArchived Status = "archived"
)

// ParseStatus maps a raw frontmatter value onto the Status enum.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusDraft, StatusActive, StatusStale, StatusArchived:
		return Status(s), true
	}
	return "", false
}

// Document represents one parsed Markdown file in the docs tree.
//
// Path is the canonical identity: relative to the docs root, forward
// slashes, unique within a Collection. Created/Updated are calendar dates;
// nil means the field was absent. Cadence zero means no per-document review
// cadence was declared.
type Document struct {
	Path     string        `json:"path"`
	Title    string        `json:"title"`
	Tags     []string      `json:"tags,omitempty"`
	Category string        `json:"category"`
	Status   Status        `json:"status"`
	Created  *time.Time    `json:"created,omitempty"`
	Updated  *time.Time    `json:"updated,omitempty"`
	Cadence  time.Duration `json:"cadence,omitempty"`
	Body     string        `json:"body"`

	// Refs holds the raw reference strings extracted from the body and the
	// "related" frontmatter field, in extraction order, duplicates retained.
	Refs []string `json:"refs,omitempty"`
}

// LastTouched returns the updated date, falling back to created.
// Nil when the document carries no date at all.
func (d *Document) LastTouched() *time.Time {
	if d.Updated != nil {
		return d.Updated
	}
	return d.Created
}

// HasTag reports whether the document carries the tag (case-insensitive).
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
