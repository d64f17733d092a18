// Package docservice implements the write-side document operations:
// creating documents from templates and archiving them.
package docservice

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/parser"
	"github.com/starford/dagaz/internal/storage"
)

// ArchiveDir is where archived documents land, partitioned by year.
const ArchiveDir = "archive"

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Service coordinates document write operations over storage.
type Service struct {
	store storage.Provider
}

// NewService creates a document service.
func NewService(store storage.Provider) *Service {
	return &Service{store: store}
}

// Slugify turns a title into a filename stem.
func Slugify(title string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// New creates a document at <category>/<slug>.md with draft frontmatter.
// Returns the relative path of the new file, or apperr.ErrAlreadyExists
// when the slug is already taken.
func (s *Service) New(category, title string, now time.Time) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("docservice: new: title is required")
	}
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("docservice: new: title %q yields an empty slug", title)
	}

	rel := slug + ".md"
	if category != "" {
		rel = path.Join(category, rel)
	}
	if _, err := s.store.Read(rel); err == nil {
		return "", fmt.Errorf("docservice: new %q: %w", rel, apperr.ErrAlreadyExists)
	}

	content := fmt.Sprintf(`---
title: %s
status: draft
created: %s
tags: []
---
# %s
`, title, now.Format("2006-01-02"), title)

	if err := s.store.Write(rel, []byte(content)); err != nil {
		return "", fmt.Errorf("docservice: new %q: %w", rel, err)
	}
	return rel, nil
}

// Archive moves a document under archive/<year>/, marking it archived in
// place. The original frontmatter is preserved apart from status, updated,
// and the archival fields. Returns the new relative path.
func (s *Service) Archive(rel, reason string, now time.Time) (string, error) {
	data, err := s.store.Read(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("docservice: archive %q: %w", rel, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("docservice: archive %q: %w", rel, err)
	}

	raw, body, err := parser.RawFrontmatter(data)
	if err != nil {
		return "", fmt.Errorf("docservice: archive %q: %w", rel, err)
	}
	raw["status"] = "archived"
	raw["updated"] = now.Format("2006-01-02")
	raw["archived"] = now.Format("2006-01-02")
	if reason != "" {
		raw["archive_reason"] = reason
	}

	block, err := yaml.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("docservice: archive %q: marshal frontmatter: %w", rel, err)
	}
	content := fmt.Sprintf("---\n%s---\n%s", block, body)

	dest := path.Join(ArchiveDir, now.Format("2006"), path.Base(rel))
	if dest == rel {
		return "", fmt.Errorf("docservice: archive %q: already archived", rel)
	}
	if _, err := s.store.Read(dest); err == nil {
		return "", fmt.Errorf("docservice: archive %q to %q: %w", rel, dest, apperr.ErrAlreadyExists)
	}

	if err := s.store.Write(dest, []byte(content)); err != nil {
		return "", fmt.Errorf("docservice: archive %q: %w", rel, err)
	}
	if err := s.store.Delete(rel); err != nil {
		return "", fmt.Errorf("docservice: archive %q: remove original: %w", rel, err)
	}
	return dest, nil
}
