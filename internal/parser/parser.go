// Package parser extracts and validates frontmatter and cross-document
// references from Markdown content.
package parser

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/dagaz/internal/models"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	mdLinkRe   = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)
)

// Result holds the output of parsing one Markdown file.
type Result struct {
	Meta Meta
	Body string

	// Refs are the raw reference strings extracted from the body and the
	// "related" frontmatter field, in order of appearance. Duplicates are
	// retained; the graph builder dedupes edges but keeps the counts.
	Refs []string
}

// Parse splits and validates the frontmatter block and extracts references.
// On failure it returns a *Error whose kind distinguishes a missing block
// from a malformed one and from field-level violations.
func Parse(data []byte) (*Result, error) {
	block, body, perr := split(data)
	if perr != nil {
		return nil, perr
	}

	var raw map[string]any
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return nil, errMalformed("invalid YAML: " + firstLine(err.Error()))
	}

	meta := buildMeta(raw)
	if verr := meta.Validate(); verr != nil {
		return nil, verr
	}

	refs := extractRefs(body)
	if meta.Related.Present() {
		refs = append(refs, meta.Related.Value...)
	}

	return &Result{Meta: meta, Body: body, Refs: refs}, nil
}

// RawFrontmatter returns the unvalidated frontmatter mapping and the body.
// Write paths use it to rewrite individual fields without dropping keys the
// typed Meta does not model.
func RawFrontmatter(data []byte) (map[string]any, string, error) {
	block, body, perr := split(data)
	if perr != nil {
		return nil, "", perr
	}
	var raw map[string]any
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return nil, "", errMalformed("invalid YAML: " + firstLine(err.Error()))
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, body, nil
}

// Document materializes the parse result as a Document at the given
// relative path, running category inference.
func (r *Result) Document(path string, rules Rules) *models.Document {
	doc := &models.Document{
		Path:   path,
		Title:  strings.TrimSpace(r.Meta.Title.Value),
		Status: models.StatusDraft,
		Body:   r.Body,
		Refs:   r.Refs,
	}
	if r.Meta.Tags.Present() {
		doc.Tags = r.Meta.Tags.Value
	}
	if r.Meta.Status.Present() {
		doc.Status = r.Meta.Status.Value
	}
	if r.Meta.Created.Present() {
		t := r.Meta.Created.Value
		doc.Created = &t
	}
	if r.Meta.Updated.Present() {
		t := r.Meta.Updated.Value
		doc.Updated = &t
	}
	if r.Meta.Cadence.Present() {
		doc.Cadence = r.Meta.Cadence.Value
	}

	explicit := ""
	if r.Meta.Category.Present() {
		explicit = r.Meta.Category.Value
	}
	doc.Category = InferCategory(explicit, path, doc.Tags, rules)
	return doc
}

// split separates the frontmatter block from the body. The block must open
// with "---" on the very first line and close with "---" on its own line.
func split(data []byte) (block []byte, body string, perr *Error) {
	const delim = "---"

	if !bytes.HasPrefix(data, []byte(delim+"\n")) && !bytes.HasPrefix(data, []byte(delim+"\r\n")) {
		return nil, "", errMissingFrontmatter()
	}

	rest := data[len(delim):]
	// Skip the newline after the opening delimiter.
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	idx := closingDelimiter(rest)
	if idx < 0 {
		return nil, "", errMalformed("missing closing --- delimiter")
	}

	block = rest[:idx]
	after := rest[idx+len(delim):]
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = nil
	}
	return block, string(after), nil
}

// closingDelimiter finds a "---" that starts a line and ends one.
func closingDelimiter(s []byte) int {
	search := 0
	for search < len(s) {
		idx := bytes.Index(s[search:], []byte("---"))
		if idx < 0 {
			return -1
		}
		abs := search + idx
		atLineStart := abs == 0 || s[abs-1] == '\n'
		end := abs + 3
		atLineEnd := end >= len(s) || s[end] == '\n' || s[end] == '\r'
		if atLineStart && atLineEnd {
			return abs
		}
		search = abs + 3
	}
	return -1
}

// extractRefs collects cross-document references from the body in order of
// appearance: [[wikilinks]] (aliases stripped) and inline Markdown links to
// local targets. External URLs, pure anchors, and images are not references.
func extractRefs(body string) []string {
	type hit struct {
		pos int
		ref string
	}
	var hits []hit

	for _, m := range wikilinkRe.FindAllStringSubmatchIndex(body, -1) {
		raw := body[m[2]:m[3]]
		if i := strings.Index(raw, "|"); i >= 0 {
			raw = raw[:i]
		}
		if raw = strings.TrimSpace(raw); raw != "" {
			hits = append(hits, hit{pos: m[0], ref: raw})
		}
	}

	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(body, -1) {
		if m[0] > 0 && body[m[0]-1] == '!' {
			continue // image
		}
		target := body[m[2]:m[3]]
		if i := strings.Index(target, "#"); i >= 0 {
			target = target[:i]
		}
		if target == "" || strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") {
			continue
		}
		hits = append(hits, hit{pos: m[0], ref: target})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ref
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
