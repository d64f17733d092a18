package parser

import (
	"sort"
	"strings"
)

// DefaultCategory is assigned when no inference rule matches.
const DefaultCategory = "uncategorized"

// Rules configures category inference.
type Rules struct {
	// PathMap maps a top-level directory name to a category.
	PathMap map[string]string
	// Fallback overrides DefaultCategory when non-empty.
	Fallback string
}

// DefaultRules maps the conventional docs layout onto itself.
func DefaultRules() Rules {
	return Rules{
		PathMap: map[string]string{
			"active":   "active",
			"design":   "design",
			"research": "research",
			"archive":  "archive",
		},
	}
}

// InferCategory resolves a document's category. The rule chain is evaluated
// in fixed order and the first match wins:
//
//  1. the explicit category field, if non-empty
//  2. the path-segment mapping table applied to the top-level directory
//  3. the most common tag (ties broken lexicographically)
//  4. the fallback category
//
// Pure and deterministic: same inputs, same category.
func InferCategory(explicit, relPath string, tags []string, rules Rules) string {
	chain := []func() (string, bool){
		func() (string, bool) {
			c := strings.TrimSpace(explicit)
			return c, c != ""
		},
		func() (string, bool) {
			seg, _, found := strings.Cut(relPath, "/")
			if !found {
				return "", false // file at the root has no directory segment
			}
			c, ok := rules.PathMap[seg]
			return c, ok
		},
		func() (string, bool) {
			return commonTag(tags)
		},
	}

	for _, rule := range chain {
		if c, ok := rule(); ok {
			return c
		}
	}
	if rules.Fallback != "" {
		return rules.Fallback
	}
	return DefaultCategory
}

// commonTag returns the most frequent tag, lexicographically smallest on a
// tie, compared case-insensitively.
func commonTag(tags []string) (string, bool) {
	if len(tags) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(tags))
	for _, t := range tags {
		counts[strings.ToLower(t)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}
