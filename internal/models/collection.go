package models

import "sort"

// Collection is the flat, path-keyed set of successfully parsed documents.
// Iteration order is lexicographic by path, so two scans of an unchanged
// tree enumerate identically.
type Collection struct {
	byPath map[string]*Document
	order  []string
}

// NewCollection builds a Collection from parsed documents. Input order is
// irrelevant; documents are re-sorted by path.
func NewCollection(docs []*Document) *Collection {
	c := &Collection{byPath: make(map[string]*Document, len(docs))}
	for _, d := range docs {
		if _, dup := c.byPath[d.Path]; dup {
			continue // path is the identity; first wins
		}
		c.byPath[d.Path] = d
		c.order = append(c.order, d.Path)
	}
	sort.Strings(c.order)
	return c
}

// Get returns the document at path.
func (c *Collection) Get(path string) (*Document, bool) {
	d, ok := c.byPath[path]
	return d, ok
}

// All returns every document in path order.
func (c *Collection) All() []*Document {
	out := make([]*Document, len(c.order))
	for i, p := range c.order {
		out[i] = c.byPath[p]
	}
	return out
}

// Paths returns the sorted document paths.
func (c *Collection) Paths() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	return len(c.order)
}
