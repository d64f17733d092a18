package models

import (
	"sort"
	"strings"
)

// Tree mirrors the directory structure of the docs root, restricted to
// directories that (transitively) contain at least one document. Built once
// per scan and not mutated afterwards.
type Tree struct {
	Name string  `json:"name"`           // directory name; "" for the root
	Path string  `json:"path,omitempty"` // relative path; "" for the root
	Dirs []*Tree `json:"dirs,omitempty"`
	Docs []*Leaf `json:"docs,omitempty"`
}

// Leaf is a document entry in the tree. Failed marks files whose
// frontmatter did not parse; they are excluded from the Collection but stay
// visible here.
type Leaf struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Failed bool   `json:"failed,omitempty"`
}

// NewTree builds a tree from document paths and parse-failed paths. Child
// directories and leaves end up ordered by path regardless of input order.
func NewTree(paths []string, failed []string) *Tree {
	root := &Tree{}
	for _, p := range paths {
		root.insert(p, false)
	}
	for _, p := range failed {
		root.insert(p, true)
	}
	root.sortRecursive()
	return root
}

func (t *Tree) insert(path string, failed bool) {
	parts := strings.Split(path, "/")
	node := t
	for i, part := range parts[:len(parts)-1] {
		child := node.dir(part)
		if child == nil {
			child = &Tree{Name: part, Path: strings.Join(parts[:i+1], "/")}
			node.Dirs = append(node.Dirs, child)
		}
		node = child
	}
	node.Docs = append(node.Docs, &Leaf{
		Path:   path,
		Name:   parts[len(parts)-1],
		Failed: failed,
	})
}

func (t *Tree) dir(name string) *Tree {
	for _, d := range t.Dirs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (t *Tree) sortRecursive() {
	sort.Slice(t.Dirs, func(i, j int) bool { return t.Dirs[i].Path < t.Dirs[j].Path })
	sort.Slice(t.Docs, func(i, j int) bool { return t.Docs[i].Path < t.Docs[j].Path })
	for _, d := range t.Dirs {
		d.sortRecursive()
	}
}

// Walk visits every leaf in depth-first, path order.
func (t *Tree) Walk(fn func(*Leaf)) {
	for _, doc := range t.Docs {
		fn(doc)
	}
	for _, d := range t.Dirs {
		d.Walk(fn)
	}
}
