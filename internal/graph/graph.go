// Package graph builds the directed cross-reference graph over a document
// collection and answers reachability queries on it.
package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/starford/dagaz/internal/models"
)

// EdgeKind classifies how a reference resolved.
type EdgeKind int

const (
	EdgeResolved EdgeKind = iota
	EdgeBroken
	EdgeAmbiguous
)

// Edge is one reference from a source document. Identical reference strings
// from the same source collapse into a single edge; Occurrences keeps the
// count so reporting can still show every written instance.
type Edge struct {
	Source      string
	Ref         string // the reference as written
	Target      string // resolved path; empty unless Kind == EdgeResolved
	Kind        EdgeKind
	Occurrences int
	Candidates  []string // resolution candidates, set when ambiguous
}

// Options controls reference resolution.
type Options struct {
	// ResolveIdentifiers enables the third resolution rule: matching a bare
	// reference against document titles and filename slugs.
	ResolveIdentifiers bool
}

// Graph is the immutable link graph for one collection. Every edge's source
// is a collection member; broken references are retained as broken edges
// rather than dropped.
type Graph struct {
	edges    []Edge
	out      map[string][]string // resolved forward adjacency, deduplicated
	inDegree map[string]int      // distinct inbound sources, self-loops excluded
}

// Build resolves every reference in the collection. Resolution needs the
// whole collection (titles, slugs, sibling paths), which is why this runs
// after scanning completes. The collection itself is never mutated.
func Build(coll *models.Collection, opts Options) *Graph {
	g := &Graph{
		out:      make(map[string][]string),
		inDegree: make(map[string]int),
	}

	r := newResolver(coll, opts)

	type edgeKey struct{ source, ref string }
	index := make(map[edgeKey]int)
	seenTarget := make(map[edgeKey]bool)

	for _, doc := range coll.All() {
		for _, ref := range doc.Refs {
			key := edgeKey{doc.Path, ref}
			if i, ok := index[key]; ok {
				g.edges[i].Occurrences++
				continue
			}
			e := r.resolve(doc.Path, ref)
			e.Occurrences = 1
			index[key] = len(g.edges)
			g.edges = append(g.edges, e)

			if e.Kind != EdgeResolved {
				continue
			}
			tk := edgeKey{doc.Path, e.Target}
			if !seenTarget[tk] {
				seenTarget[tk] = true
				g.out[doc.Path] = append(g.out[doc.Path], e.Target)
				if e.Target != doc.Path {
					g.inDegree[e.Target]++
				}
			}
		}
	}

	for _, targets := range g.out {
		sort.Strings(targets)
	}
	return g
}

// Edges returns all edges in deterministic (collection, extraction) order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Broken returns the edges whose reference resolved to nothing.
func (g *Graph) Broken() []Edge {
	return g.filter(EdgeBroken)
}

// Ambiguous returns the edges whose bare identifier matched more than one
// document.
func (g *Graph) Ambiguous() []Edge {
	return g.filter(EdgeAmbiguous)
}

func (g *Graph) filter(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Out returns the resolved targets of path, sorted.
func (g *Graph) Out(path string) []string {
	return g.out[path]
}

// Backlinks returns every source with a resolved edge to target, sorted.
func (g *Graph) Backlinks(target string) []string {
	var out []string
	for source, targets := range g.out {
		for _, t := range targets {
			if t == target {
				out = append(out, source)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// InDegree returns the number of distinct documents linking to path.
func (g *Graph) InDegree(path string) int {
	return g.inDegree[path]
}

// Reachable computes the set of documents reachable from roots over forward
// resolved edges. Iterative BFS with a visited set, so reference cycles
// terminate.
func (g *Graph) Reachable(roots []string) map[string]bool {
	visited := make(map[string]bool)
	queue := make([]string, 0, len(roots))
	for _, r := range roots {
		if !visited[r] {
			visited[r] = true
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.out[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// resolver holds the lookup tables for one Build pass.
type resolver struct {
	coll   *models.Collection
	opts   Options
	titles map[string][]string // lowercase title -> paths
	slugs  map[string][]string // lowercase filename stem -> paths
}

func newResolver(coll *models.Collection, opts Options) *resolver {
	r := &resolver{coll: coll, opts: opts}
	if !opts.ResolveIdentifiers {
		return r
	}
	r.titles = make(map[string][]string)
	r.slugs = make(map[string][]string)
	for _, doc := range coll.All() {
		r.titles[strings.ToLower(doc.Title)] = append(r.titles[strings.ToLower(doc.Title)], doc.Path)
		stem := strings.TrimSuffix(path.Base(doc.Path), path.Ext(doc.Path))
		r.slugs[strings.ToLower(stem)] = append(r.slugs[strings.ToLower(stem)], doc.Path)
	}
	return r
}

// resolve applies the resolution rules in fixed order, first match wins:
// relative to the source's directory, then root-relative, then (if enabled)
// bare identifier against titles and slugs.
func (r *resolver) resolve(source, ref string) Edge {
	e := Edge{Source: source, Ref: ref, Kind: EdgeBroken}

	if target, ok := r.lookupPath(path.Join(path.Dir(source), ref)); ok {
		e.Kind, e.Target = EdgeResolved, target
		return e
	}
	if target, ok := r.lookupPath(strings.TrimPrefix(ref, "/")); ok {
		e.Kind, e.Target = EdgeResolved, target
		return e
	}
	if r.opts.ResolveIdentifiers {
		candidates := r.lookupIdentifier(ref)
		switch len(candidates) {
		case 0:
		case 1:
			e.Kind, e.Target = EdgeResolved, candidates[0]
		default:
			e.Kind, e.Candidates = EdgeAmbiguous, candidates
		}
	}
	return e
}

// lookupPath checks a candidate path against the collection, with and
// without the document extension.
func (r *resolver) lookupPath(p string) (string, bool) {
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	if _, ok := r.coll.Get(p); ok {
		return p, true
	}
	if !strings.HasSuffix(p, ".md") {
		if _, ok := r.coll.Get(p + ".md"); ok {
			return p + ".md", true
		}
	}
	return "", false
}

// lookupIdentifier returns the sorted union of title and slug matches.
func (r *resolver) lookupIdentifier(ref string) []string {
	key := strings.ToLower(strings.TrimSpace(ref))
	set := make(map[string]bool)
	for _, p := range r.titles[key] {
		set[p] = true
	}
	for _, p := range r.slugs[key] {
		set[p] = true
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
