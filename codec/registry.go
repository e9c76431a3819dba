package codec

import (
	"fmt"
	"sort"
)

// Registry indexes codecs by (source, target) type pair and supports
// shortest-path discovery between two types by BFS over the declared edges,
// ties broken by fewest hops then by lexicographically smallest codec id at
// each step (deterministic, testable per spec.md §4.1).
type Registry struct {
	byID  map[string]Codec
	edges map[Type][]Codec // outgoing edges keyed by source type
}

// NewRegistry builds an empty registry. Tests can construct a fresh one
// instead of using the process-wide Default (see DESIGN NOTES: global
// registries).
func NewRegistry() *Registry {
	return &Registry{byID: map[string]Codec{}, edges: map[Type][]Codec{}}
}

// Register adds a codec to the registry. Re-registering the same id replaces
// the previous entry.
func (r *Registry) Register(c Codec) {
	if old, ok := r.byID[c.ID()]; ok {
		edges := r.edges[old.SourceType()]
		for i, e := range edges {
			if e.ID() == old.ID() {
				r.edges[old.SourceType()] = append(edges[:i:i], edges[i+1:]...)
				break
			}
		}
	}
	r.byID[c.ID()] = c
	r.edges[c.SourceType()] = append(r.edges[c.SourceType()], c)
}

// Get looks up a codec by id.
func (r *Registry) Get(id string) (Codec, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// ShortestPath finds the shortest chain of codecs converting from -> to,
// preferring fewer hops and, among equal-length candidates, the
// lexicographically smallest codec id at each step.
func (r *Registry) ShortestPath(from, to Type) ([]Codec, error) {
	if from == to {
		return nil, nil
	}
	type node struct {
		typ  Type
		path []Codec
	}
	visited := map[Type]bool{from: true}
	queue := []node{{typ: from}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		edges := append([]Codec(nil), r.edges[cur.typ]...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].ID() < edges[j].ID() })

		for _, c := range edges {
			next := c.TargetType()
			if visited[next] {
				continue
			}
			path := append(append([]Codec(nil), cur.path...), c)
			if next == to {
				return path, nil
			}
			visited[next] = true
			queue = append(queue, node{typ: next, path: path})
		}
	}
	return nil, fmt.Errorf("codec: no path from %s to %s", from, to)
}

// Default is the process-wide codec registry, pre-populated by this
// package's init with the concrete codecs it ships (utf8, json, msgpack,
// cbor, bson, pon).
var Default = NewRegistry()
