// Package graph implements a generic directed, unweighted adjacency-list
// graph with an iterative depth-first walk.
//
// Vertices are any type implementing Keyed; the key decides identity. Each
// vertex owns an insertion-ordered adjacency set without duplicates, and the
// graph remembers the first vertex ever inserted as the default walk origin.
//
// Errors:
//
//	ErrVertexNotFound  - query on a vertex absent from the graph.
//	ErrInvalidArgument - nil collection or negative capacity.
//
// The graph does no locking. Share it between goroutines only behind an
// external sync.RWMutex.
package graph
