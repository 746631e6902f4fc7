package graph

import "fmt"

// stack is a slice-backed LIFO.
type stack[T any] struct {
	items []T
}

func (s *stack[T]) push(v T) { s.items = append(s.items, v) }

func (s *stack[T]) pop() T {
	last := len(s.items) - 1
	v := s.items[last]
	s.items = s.items[:last]
	return v
}

func (s *stack[T]) empty() bool { return len(s.items) == 0 }

// DepthFirstWalk walks the graph from the first inserted vertex.
// An empty graph yields an empty walk.
func (g *AdjacencyGraph[K, V]) DepthFirstWalk() ([]V, error) {
	if len(g.adjacency) == 0 || !g.hasFirst {
		return []V{}, nil
	}
	origin, ok := g.vertices[g.first]
	if !ok {
		return nil, fmt.Errorf("walk origin %v: %w", g.first, ErrVertexNotFound)
	}
	return g.DepthFirstWalkFrom(origin)
}

// DepthFirstWalkFrom returns every vertex reachable from source, each exactly
// once, in visitation order. Neighbours are pushed onto a stack in adjacency
// order, so among siblings the last-inserted neighbour is visited first.
func (g *AdjacencyGraph[K, V]) DepthFirstWalkFrom(source V) ([]V, error) {
	if len(g.adjacency) == 0 {
		return []V{}, nil
	}
	if !g.HasVertex(source) {
		return nil, fmt.Errorf("walk source %v: %w", source.Key(), ErrVertexNotFound)
	}

	visited := make(map[K]struct{}, len(g.adjacency))
	walk := make([]V, 0, len(g.adjacency))

	var s stack[K]
	s.push(source.Key())

	for !s.empty() {
		current := s.pop()
		if _, seen := visited[current]; seen {
			continue
		}

		visited[current] = struct{}{}
		walk = append(walk, g.vertices[current])

		for _, next := range g.adjacency[current] {
			if _, seen := visited[next]; !seen {
				s.push(next)
			}
		}
	}

	return walk, nil
}

// Reachable reports whether target can be reached from source.
func (g *AdjacencyGraph[K, V]) Reachable(source, target V) (bool, error) {
	walk, err := g.DepthFirstWalkFrom(source)
	if err != nil {
		return false, err
	}
	want := target.Key()
	for _, v := range walk {
		if v.Key() == want {
			return true, nil
		}
	}
	return false, nil
}
