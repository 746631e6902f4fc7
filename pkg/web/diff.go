package web

import (
	"cmp"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"slices"
)

// GraphDiff represents the difference between two hierarchy generations
type GraphDiff struct {
	Generation    int         `json:"generation"`
	Hash          string      `json:"hash"`
	AddedNodes    []GraphNode `json:"addedNodes"`
	RemovedNodes  []string    `json:"removedNodes"`  // Employee IDs
	ModifiedNodes []GraphNode `json:"modifiedNodes"` // Salary or claimed manager changed
	AddedEdges    []GraphEdge `json:"addedEdges"`
	RemovedEdges  []GraphEdge `json:"removedEdges"`
	FullGraph     bool        `json:"fullGraph"` // True for the first generation
}

// GraphSnapshot represents a cached hierarchy for diffing
type GraphSnapshot struct {
	Hash  string
	Nodes map[string]GraphNode // employee ID -> node
	Edges map[GraphEdge]struct{}
}

// CreateSnapshot creates a snapshot from graph data for diffing
func CreateSnapshot(graph *GraphData) *GraphSnapshot {
	snapshot := &GraphSnapshot{
		Nodes: make(map[string]GraphNode, len(graph.Nodes)),
		Edges: make(map[GraphEdge]struct{}, len(graph.Edges)),
	}

	for _, node := range graph.Nodes {
		snapshot.Nodes[node.ID] = node
	}
	for _, edge := range graph.Edges {
		snapshot.Edges[edge] = struct{}{}
	}

	jsonData, _ := json.Marshal(graph)
	snapshot.Hash = fmt.Sprintf("%x", sha256.Sum256(jsonData))
	return snapshot
}

// ComputeDiff computes the difference between a snapshot and the new graph.
// Every list is sorted so equal inputs give equal diffs.
func ComputeDiff(oldSnapshot, newSnapshot *GraphSnapshot) *GraphDiff {
	diff := &GraphDiff{
		Hash:          newSnapshot.Hash,
		AddedNodes:    make([]GraphNode, 0),
		RemovedNodes:  make([]string, 0),
		ModifiedNodes: make([]GraphNode, 0),
		AddedEdges:    make([]GraphEdge, 0),
		RemovedEdges:  make([]GraphEdge, 0),
	}

	if oldSnapshot == nil {
		diff.FullGraph = true
		oldSnapshot = &GraphSnapshot{}
	} else if oldSnapshot.Hash == newSnapshot.Hash {
		return diff
	}

	for id, node := range newSnapshot.Nodes {
		old, exists := oldSnapshot.Nodes[id]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, node)
		case old != node:
			diff.ModifiedNodes = append(diff.ModifiedNodes, node)
		}
	}
	for id := range oldSnapshot.Nodes {
		if _, exists := newSnapshot.Nodes[id]; !exists {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}

	for edge := range newSnapshot.Edges {
		if _, exists := oldSnapshot.Edges[edge]; !exists {
			diff.AddedEdges = append(diff.AddedEdges, edge)
		}
	}
	for edge := range oldSnapshot.Edges {
		if _, exists := newSnapshot.Edges[edge]; !exists {
			diff.RemovedEdges = append(diff.RemovedEdges, edge)
		}
	}

	byID := func(a, b GraphNode) int { return cmp.Compare(a.ID, b.ID) }
	byEnds := func(a, b GraphEdge) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Target, b.Target))
	}
	slices.SortFunc(diff.AddedNodes, byID)
	slices.SortFunc(diff.ModifiedNodes, byID)
	slices.Sort(diff.RemovedNodes)
	slices.SortFunc(diff.AddedEdges, byEnds)
	slices.SortFunc(diff.RemovedEdges, byEnds)
	return diff
}

// Empty reports whether nothing changed.
func (d *GraphDiff) Empty() bool {
	return len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 &&
		len(d.ModifiedNodes) == 0 && len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}
