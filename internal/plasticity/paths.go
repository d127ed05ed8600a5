package plasticity

import (
	"context"
	"fmt"
	"sort"

	"github.com/nvandessel/synaptic/internal/circuit"
)

// CreateRedundantPath registers up to n standby routes from source to
// target. Existing paths are discovered by a depth-bounded DFS restricted to
// currently active or firing nodes; if fewer than n are found and no direct
// edge exists, one is synthesized at weight 0.5 to cover part of the
// shortfall. The first discovered path becomes the primary route when none
// is designated yet.
func (e *Engine) CreateRedundantPath(ctx context.Context, source, target string, n int) ([][]string, error) {
	if e.circuit.Node(source) == nil {
		return nil, fmt.Errorf("source node %s not found", source)
	}
	if e.circuit.Node(target) == nil {
		return nil, fmt.Errorf("target node %s not found", target)
	}
	if n <= 0 {
		return nil, fmt.Errorf("path count must be positive, got %d", n)
	}

	paths := e.findPaths(source, target, n)

	if len(paths) < n && e.circuit.Connection(pathKey(source, target)) == nil {
		_, err := e.circuit.Connect(source, target, circuit.EdgeConfig{
			Weight:   syntheticPathWeight,
			Protocol: "redundant",
		})
		if err == nil {
			paths = append(paths, []string{source, target})
			e.decision("synthesize_path", map[string]any{
				"source": source,
				"target": target,
				"weight": syntheticPathWeight,
			})
		}
	}

	key := pathKey(source, target)

	e.mu.Lock()
	e.redundant[key] = paths
	if _, ok := e.primary[key]; !ok && len(paths) > 0 {
		e.primary[key] = append([]string(nil), paths[0]...)
	}
	e.mu.Unlock()

	e.logger.Debug("redundant paths registered", "source", source, "target", target, "count", len(paths))
	return paths, nil
}

// findPaths collects up to n simple paths from source to target using a
// depth-first search over active and firing nodes only. Neighbors are
// visited in target-ID order for deterministic results.
func (e *Engine) findPaths(source, target string, n int) [][]string {
	var paths [][]string

	srcNode := e.circuit.Node(source)
	if srcNode == nil || !nodeLive(srcNode) {
		return paths
	}

	visited := map[string]bool{source: true}
	path := []string{source}

	var walk func(nodeID string, depth int) bool
	walk = func(nodeID string, depth int) bool {
		if len(paths) >= n {
			return true
		}
		if depth > maxSearchDepth {
			return false
		}

		edges := e.circuit.Outgoing(nodeID)
		sort.Slice(edges, func(i, j int) bool {
			return edges[i].Target().ID() < edges[j].Target().ID()
		})

		for _, edge := range edges {
			next := edge.Target()
			nextID := next.ID()
			if visited[nextID] || !nodeLive(next) {
				continue
			}

			path = append(path, nextID)
			if nextID == target {
				paths = append(paths, append([]string(nil), path...))
			} else {
				visited[nextID] = true
				if walk(nextID, depth+1) {
					return true
				}
				delete(visited, nextID)
			}
			path = path[:len(path)-1]

			if len(paths) >= n {
				return true
			}
		}
		return false
	}

	walk(source, 1)
	return paths
}

// SetPrimaryPath designates the preferred route between two nodes. The path
// must start at source and end at target.
func (e *Engine) SetPrimaryPath(source, target string, path []string) error {
	if len(path) < 2 || path[0] != source || path[len(path)-1] != target {
		return fmt.Errorf("path must run from %s to %s", source, target)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.primary[pathKey(source, target)] = append([]string(nil), path...)
	return nil
}

// FindActivePath returns a currently usable route from source to target.
// The designated primary path wins when every node on it is live; otherwise
// the first viable redundant path is returned and counted as a failover.
// When nothing is viable the result is empty, never an error.
func (e *Engine) FindActivePath(source, target string) []string {
	key := pathKey(source, target)

	e.mu.Lock()
	primary := append([]string(nil), e.primary[key]...)
	redundant := make([][]string, len(e.redundant[key]))
	for i, p := range e.redundant[key] {
		redundant[i] = append([]string(nil), p...)
	}
	e.mu.Unlock()

	if len(primary) > 0 && e.pathViable(primary) {
		return primary
	}

	for _, path := range redundant {
		if !e.pathViable(path) {
			continue
		}

		e.mu.Lock()
		e.failoverCount++
		e.mu.Unlock()

		e.decision("failover", map[string]any{
			"source": source,
			"target": target,
			"path":   joinPath(path),
		})
		return path
	}

	return nil
}

// pathViable reports whether every node on the path is live and every hop
// still has an edge in the topology.
func (e *Engine) pathViable(path []string) bool {
	if len(path) == 0 {
		return false
	}
	for _, id := range path {
		n := e.circuit.Node(id)
		if n == nil || !nodeLive(n) {
			return false
		}
	}
	for i := 0; i+1 < len(path); i++ {
		if e.circuit.Connection(pathKey(path[i], path[i+1])) == nil {
			return false
		}
	}
	return true
}

// nodeLive reports whether a node can currently carry signals.
func nodeLive(n *circuit.Node) bool {
	switch n.State() {
	case circuit.StateActive, circuit.StateFiring:
		return true
	}
	return false
}
