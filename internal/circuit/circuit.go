package circuit

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Circuit owns a set of nodes and the outgoing adjacency between them.
// Edges are indexed both by ID and by "source->target" key. Topology
// lookups for missing nodes or edges return nil rather than failing;
// callers must nil-check.
type Circuit struct {
	mu        sync.RWMutex
	nodes     map[string]*Node
	adjacency map[string][]*Edge
	edgeByID  map[string]*Edge
	edgeByKey map[string]*Edge
}

// New creates an empty circuit.
func New() *Circuit {
	return &Circuit{
		nodes:     make(map[string]*Node),
		adjacency: make(map[string][]*Edge),
		edgeByID:  make(map[string]*Edge),
		edgeByKey: make(map[string]*Edge),
	}
}

// AddNode registers a node. Adding a duplicate ID is an error.
func (c *Circuit) AddNode(n *Node) error {
	if n == nil {
		return fmt.Errorf("node is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.nodes[n.ID()]; exists {
		return fmt.Errorf("node %s already exists", n.ID())
	}
	c.nodes[n.ID()] = n
	return nil
}

// Node returns the node with the given ID, or nil.
func (c *Circuit) Node(id string) *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes[id]
}

// Nodes returns every node in the circuit, ordered by ID for deterministic
// iteration.
func (c *Circuit) Nodes() []*Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// NodeCount returns the number of nodes.
func (c *Circuit) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// Connect creates an edge from sourceID to targetID. Both nodes must exist
// and at most one edge may exist per ordered pair.
func (c *Circuit) Connect(sourceID, targetID string, cfg EdgeConfig) (*Edge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	source, ok := c.nodes[sourceID]
	if !ok {
		return nil, fmt.Errorf("source node %s not found", sourceID)
	}
	target, ok := c.nodes[targetID]
	if !ok {
		return nil, fmt.Errorf("target node %s not found", targetID)
	}

	key := sourceID + "->" + targetID
	if _, exists := c.edgeByKey[key]; exists {
		return nil, fmt.Errorf("connection %s already exists", key)
	}

	edge, err := NewEdge(source, target, cfg)
	if err != nil {
		return nil, err
	}

	c.adjacency[sourceID] = append(c.adjacency[sourceID], edge)
	c.edgeByID[edge.ID()] = edge
	c.edgeByKey[key] = edge
	return edge, nil
}

// Disconnect removes the edge from sourceID to targetID from the topology.
// Removing a nonexistent edge is an error.
func (c *Circuit) Disconnect(sourceID, targetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := sourceID + "->" + targetID
	edge, ok := c.edgeByKey[key]
	if !ok {
		return fmt.Errorf("connection %s not found", key)
	}

	delete(c.edgeByKey, key)
	delete(c.edgeByID, edge.ID())

	outgoing := c.adjacency[sourceID]
	filtered := outgoing[:0]
	for _, e := range outgoing {
		if e != edge {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		delete(c.adjacency, sourceID)
	} else {
		c.adjacency[sourceID] = filtered
	}
	return nil
}

// Outgoing returns the edges leaving the given node. The returned slice is
// a copy; mutating it does not affect the topology.
func (c *Circuit) Outgoing(nodeID string) []*Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()

	edges := c.adjacency[nodeID]
	out := make([]*Edge, len(edges))
	copy(out, edges)
	return out
}

// Incoming returns the edges entering the given node. The adjacency is kept
// outgoing-only, so this scans all edges.
func (c *Circuit) Incoming(nodeID string) []*Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var in []*Edge
	for _, edges := range c.adjacency {
		for _, e := range edges {
			if e.Target().ID() == nodeID {
				in = append(in, e)
			}
		}
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Source().ID() < in[j].Source().ID() })
	return in
}

// Connection looks up an edge by ID or by "source->target" key, returning
// nil when absent.
func (c *Circuit) Connection(idOrKey string) *Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.edgeByID[idOrKey]; ok {
		return e
	}
	return c.edgeByKey[idOrKey]
}

// Connections returns every edge in the circuit, ordered by key.
func (c *Circuit) Connections() []*Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Edge, 0, len(c.edgeByID))
	for _, e := range c.edgeByID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// ConnectionCount returns the number of live edges.
func (c *Circuit) ConnectionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.edgeByID)
}

// Activate brings every inactive node up. Nodes already active or firing are
// left alone.
func (c *Circuit) Activate() error {
	for _, n := range c.Nodes() {
		switch n.State() {
		case StateActive, StateFiring:
			continue
		}
		if err := n.Activate(); err != nil {
			return fmt.Errorf("activate node %s: %w", n.ID(), err)
		}
	}
	return nil
}

// Shutdown deactivates every node, clearing their queues.
func (c *Circuit) Shutdown() {
	for _, n := range c.Nodes() {
		n.Deactivate()
	}
}

// Broadcast delivers a signal through every outgoing edge of the source
// node, one goroutine per edge so that a slow edge never blocks its
// siblings. It returns after all deliveries complete or the context is
// cancelled.
func (c *Circuit) Broadcast(ctx context.Context, sourceID string, sig Signal) {
	edges := c.Outgoing(sourceID)
	if len(edges) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, e := range edges {
		wg.Add(1)
		go func(e *Edge) {
			defer wg.Done()
			// Delivery failures surface as target node state, not errors.
			_ = e.Transmit(ctx, sig)
		}(e)
	}
	wg.Wait()
}
