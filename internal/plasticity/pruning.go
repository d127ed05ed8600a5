package plasticity

import (
	"context"

	"github.com/nvandessel/synaptic/internal/circuit"
)

// IdentifyWeakConnections scans every node's outgoing edges and collects
// those whose weight has fallen below the pruning threshold.
func (e *Engine) IdentifyWeakConnections() []*circuit.Edge {
	var weak []*circuit.Edge
	for _, n := range e.circuit.Nodes() {
		for _, edge := range e.circuit.Outgoing(n.ID()) {
			if edge.Weight() < e.cfg.PruningThreshold {
				weak = append(weak, edge)
			}
		}
	}
	return weak
}

// PruneWeakConnections removes every weak edge from the topology and
// returns the number removed.
func (e *Engine) PruneWeakConnections(ctx context.Context) int {
	weak := e.IdentifyWeakConnections()

	removed := 0
	for _, edge := range weak {
		edge.Prune()
		src, tgt := edge.Source().ID(), edge.Target().ID()
		if err := e.circuit.Disconnect(src, tgt); err != nil {
			// Already gone; nothing to count.
			continue
		}
		removed++

		e.decision("prune", map[string]any{
			"edge":   edge.ID(),
			"source": src,
			"target": tgt,
		})
	}

	e.mu.Lock()
	e.prunedCount += removed
	e.mu.Unlock()

	return removed
}

// StrengthenHotPaths raises the weight of every edge whose engine-observed
// usage exceeds the hot threshold and returns the number strengthened.
func (e *Engine) StrengthenHotPaths() int {
	e.mu.Lock()
	hot := make([]string, 0, len(e.conn))
	for edgeID, entry := range e.conn {
		if entry.metrics.UsageCount > hotUsageThreshold {
			hot = append(hot, edgeID)
		}
	}
	rate := e.cfg.StrengthenRate
	e.mu.Unlock()

	strengthened := 0
	for _, edgeID := range hot {
		edge := e.circuit.Connection(edgeID)
		if edge == nil {
			continue
		}
		edge.AdjustWeight(rate)
		strengthened++

		e.decision("strengthen", map[string]any{
			"edge":   edge.ID(),
			"weight": edge.Weight(),
		})
	}
	return strengthened
}

// OptimizeNetwork runs one full optimization pass: prune weak edges, then
// strengthen hot ones. The engine has no internal scheduler; callers decide
// when a pass runs.
func (e *Engine) OptimizeNetwork(ctx context.Context) (pruned, strengthened int) {
	pruned = e.PruneWeakConnections(ctx)
	strengthened = e.StrengthenHotPaths()
	e.logger.Info("optimization pass complete", "pruned", pruned, "strengthened", strengthened)
	return pruned, strengthened
}

// TrainConnection replays n synthetic usage events for an edge and applies
// strengthening immediately. Used to pre-warm a freshly rewired topology
// rather than waiting for organic traffic.
func (e *Engine) TrainConnection(edgeID string, n int) {
	for i := 0; i < n; i++ {
		e.RecordConnectionUsage(edgeID)
	}
	e.StrengthenHotPaths()
}

// TrainPathway replays n synthetic traversals of a path, recording usage on
// every hop, then applies strengthening.
func (e *Engine) TrainPathway(path []string, n int) {
	for i := 0; i+1 < len(path); i++ {
		edge := e.circuit.Connection(pathKey(path[i], path[i+1]))
		if edge == nil {
			continue
		}
		for j := 0; j < n; j++ {
			e.RecordConnectionUsage(edge.ID())
		}
	}
	e.StrengthenHotPaths()
}
