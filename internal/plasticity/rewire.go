package plasticity

import (
	"context"
	"fmt"
	"sort"

	"github.com/nvandessel/synaptic/internal/circuit"
)

// DetectFailedNeurons returns the IDs of every node that cannot currently
// carry signals (failed and inactive alike), sorted for determinism.
func (e *Engine) DetectFailedNeurons() []string {
	var down []string
	for _, n := range e.circuit.Nodes() {
		if !nodeLive(n) {
			down = append(down, n.ID())
		}
	}
	sort.Strings(down)
	return down
}

// RewireAroundFailure creates bypass edges around a failed node: for every
// (incoming.source, outgoing.target) pair that lacks a direct edge, a new
// one is created with weight = in.weight * out.weight * 0.7; the decay
// models information loss through the bypass. Pairs that already have a
// direct edge are skipped, making the operation idempotent. Returns the
// number of bypasses created. Cost is O(in-degree * out-degree).
func (e *Engine) RewireAroundFailure(ctx context.Context, failedID string) (int, error) {
	if e.circuit.Node(failedID) == nil {
		return 0, fmt.Errorf("node %s not found", failedID)
	}

	incoming := e.circuit.Incoming(failedID)
	outgoing := e.circuit.Outgoing(failedID)

	created := 0
	for _, in := range incoming {
		for _, out := range outgoing {
			src := in.Source().ID()
			tgt := out.Target().ID()
			if src == tgt {
				continue
			}
			if e.circuit.Connection(pathKey(src, tgt)) != nil {
				continue
			}

			weight := in.Weight() * out.Weight() * bypassDecay
			bypass, err := e.circuit.Connect(src, tgt, circuit.EdgeConfig{
				Weight:   weight,
				Type:     in.Type(),
				Speed:    in.Speed(),
				Protocol: "bypass",
			})
			if err != nil {
				return created, fmt.Errorf("create bypass %s->%s: %w", src, tgt, err)
			}
			created++

			e.decision("rewire", map[string]any{
				"edge":   bypass.ID(),
				"node":   failedID,
				"source": src,
				"target": tgt,
				"weight": weight,
			})
		}
	}

	e.mu.Lock()
	e.rewireCount += created
	e.mu.Unlock()

	if created > 0 {
		e.logger.Info("rewired around failure", "node", failedID, "bypasses", created)
	}
	return created, nil
}
