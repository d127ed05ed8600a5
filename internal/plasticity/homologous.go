package plasticity

import (
	"context"
	"fmt"

	"github.com/nvandessel/synaptic/internal/circuit"
)

// MarkHomologous registers two nodes as mutual failover backups. The
// registration is symmetric and overwrites any previous pairing of either
// node.
func (e *Engine) MarkHomologous(a, b string) error {
	if a == b {
		return fmt.Errorf("a node cannot back itself up")
	}
	if e.circuit.Node(a) == nil {
		return fmt.Errorf("node %s not found", a)
	}
	if e.circuit.Node(b) == nil {
		return fmt.Errorf("node %s not found", b)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.homologous[a] = b
	e.homologous[b] = a
	return nil
}

// Homologous returns the registered partner for a node, if any.
func (e *Engine) Homologous(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	partner, ok := e.homologous[id]
	return partner, ok
}

// CompensateWithHomologous redirects every edge that fed the failed node to
// its homologous partner at 0.8x the original weight. The original edges
// are disconnected; sources already connected to the partner are only
// disconnected from the failed node. Returns the number of redirected
// edges.
func (e *Engine) CompensateWithHomologous(ctx context.Context, failedID string) (int, error) {
	partner, ok := e.Homologous(failedID)
	if !ok {
		return 0, fmt.Errorf("node %s has no homologous partner", failedID)
	}
	if e.circuit.Node(failedID) == nil {
		return 0, fmt.Errorf("node %s not found", failedID)
	}

	redirected := 0
	for _, in := range e.circuit.Incoming(failedID) {
		src := in.Source().ID()
		if src == partner {
			continue
		}

		weight := in.Weight() * compensationFactor
		etype := in.Type()
		speed := in.Speed()

		if err := e.circuit.Disconnect(src, failedID); err != nil {
			continue
		}

		if e.circuit.Connection(pathKey(src, partner)) != nil {
			continue
		}
		edge, err := e.circuit.Connect(src, partner, circuit.EdgeConfig{
			Weight:   weight,
			Type:     etype,
			Speed:    speed,
			Protocol: "compensation",
		})
		if err != nil {
			return redirected, fmt.Errorf("redirect %s to %s: %w", src, partner, err)
		}
		redirected++

		e.decision("compensate", map[string]any{
			"edge":    edge.ID(),
			"node":    failedID,
			"partner": partner,
			"source":  src,
			"weight":  weight,
		})
	}

	if redirected > 0 {
		e.logger.Info("homologous compensation applied",
			"failed", failedID, "partner", partner, "redirected", redirected)
	}
	return redirected, nil
}

// DetectInterference flags the over-compensation conflict where the
// homologous partner is carrying signals while the original node is still
// down. No automatic fix is applied; resolution is the caller's job.
func (e *Engine) DetectInterference(id string) bool {
	partner, ok := e.Homologous(id)
	if !ok {
		return false
	}

	original := e.circuit.Node(id)
	backup := e.circuit.Node(partner)
	if original == nil || backup == nil {
		return false
	}

	return !nodeLive(original) && nodeLive(backup)
}
