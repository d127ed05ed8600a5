package main

import (
	"fmt"

	"github.com/nvandessel/synaptic/internal/circuit"
	"github.com/nvandessel/synaptic/internal/config"
)

// circuitFromTopology materializes a declared topology into a live circuit.
// Nodes without a threshold use the configured default; nodes get the echo
// processing hook, which the run loop is content with.
func circuitFromTopology(cfg *config.Config, topo *config.Topology) (*circuit.Circuit, error) {
	c := circuit.New()

	for _, tn := range topo.Nodes {
		threshold := cfg.Node.DefaultThreshold
		if tn.Threshold != nil {
			threshold = *tn.Threshold
		}
		node, err := circuit.NewNode(tn.ID, threshold, nil)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", tn.ID, err)
		}
		if err := c.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, te := range topo.Edges {
		_, err := c.Connect(te.Source, te.Target, circuit.EdgeConfig{
			Weight:   te.Weight,
			Type:     circuit.EdgeType(te.Type),
			Speed:    circuit.Speed(te.Speed),
			Protocol: te.Protocol,
		})
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", te.Source, te.Target, err)
		}
	}

	return c, nil
}
