package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Topology declares a circuit in YAML: the nodes, the weighted edges
// between them, and optional input feeds the run command replays.
type Topology struct {
	Nodes  []TopologyNode  `json:"nodes" yaml:"nodes"`
	Edges  []TopologyEdge  `json:"edges" yaml:"edges"`
	Inputs []TopologyInput `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// TopologyNode declares one node. Threshold may be omitted; the node
// default from the main config applies.
type TopologyNode struct {
	ID        string   `json:"id" yaml:"id"`
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// TopologyEdge declares one connection.
type TopologyEdge struct {
	Source   string  `json:"source" yaml:"source"`
	Target   string  `json:"target" yaml:"target"`
	Weight   float64 `json:"weight" yaml:"weight"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"`
	Speed    string  `json:"speed,omitempty" yaml:"speed,omitempty"`
	Protocol string  `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// TopologyInput declares a signal feed replayed by the run command.
type TopologyInput struct {
	Node     string  `json:"node" yaml:"node"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"`
	Strength float64 `json:"strength" yaml:"strength"`
	Count    int     `json:"count,omitempty" yaml:"count,omitempty"`
}

// LoadTopology reads and validates a topology file.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}

	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parsing topology file: %w", err)
	}

	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &topo, nil
}

// Validate checks referential integrity: unique node IDs and edge/input
// references to declared nodes.
func (t *Topology) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("topology declares no nodes")
	}

	ids := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.ID == "" {
			return fmt.Errorf("topology node missing id")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}

	for _, e := range t.Edges {
		if !ids[e.Source] {
			return fmt.Errorf("edge references unknown source %q", e.Source)
		}
		if !ids[e.Target] {
			return fmt.Errorf("edge references unknown target %q", e.Target)
		}
	}

	for _, in := range t.Inputs {
		if !ids[in.Node] {
			return fmt.Errorf("input references unknown node %q", in.Node)
		}
	}
	return nil
}
