// Package visualization renders circuits in DOT and JSON output formats.
package visualization

import (
	"fmt"
	"strings"

	"github.com/nvandessel/synaptic/internal/circuit"
)

// Format specifies the output format for circuit rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// stateColors maps node lifecycle states to DOT fill colors.
var stateColors = map[circuit.State]string{
	circuit.StateActive:   "mediumseagreen",
	circuit.StateFiring:   "goldenrod",
	circuit.StateInactive: "lightgray",
	circuit.StateFailed:   "tomato",
}

// RenderDOT produces a Graphviz DOT representation of the circuit. Nodes
// are colored by lifecycle state; edge thickness follows weight and
// inhibitory edges are dashed.
func RenderDOT(c *circuit.Circuit) string {
	var b strings.Builder
	b.WriteString("digraph synaptic {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	for _, n := range c.Nodes() {
		state := n.State()
		color := stateColors[state]
		if color == "" {
			color = "lightgray"
		}
		b.WriteString(fmt.Sprintf("  %q [fillcolor=%q, tooltip=\"state=%s threshold=%.2f\"];\n",
			n.ID(), color, state, n.Threshold()))
	}
	b.WriteString("\n")

	for _, e := range c.Connections() {
		style := "solid"
		if e.Type() == circuit.EdgeInhibitory {
			style = "dashed"
		}
		// Pen width 1-4 scaled by weight.
		penwidth := 1.0 + 3.0*e.Weight()
		b.WriteString(fmt.Sprintf("  %q -> %q [label=\"%.2f\", style=%q, penwidth=%.1f];\n",
			e.Source().ID(), e.Target().ID(), e.Weight(), style, penwidth))
	}

	b.WriteString("}\n")
	return b.String()
}

// GraphJSON is the JSON rendering of a circuit.
type GraphJSON struct {
	Nodes []NodeJSON `json:"nodes"`
	Edges []EdgeJSON `json:"edges"`
}

// NodeJSON is one node in the JSON rendering.
type NodeJSON struct {
	ID        string  `json:"id"`
	State     string  `json:"state"`
	Threshold float64 `json:"threshold"`
	Errors    int     `json:"errors"`
}

// EdgeJSON is one edge in the JSON rendering.
type EdgeJSON struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Weight   float64 `json:"weight"`
	Type     string  `json:"type"`
	Speed    string  `json:"speed"`
	Protocol string  `json:"protocol,omitempty"`
	Usage    int     `json:"usage"`
}

// RenderJSON produces a structured representation of the circuit suitable
// for machine consumption.
func RenderJSON(c *circuit.Circuit) GraphJSON {
	out := GraphJSON{
		Nodes: make([]NodeJSON, 0, c.NodeCount()),
		Edges: make([]EdgeJSON, 0, c.ConnectionCount()),
	}

	for _, n := range c.Nodes() {
		out.Nodes = append(out.Nodes, NodeJSON{
			ID:        n.ID(),
			State:     string(n.State()),
			Threshold: n.Threshold(),
			Errors:    n.ErrorCount(),
		})
	}

	for _, e := range c.Connections() {
		out.Edges = append(out.Edges, EdgeJSON{
			ID:       e.ID(),
			Source:   e.Source().ID(),
			Target:   e.Target().ID(),
			Weight:   e.Weight(),
			Type:     string(e.Type()),
			Speed:    string(e.Speed()),
			Protocol: e.Protocol(),
			Usage:    e.UsageCount(),
		})
	}
	return out
}
