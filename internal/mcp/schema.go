// Package mcp provides a read-only MCP (Model Context Protocol) monitoring
// server for a live circuit. Tools expose health scoring, engine statistics,
// and graph rendering; nothing mutates the topology.
package mcp

// CircuitHealthInput defines the input for the circuit_health tool.
type CircuitHealthInput struct{}

// CircuitHealthOutput defines the output for the circuit_health tool.
type CircuitHealthOutput struct {
	Score          float64 `json:"score" jsonschema:"Composite network health score (0.0-1.0)"`
	ActiveNodes    int     `json:"active_nodes" jsonschema:"Nodes currently able to carry signals"`
	TotalNodes     int     `json:"total_nodes" jsonschema:"Total nodes in the circuit"`
	MeanEdgeWeight float64 `json:"mean_edge_weight" jsonschema:"Average edge weight"`
	RedundantPaths int     `json:"redundant_paths" jsonschema:"Registered standby routes"`
}

// NetworkStatsInput defines the input for the network_stats tool.
type NetworkStatsInput struct{}

// NetworkStatsOutput defines the output for the network_stats tool.
type NetworkStatsOutput struct {
	TotalConnections  int `json:"total_connections" jsonschema:"Live edges in the circuit"`
	ActivePathways    int `json:"active_pathways" jsonschema:"Registered primary and redundant routes"`
	PrunedConnections int `json:"pruned_connections" jsonschema:"Edges removed by pruning (monotonic)"`
	RewiresPerformed  int `json:"rewires_performed" jsonschema:"Bypass edges created around failures (monotonic)"`
	FailoversExecuted int `json:"failovers_executed" jsonschema:"Redundant path activations (monotonic)"`
}

// NodeHealthInput defines the input for the node_health tool.
type NodeHealthInput struct {
	NodeID string `json:"node_id" jsonschema:"ID of the node to inspect"`
}

// NodeHealthOutput defines the output for the node_health tool.
type NodeHealthOutput struct {
	NodeID    string  `json:"node_id"`
	State     string  `json:"state" jsonschema:"Lifecycle state: inactive/active/firing/failed"`
	Healthy   bool    `json:"healthy"`
	UptimeSec float64 `json:"uptime_sec" jsonschema:"Seconds since activation"`
	Errors    int     `json:"errors" jsonschema:"Processing failures since activation"`
	Received  int     `json:"received"`
	Emitted   int     `json:"emitted"`
	Processed int     `json:"processed"`
	Found     bool    `json:"found" jsonschema:"False when the node does not exist"`
}

// CircuitGraphInput defines the input for the circuit_graph tool.
type CircuitGraphInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: 'dot' (default) or 'json'"`
}

// CircuitGraphOutput defines the output for the circuit_graph tool.
type CircuitGraphOutput struct {
	Format  string `json:"format"`
	Content string `json:"content" jsonschema:"Rendered graph in the requested format"`
}
