package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/synaptic/internal/visualization"
)

func (s *Server) handleCircuitHealth(ctx context.Context, req *sdk.CallToolRequest, args CircuitHealthInput) (*sdk.CallToolResult, CircuitHealthOutput, error) {
	if err := s.limiters.Check("circuit_health"); err != nil {
		return nil, CircuitHealthOutput{}, err
	}

	report := s.engine.AssessNetworkHealth()
	return nil, CircuitHealthOutput{
		Score:          report.Score,
		ActiveNodes:    report.ActiveNodes,
		TotalNodes:     report.TotalNodes,
		MeanEdgeWeight: report.MeanEdgeWeight,
		RedundantPaths: report.RedundantPaths,
	}, nil
}

func (s *Server) handleNetworkStats(ctx context.Context, req *sdk.CallToolRequest, args NetworkStatsInput) (*sdk.CallToolResult, NetworkStatsOutput, error) {
	if err := s.limiters.Check("network_stats"); err != nil {
		return nil, NetworkStatsOutput{}, err
	}

	stats := s.engine.GetStatistics()
	return nil, NetworkStatsOutput{
		TotalConnections:  stats.TotalConnections,
		ActivePathways:    stats.ActivePathways,
		PrunedConnections: stats.PrunedConnections,
		RewiresPerformed:  stats.RewiresPerformed,
		FailoversExecuted: stats.FailoversExecuted,
	}, nil
}

func (s *Server) handleNodeHealth(ctx context.Context, req *sdk.CallToolRequest, args NodeHealthInput) (*sdk.CallToolResult, NodeHealthOutput, error) {
	if err := s.limiters.Check("node_health"); err != nil {
		return nil, NodeHealthOutput{}, err
	}
	if args.NodeID == "" {
		return nil, NodeHealthOutput{}, fmt.Errorf("node_id is required")
	}

	node := s.circuit.Node(args.NodeID)
	if node == nil {
		// Missing nodes degrade gracefully; the caller checks Found.
		return nil, NodeHealthOutput{NodeID: args.NodeID, Found: false}, nil
	}

	health := node.HealthCheck()
	return nil, NodeHealthOutput{
		NodeID:    node.ID(),
		State:     string(node.State()),
		Healthy:   health.Healthy,
		UptimeSec: health.Uptime.Seconds(),
		Errors:    health.Errors,
		Received:  health.Metrics.Received,
		Emitted:   health.Metrics.Emitted,
		Processed: health.Metrics.Processed,
		Found:     true,
	}, nil
}

func (s *Server) handleCircuitGraph(ctx context.Context, req *sdk.CallToolRequest, args CircuitGraphInput) (*sdk.CallToolResult, CircuitGraphOutput, error) {
	if err := s.limiters.Check("circuit_graph"); err != nil {
		return nil, CircuitGraphOutput{}, err
	}

	format := args.Format
	if format == "" {
		format = string(visualization.FormatDOT)
	}

	switch visualization.Format(format) {
	case visualization.FormatDOT:
		return nil, CircuitGraphOutput{Format: format, Content: visualization.RenderDOT(s.circuit)}, nil
	case visualization.FormatJSON:
		data, err := json.MarshalIndent(visualization.RenderJSON(s.circuit), "", "  ")
		if err != nil {
			return nil, CircuitGraphOutput{}, fmt.Errorf("encode graph: %w", err)
		}
		return nil, CircuitGraphOutput{Format: format, Content: string(data)}, nil
	default:
		return nil, CircuitGraphOutput{}, fmt.Errorf("unsupported format %q (use 'dot' or 'json')", format)
	}
}
