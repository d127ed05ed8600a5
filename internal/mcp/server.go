package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/synaptic/internal/circuit"
	"github.com/nvandessel/synaptic/internal/plasticity"
	"github.com/nvandessel/synaptic/internal/ratelimit"
)

// Server wraps the MCP SDK server around a live circuit and its plasticity
// engine. All tools are read-only.
type Server struct {
	server   *sdk.Server
	circuit  *circuit.Circuit
	engine   *plasticity.Engine
	limiters *ratelimit.Limiter
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "synaptic")
	Version string // Server version
}

// NewServer creates a monitoring server for the given circuit and engine.
func NewServer(cfg *Config, c *circuit.Circuit, eng *plasticity.Engine) *Server {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server:  mcpServer,
		circuit: c,
		engine:  eng,
		// Monitoring polls are cheap; 5/s with a burst of 10 per tool.
		limiters: ratelimit.New(5, 10),
	}
	s.registerTools()
	return s
}

// registerTools registers the monitoring tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "circuit_health",
		Description: "Score overall circuit health: live node ratio, mean edge weight, redundancy coverage",
	}, s.handleCircuitHealth)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "network_stats",
		Description: "Read the plasticity engine's counters: connections, pathways, prunes, rewires, failovers",
	}, s.handleNetworkStats)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "node_health",
		Description: "Inspect one node's lifecycle state, error count, and activity metrics",
	}, s.handleNodeHealth)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "circuit_graph",
		Description: "Render the circuit topology in DOT (Graphviz) or JSON format",
	}, s.handleCircuitGraph)
}

// Run starts the MCP server over stdio transport. It blocks until the
// client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
