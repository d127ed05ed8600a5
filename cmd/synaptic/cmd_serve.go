package main

import (
	"os"

	"github.com/nvandessel/synaptic/internal/config"
	"github.com/nvandessel/synaptic/internal/logging"
	"github.com/nvandessel/synaptic/internal/mcp"
	"github.com/nvandessel/synaptic/internal/plasticity"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only monitoring tools over MCP",
		Long: `Materialize a topology into a live circuit and expose it to MCP clients
over stdio. The tools are read-only: circuit health, engine statistics,
per-node health, and graph rendering. Logs go to stderr; stdout carries
the MCP transport.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			topoPath, _ := cmd.Flags().GetString("topology")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			topo, err := config.LoadTopology(topoPath)
			if err != nil {
				return err
			}
			c, err := circuitFromTopology(cfg, topo)
			if err != nil {
				return err
			}
			if err := c.Activate(); err != nil {
				return err
			}
			defer c.Shutdown()

			engine := plasticity.NewEngine(c, plasticity.Config{
				PruningThreshold:  cfg.Engine.PruningThreshold,
				StrengthenRate:    cfg.Engine.StrengthenRate,
				WeakenRate:        cfg.Engine.WeakenRate,
				MaxRedundantPaths: cfg.Engine.MaxRedundantPaths,
				MetricsCap:        cfg.Engine.MetricsCap,
			})
			engine.SetLogger(logger)

			server := mcp.NewServer(&mcp.Config{
				Name:    "synaptic",
				Version: version,
			}, c, engine)

			logger.Info("monitoring server listening on stdio",
				"nodes", c.NodeCount(), "connections", c.ConnectionCount())
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("topology", "topology.yaml", "Path to the topology file")
	return cmd
}
