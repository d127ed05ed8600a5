package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/synaptic/internal/config"
	"github.com/nvandessel/synaptic/internal/plasticity"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Score a topology's network health",
		Long: `Materialize a topology, bring every node up, and report the composite
health score: live node ratio, mean edge weight, and redundancy coverage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			topoPath, _ := cmd.Flags().GetString("topology")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
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

			engine := plasticity.NewEngine(c, plasticity.DefaultConfig())
			report := engine.AssessNetworkHealth()

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"health %.3f\nnodes: %d/%d live\nmean edge weight: %.3f\nredundant paths: %d\n",
				report.Score, report.ActiveNodes, report.TotalNodes,
				report.MeanEdgeWeight, report.RedundantPaths)
			return nil
		},
	}

	cmd.Flags().String("topology", "topology.yaml", "Path to the topology file")
	return cmd
}
