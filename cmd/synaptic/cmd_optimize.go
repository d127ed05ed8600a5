package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvandessel/synaptic/internal/config"
	"github.com/nvandessel/synaptic/internal/logging"
	"github.com/nvandessel/synaptic/internal/plasticity"
	"github.com/spf13/cobra"
)

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run one optimization pass over a topology",
		Long: `Materialize a topology and run a single pruning-and-strengthening pass,
reporting which edges fell below the pruning threshold. Freshly loaded
edges carry no usage, so strengthening only applies when the pass follows
recorded traffic; the command is mainly a dry run for threshold tuning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			topoPath, _ := cmd.Flags().GetString("topology")
			jsonOut, _ := cmd.Flags().GetBool("json")

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
				PruningThreshold: cfg.Engine.PruningThreshold,
				StrengthenRate:   cfg.Engine.StrengthenRate,
			})
			engine.SetLogger(logger)

			weak := engine.IdentifyWeakConnections()
			keys := make([]string, 0, len(weak))
			for _, e := range weak {
				keys = append(keys, e.Key())
			}

			pruned, strengthened := engine.OptimizeNetwork(cmd.Context())

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"pruned":       pruned,
					"strengthened": strengthened,
					"pruned_edges": keys,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d, strengthened %d\n", pruned, strengthened)
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "  pruned %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().String("topology", "topology.yaml", "Path to the topology file")
	return cmd
}
