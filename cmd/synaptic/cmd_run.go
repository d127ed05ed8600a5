package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nvandessel/synaptic/internal/circuit"
	"github.com/nvandessel/synaptic/internal/config"
	"github.com/nvandessel/synaptic/internal/logging"
	"github.com/nvandessel/synaptic/internal/plasticity"
	"github.com/nvandessel/synaptic/internal/trace"
	"github.com/spf13/cobra"
)

// runSummary is the run command's machine-readable result.
type runSummary struct {
	Rounds       int                     `json:"rounds"`
	SignalsFed   int                     `json:"signals_fed"`
	NodesFired   int                     `json:"nodes_fired"`
	Pruned       int                     `json:"pruned"`
	Strengthened int                     `json:"strengthened"`
	Health       plasticity.HealthReport `json:"health"`
	Statistics   plasticity.Statistics   `json:"statistics"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a topology's inputs through the circuit",
		Long: `Load a topology, activate every node, feed the declared inputs, and
propagate firings through weighted edges for a number of rounds. After
propagation an optimization pass prunes weak edges and strengthens hot
ones, then the network health score and engine statistics are reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			topoPath, _ := cmd.Flags().GetString("topology")
			rounds, _ := cmd.Flags().GetInt("rounds")
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
				PruningThreshold:  cfg.Engine.PruningThreshold,
				StrengthenRate:    cfg.Engine.StrengthenRate,
				WeakenRate:        cfg.Engine.WeakenRate,
				MaxRedundantPaths: cfg.Engine.MaxRedundantPaths,
				MetricsCap:        cfg.Engine.MetricsCap,
			})
			engine.SetLogger(logger)

			decisions := logging.NewDecisionLogger(cfg.Trace.Dir, cfg.Logging.Level)
			defer decisions.Close()
			engine.SetDecisionLogger(decisions)

			if cfg.Trace.Enabled {
				journal, err := trace.Open(cfg.Trace.Dir)
				if err != nil {
					return err
				}
				defer journal.Close()
				engine.SetJournal(journal)
			}

			ctx := cmd.Context()
			summary := runSummary{Rounds: rounds}

			// Feed declared inputs.
			for _, input := range topo.Inputs {
				count := input.Count
				if count == 0 {
					count = 1
				}
				sigType := circuit.SignalType(input.Type)
				if sigType == "" {
					sigType = circuit.SignalExcitatory
				}
				for i := 0; i < count; i++ {
					sig, err := circuit.NewSignal("external", sigType, input.Strength, circuit.Payload{})
					if err != nil {
						return err
					}
					if err := c.Node(input.Node).Receive(ctx, sig); err != nil {
						return fmt.Errorf("feed %s: %w", input.Node, err)
					}
					summary.SignalsFed++
				}
			}

			// Propagate firings.
			for round := 0; round < rounds; round++ {
				fired := propagateRound(ctx, c, engine, logger)
				summary.NodesFired += fired
				if fired == 0 {
					break
				}
			}

			summary.Pruned, summary.Strengthened = engine.OptimizeNetwork(ctx)
			summary.Health = engine.AssessNetworkHealth()
			summary.Statistics = engine.GetStatistics()

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"fed %d signals, %d firings over %d rounds\npruned %d, strengthened %d\nhealth %.3f (%d/%d nodes live, mean weight %.3f)\n",
				summary.SignalsFed, summary.NodesFired, rounds,
				summary.Pruned, summary.Strengthened,
				summary.Health.Score, summary.Health.ActiveNodes, summary.Health.TotalNodes,
				summary.Health.MeanEdgeWeight)
			return nil
		},
	}

	cmd.Flags().String("topology", "topology.yaml", "Path to the topology file")
	cmd.Flags().Int("rounds", 3, "Maximum propagation rounds")
	return cmd
}

// propagateRound flushes every node's queue and forwards each firing
// through the node's outgoing edges, recording transmissions with the
// engine. Returns the number of nodes that fired.
func propagateRound(ctx context.Context, c *circuit.Circuit, engine *plasticity.Engine, logger *slog.Logger) int {
	fired := 0
	for _, node := range c.Nodes() {
		if node.QueueLen() == 0 {
			continue
		}

		integration, out := node.Flush(ctx)
		if out == nil {
			continue
		}
		fired++
		if !out.Success {
			logger.Debug("node processing failed", "node", node.ID(), "error", out.Err)
			continue
		}

		strength := integration.Accumulated
		if strength > 1 {
			strength = 1
		}
		sig, err := circuit.NewSignal(node.ID(), circuit.SignalExcitatory, strength, circuit.Payload{})
		if err != nil {
			continue
		}

		for _, edge := range c.Outgoing(node.ID()) {
			start := time.Now()
			terr := edge.Transmit(ctx, sig)
			engine.RecordTransmission(edge.ID(), time.Since(start), terr != nil)
		}
	}
	return fired
}
