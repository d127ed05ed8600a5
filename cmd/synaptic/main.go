package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "synaptic",
		Short: "Signal propagation and synaptic plasticity engine",
		Long: `synaptic drives a weighted directed circuit of threshold-gated nodes.

It propagates signals through weighted edges, adapts edge weights from
usage, prunes weak connections, and rewires around failed nodes. The run
command replays a YAML topology; serve exposes read-only monitoring tools
over MCP.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("config", "synaptic.yaml", "Path to the config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newRunCmd(),
		newGraphCmd(),
		newOptimizeCmd(),
		newHealthCmd(),
		newStatsCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "{\"version\":%q}\n", version)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "synaptic version %s\n", version)
			}
		},
	}
}

const starterConfig = `# synaptic configuration
engine:
  pruning_threshold: 0.1
  strengthen_rate: 0.1
node:
  default_threshold: 0.5
logging:
  level: info
trace:
  enabled: false
  dir: .synaptic
`

const starterTopology = `# Example circuit: sensor -> relay -> motor, with a direct standby route.
nodes:
  - id: sensor
    threshold: 0.2
  - id: relay
  - id: motor
    threshold: 0.6
edges:
  - source: sensor
    target: relay
    weight: 0.8
    speed: myelinated
  - source: relay
    target: motor
    weight: 0.8
  - source: sensor
    target: motor
    weight: 0.3
    speed: slow
inputs:
  - node: sensor
    strength: 0.4
    count: 2
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config and example topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			files := []struct {
				path    string
				content string
			}{
				{configPath, starterConfig},
				{"topology.yaml", starterTopology},
			}
			for _, f := range files {
				path, content := f.path, f.content
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, skipping\n", path)
					continue
				}
				if err := os.WriteFile(path, []byte(content), 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}
}
