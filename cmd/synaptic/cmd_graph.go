package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvandessel/synaptic/internal/config"
	"github.com/nvandessel/synaptic/internal/visualization"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render a topology as DOT or JSON",
		Long: `Materialize a topology file into a circuit and render it. DOT output
pipes straight into Graphviz:

  synaptic graph | dot -Tsvg -o circuit.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			topoPath, _ := cmd.Flags().GetString("topology")
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("output")
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				format = string(visualization.FormatJSON)
			}

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

			var rendered string
			switch visualization.Format(format) {
			case visualization.FormatDOT:
				rendered = visualization.RenderDOT(c)
			case visualization.FormatJSON:
				data, err := json.MarshalIndent(visualization.RenderJSON(c), "", "  ")
				if err != nil {
					return fmt.Errorf("encode graph: %w", err)
				}
				rendered = string(data) + "\n"
			default:
				return fmt.Errorf("unsupported format %q (use 'dot' or 'json')", format)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(rendered), 0644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().String("topology", "topology.yaml", "Path to the topology file")
	cmd.Flags().StringP("format", "f", "dot", "Output format: dot or json")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}
