package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/nvandessel/synaptic/internal/config"
	"github.com/nvandessel/synaptic/internal/trace"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
)

// statsReport combines journal aggregates with process-level resource usage.
type statsReport struct {
	Events  map[string]int `json:"events"`
	Recent  []trace.Event  `json:"recent,omitempty"`
	Process *processStats  `json:"process,omitempty"`
}

type processStats struct {
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
	Threads    int32   `json:"threads"`
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the telemetry journal",
		Long: `Read the journal recorded by previous runs (trace.enabled: true) and
report event counts per kind, the most recent events, and this process's
resource usage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			recent, _ := cmd.Flags().GetInt("recent")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			journal, err := trace.Open(cfg.Trace.Dir)
			if err != nil {
				return fmt.Errorf("open journal in %s: %w", cfg.Trace.Dir, err)
			}
			defer journal.Close()

			ctx := cmd.Context()
			report := statsReport{}

			report.Events, err = journal.CountByKind(ctx)
			if err != nil {
				return err
			}
			if recent > 0 {
				report.Recent, err = journal.Recent(ctx, recent)
				if err != nil {
					return err
				}
			}
			report.Process = currentProcessStats()

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if len(report.Events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "journal is empty")
			} else {
				kinds := make([]string, 0, len(report.Events))
				for k := range report.Events {
					kinds = append(kinds, k)
				}
				sort.Strings(kinds)
				for _, k := range kinds {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d\n", k, report.Events[k])
				}
			}

			for _, ev := range report.Recent {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s node=%s edge=%s\n",
					ev.Time.Format("15:04:05"), ev.Kind, ev.NodeID, ev.EdgeID)
			}

			if p := report.Process; p != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "process: pid=%d cpu=%.1f%% rss=%s threads=%d\n",
					p.PID, p.CPUPercent, formatBytes(p.RSSBytes), p.Threads)
			}
			return nil
		},
	}

	cmd.Flags().Int("recent", 0, "Also show the N most recent events")
	return cmd
}

// currentProcessStats reads this process's resource usage. Any failure just
// omits the section; stats are best-effort.
func currentProcessStats() *processStats {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}

	stats := &processStats{PID: p.Pid}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	if threads, err := p.NumThreads(); err == nil {
		stats.Threads = threads
	}
	return stats
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
