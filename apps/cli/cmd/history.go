package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-mendez/restflow/packages/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past requests",
}

var historyLimitFlag int

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, cfg, err := openWorkspace()
		if err != nil {
			return err
		}
		hist, err := history.Open(historyPath(ws))
		if err != nil {
			return err
		}
		defer hist.Close()

		limit := historyLimitFlag
		if limit <= 0 {
			limit = cfg.HistoryLimit
		}
		entries, err := hist.List(limit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			label := e.URL
			if e.Chain != "" {
				label = fmt.Sprintf("%s#%d %s", e.Chain, e.Step, e.URL)
			}
			status := color.GreenString("%d", e.Status)
			if e.Status >= 400 || e.Error != "" {
				status = color.RedString("%d", e.Status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %-40s %s (%dms)\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Method, label, status, e.DurationMs)
			if e.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", color.RedString(e.Error))
			}
		}
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Latency percentiles over recorded requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		hist, err := history.Open(historyPath(ws))
		if err != nil {
			return err
		}
		defer hist.Close()

		stats, err := hist.Stats()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "requests: %d (errors: %d)\n", stats.Count, stats.Errors)
		if stats.Count == 0 {
			return nil
		}
		fmt.Fprintf(out, "p50: %s\n", stats.P50)
		fmt.Fprintf(out, "p95: %s\n", stats.P95)
		fmt.Fprintf(out, "p99: %s\n", stats.P99)
		fmt.Fprintf(out, "max: %s\n", stats.Max)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		hist, err := history.Open(historyPath(ws))
		if err != nil {
			return err
		}
		defer hist.Close()
		return hist.Clear()
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimitFlag, "limit", 0, "Maximum entries to show (default from config)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
}
