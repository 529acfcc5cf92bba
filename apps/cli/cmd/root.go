package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	workspaceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "restflow",
	Short: "Scriptable HTTP API client with environments and request chains.",
	Long: `restflow is a terminal HTTP API client. Requests, environments,
variables and secrets live as plain files in a workspace; templates use
{{placeholders}} resolved from layered variable scopes, and chains run
sequences of dependent requests threading extracted values from one
response into the next.`,
	SilenceUsage: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("RESTFLOW_CONFIG", ""), "Path to config file (env: RESTFLOW_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", getEnvString("RESTFLOW_WORKSPACE", ""), "Workspace directory (env: RESTFLOW_WORKSPACE)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
