package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a restflow workspace",
	Long: `Create the workspace directory with empty globals and secrets
files. Safe to run on an existing workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		if err := ws.Init(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "workspace ready at %s\n", ws.Dir())
		return nil
	},
}
