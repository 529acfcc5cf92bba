package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ariel-mendez/restflow/packages/core/vars"
)

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Manage workspace-wide variables",
}

var varsSetCmd = &cobra.Command{
	Use:   "set NAME VALUE",
	Short: "Set a global variable",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		return ws.SetGlobal(args[0], parseVarValue(args[1]))
	},
}

var varsGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a global variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		global, err := ws.GlobalVars()
		if err != nil {
			return err
		}
		value, ok := global[args[0]]
		if !ok {
			return fmt.Errorf("variable %q not set", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
		return nil
	},
}

var varsUnsetCmd = &cobra.Command{
	Use:   "unset NAME",
	Short: "Remove a global variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		return ws.UnsetGlobal(args[0])
	},
}

var varsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List global variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		global, err := ws.GlobalVars()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(global))
		for name := range global {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", name, global[name])
		}
		return nil
	},
}

var varsTestCollectionFlag string

var varsTestCmd = &cobra.Command{
	Use:   "test TEMPLATE",
	Short: "Preview interpolation of a template",
	Long: `Expand a template against globals and the collection's active
environment and print the result, e.g.:

  restflow vars test "{{base_url}}/users/{{$uuid}}" -c myapi`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		scope, err := buildScope(ws, varsTestCollectionFlag, "")
		if err != nil {
			return err
		}
		resolver := vars.NewResolver(scope)
		resolver.SetWarnFunc(warnf)
		fmt.Fprintln(cmd.OutOrStdout(), resolver.Interpolate(args[0]))
		return nil
	},
}

func init() {
	varsTestCmd.Flags().StringVarP(&varsTestCollectionFlag, "collection", "c", "", "Collection whose active environment supplies variables")

	varsCmd.AddCommand(varsSetCmd)
	varsCmd.AddCommand(varsGetCmd)
	varsCmd.AddCommand(varsUnsetCmd)
	varsCmd.AddCommand(varsListCmd)
	varsCmd.AddCommand(varsTestCmd)
}
