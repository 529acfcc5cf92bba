package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage collection environments",
}

var envCollectionFlag string

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a collection's environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		envs, err := ws.ListEnvironments(envCollectionFlag)
		if err != nil {
			return err
		}
		active, err := ws.ActiveEnvironment(envCollectionFlag)
		if err != nil {
			return err
		}
		for _, env := range envs {
			marker := " "
			if env == active {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, env)
		}
		return nil
	},
}

var envUseCmd = &cobra.Command{
	Use:   "use ENV",
	Short: "Switch a collection's active environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		if err := ws.SetActiveEnvironment(envCollectionFlag, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s now uses %s\n", envCollectionFlag, args[0])
		return nil
	},
}

var envSetEnvFlag string

var envSetCmd = &cobra.Command{
	Use:   "set NAME VALUE",
	Short: "Set a variable in an environment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		env := envSetEnvFlag
		if env == "" {
			env, err = ws.ActiveEnvironment(envCollectionFlag)
			if err != nil {
				return err
			}
		}
		if env == "" {
			return fmt.Errorf("no environment given and none active for %q", envCollectionFlag)
		}
		return ws.SetEnvVar(envCollectionFlag, env, args[0], parseVarValue(args[1]))
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show ENV",
	Short: "Print an environment's variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		envVars, err := ws.EnvVars(envCollectionFlag, args[0])
		if err != nil {
			return err
		}
		names := make([]string, 0, len(envVars))
		for name := range envVars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", name, envVars[name])
		}
		return nil
	},
}

func init() {
	envCmd.PersistentFlags().StringVarP(&envCollectionFlag, "collection", "c", getEnvString("RESTFLOW_COLLECTION", ""), "Collection name (env: RESTFLOW_COLLECTION)")
	_ = envCmd.MarkPersistentFlagRequired("collection")

	envSetCmd.Flags().StringVar(&envSetEnvFlag, "env", "", "Environment to modify (defaults to the active one)")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envUseCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envShowCmd)
}
