package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-mendez/restflow/packages/chain"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Manage saved request definitions",
}

var requestCollectionFlag string

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a collection's saved requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		requests, err := ws.ListRequests(requestCollectionFlag)
		if err != nil {
			return err
		}
		for _, req := range requests {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-7s %s\n", req.Name, strings.ToUpper(req.Method), req.URL)
		}
		return nil
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a saved request definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		req, err := ws.RequestByName(requestCollectionFlag, args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(req)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var (
	requestSaveMethodFlag  string
	requestSaveURLFlag     string
	requestSaveHeadersFlag []string
	requestSaveBodyFlag    string
	requestSaveAuthFlag    string
	requestSaveExtractFlag []string
)

var requestSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save a request definition into a collection",
	Long: `Save (or replace) a named request. Templates survive verbatim;
they are interpolated at send time.

Example:
  restflow request save login -c myapi -m POST -u {{base_url}}/login \
    -d '{"user": "{{user}}"}' --extract token=body.access_token`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace()
		if err != nil {
			return err
		}
		headers, err := parseHeaderFlags(requestSaveHeadersFlag)
		if err != nil {
			return err
		}
		extract := make(map[string]string, len(requestSaveExtractFlag))
		for _, pair := range requestSaveExtractFlag {
			key, path, found := strings.Cut(pair, "=")
			if !found {
				return fmt.Errorf("invalid extract %q, expected key=dot.path", pair)
			}
			extract[key] = path
		}
		req := &chain.RequestDef{
			Name:    args[0],
			Method:  strings.ToUpper(requestSaveMethodFlag),
			URL:     requestSaveURLFlag,
			Headers: headers,
			Auth:    requestSaveAuthFlag,
		}
		if requestSaveBodyFlag != "" {
			req.Body = requestSaveBodyFlag
		}
		if len(extract) > 0 {
			req.Extract = extract
		}
		if err := ws.SaveRequest(requestCollectionFlag, req); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s/%s\n", requestCollectionFlag, args[0])
		return nil
	},
}

func init() {
	requestCmd.PersistentFlags().StringVarP(&requestCollectionFlag, "collection", "c", getEnvString("RESTFLOW_COLLECTION", ""), "Collection name (env: RESTFLOW_COLLECTION)")
	_ = requestCmd.MarkPersistentFlagRequired("collection")

	requestSaveCmd.Flags().StringVarP(&requestSaveMethodFlag, "method", "m", "GET", "HTTP method")
	requestSaveCmd.Flags().StringVarP(&requestSaveURLFlag, "url", "u", "", "URL template")
	requestSaveCmd.Flags().StringArrayVarP(&requestSaveHeadersFlag, "header", "H", nil, "Header template \"Key: Value\" (repeatable)")
	requestSaveCmd.Flags().StringVarP(&requestSaveBodyFlag, "data", "d", "", "Body template")
	requestSaveCmd.Flags().StringVar(&requestSaveAuthFlag, "auth", "", "Named auth spec from secrets")
	requestSaveCmd.Flags().StringArrayVar(&requestSaveExtractFlag, "extract", nil, "Extraction key=dot.path (repeatable)")
	_ = requestSaveCmd.MarkFlagRequired("url")

	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestSaveCmd)
}
