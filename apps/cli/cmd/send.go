package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-mendez/restflow/packages/core/vars"
	"github.com/ariel-mendez/restflow/packages/history"
	"github.com/ariel-mendez/restflow/packages/httpx"
	"github.com/ariel-mendez/restflow/packages/store"
)

var sendCmd = &cobra.Command{
	Use:   "send METHOD URL",
	Short: "Send a single HTTP request",
	Long: `Send a one-off request. URL, headers and body may contain
{{placeholders}} resolved from globals and the collection's active
environment.

Examples:
  restflow send GET https://api.example.com/users
  restflow send POST {{base_url}}/login -d '{"user": "{{user}}"}' -c myapi
  restflow send GET {{base_url}}/me --auth prod-token -c myapi`,
	Args: cobra.ExactArgs(2),
	RunE: sendCommand,
}

var (
	sendHeadersFlag    []string
	sendDataFlag       string
	sendAuthFlag       string
	sendCollectionFlag string
	sendEnvFileFlag    string
	sendTimeoutFlag    string
	sendInsecureFlag   bool
	sendVerboseFlag    bool
	sendNoColorFlag    bool
)

func init() {
	sendCmd.Flags().StringArrayVarP(&sendHeadersFlag, "header", "H", nil, "Request header \"Key: Value\" (repeatable)")
	sendCmd.Flags().StringVarP(&sendDataFlag, "data", "d", "", "Request body")
	sendCmd.Flags().StringVar(&sendAuthFlag, "auth", "", "Named auth spec from secrets")
	sendCmd.Flags().StringVarP(&sendCollectionFlag, "collection", "c", getEnvString("RESTFLOW_COLLECTION", ""), "Collection whose active environment supplies variables (env: RESTFLOW_COLLECTION)")
	sendCmd.Flags().StringVar(&sendEnvFileFlag, "env-file", "", "Path to .env file overlaid on globals")
	sendCmd.Flags().StringVar(&sendTimeoutFlag, "timeout", "", "Request timeout (e.g. 30s, 1m)")
	sendCmd.Flags().BoolVarP(&sendInsecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	sendCmd.Flags().BoolVarP(&sendVerboseFlag, "verbose", "v", false, "Print response headers")
	sendCmd.Flags().BoolVar(&sendNoColorFlag, "no-color", getEnvBool("RESTFLOW_NO_COLOR", false), "Disable colored output (env: RESTFLOW_NO_COLOR)")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	method, rawURL := args[0], args[1]

	ws, cfg, err := openWorkspace()
	if err != nil {
		return err
	}
	if sendNoColorFlag || cfg.GetNoColor() {
		color.NoColor = true
	}

	scope, err := buildScope(ws, sendCollectionFlag, sendEnvFileFlag)
	if err != nil {
		return err
	}
	resolver := vars.NewResolver(scope)
	resolver.SetWarnFunc(warnf)

	headers, err := parseHeaderFlags(sendHeadersFlag)
	if err != nil {
		return err
	}

	req := httpx.NewRequest(method, resolver.Interpolate(rawURL))
	for k, v := range resolver.InterpolateMap(headers) {
		req.SetHeader(k, v)
	}
	if sendDataFlag != "" {
		req.SetBody(resolver.Interpolate(sendDataFlag))
	}
	if sendAuthFlag != "" {
		auth, err := ws.ResolveAuth(sendAuthFlag)
		if err != nil {
			return err
		}
		auth.Token = resolver.Interpolate(auth.Token)
		auth.Username = resolver.Interpolate(auth.Username)
		auth.Password = resolver.Interpolate(auth.Password)
		auth.Key = resolver.Interpolate(auth.Key)
		auth.Value = resolver.Interpolate(auth.Value)
		req.Auth = auth
	}

	var timeout time.Duration
	if sendTimeoutFlag != "" {
		timeout, err = time.ParseDuration(sendTimeoutFlag)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}

	client := newClient(cfg, timeout, sendInsecureFlag)
	resp, err := client.Do(context.Background(), req)

	recordSend(ws, req, resp, err)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	printResponse(cmd, resp)
	if resp.IsError() {
		return errors.New(resp.Status)
	}
	return nil
}

// buildScope assembles the global + collection-environment layers, with
// an optional .env overlay on top of globals.
func buildScope(ws *store.Store, collection, envFile string) (*vars.Scope, error) {
	global, err := ws.GlobalVars()
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		overlay, err := store.LoadEnvFile(envFile)
		if err != nil {
			return nil, err
		}
		for k, v := range overlay {
			global[k] = v
		}
	}
	envVars, err := ws.CollectionEnvVars(collection)
	if err != nil {
		return nil, err
	}
	return vars.Merge(global, envVars, nil, nil), nil
}

func recordSend(ws *store.Store, req *httpx.Request, resp *httpx.Response, sendErr error) {
	hist, err := history.Open(historyPath(ws))
	if err != nil {
		warnf("history unavailable: %v", err)
		return
	}
	defer hist.Close()

	entry := &history.Entry{
		Method: req.Method,
		URL:    req.URL,
	}
	if resp != nil {
		entry.Status = resp.StatusCode
		entry.DurationMs = resp.DurationMs()
		entry.SizeBytes = resp.SizeBytes()
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}
	if err := hist.Append(entry); err != nil {
		warnf("recording history: %v", err)
	}
}

func printResponse(cmd *cobra.Command, resp *httpx.Response) {
	out := cmd.OutOrStdout()
	statusColor := color.New(color.FgGreen)
	if resp.IsError() {
		statusColor = color.New(color.FgRed)
	}
	fmt.Fprintf(out, "%s %s\n", statusColor.Sprint(resp.Status),
		color.CyanString("(%dms, %d bytes)", resp.DurationMs(), resp.SizeBytes()))

	if sendVerboseFlag {
		for k, v := range resp.Headers {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
	if len(resp.Body) > 0 {
		fmt.Fprintln(out, resp.BodyString())
	}
}
