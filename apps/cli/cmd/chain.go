package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ariel-mendez/restflow/packages/chain"
	"github.com/ariel-mendez/restflow/packages/history"
	"github.com/ariel-mendez/restflow/packages/output"
	"github.com/ariel-mendez/restflow/packages/schema"
	"github.com/ariel-mendez/restflow/packages/store"
)

// watchDebounceDelay is the debounce delay for file watch events
const watchDebounceDelay = 300 * time.Millisecond

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Run chains of dependent requests",
}

var chainRunCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a chain file",
	Long: `Run the steps of a YAML chain file in order. Values extracted
from each response (extract: key -> dot-path) become variables for
later steps.

Examples:
  restflow chain run login-flow.yaml
  restflow chain run smoke.yaml --stop-on-error -o json
  restflow chain run smoke.yaml --watch --rate 5`,
	Args: cobra.ExactArgs(1),
	RunE: chainRunCommand,
}

var (
	chainStopOnErrorFlag bool
	chainCollectionFlag  string
	chainEnvFileFlag     string
	chainRateFlag        float64
	chainWatchFlag       bool
	chainOutputFlag      string
	chainVerboseFlag     bool
	chainInsecureFlag    bool
	chainNoColorFlag     bool
)

func init() {
	chainRunCmd.Flags().BoolVar(&chainStopOnErrorFlag, "stop-on-error", getEnvBool("RESTFLOW_STOP_ON_ERROR", false), "Abort the chain on the first failed step (env: RESTFLOW_STOP_ON_ERROR)")
	chainRunCmd.Flags().StringVarP(&chainCollectionFlag, "collection", "c", "", "Collection override (defaults to the chain file's collection)")
	chainRunCmd.Flags().StringVar(&chainEnvFileFlag, "env-file", "", "Path to .env file overlaid on globals")
	chainRunCmd.Flags().Float64Var(&chainRateFlag, "rate", 0, "Cap step issuance at N requests per second")
	chainRunCmd.Flags().BoolVarP(&chainWatchFlag, "watch", "w", false, "Watch the chain file and re-run on change")
	chainRunCmd.Flags().StringVarP(&chainOutputFlag, "output", "o", getEnvString("RESTFLOW_OUTPUT", "console"), "Output format: console, json (env: RESTFLOW_OUTPUT)")
	chainRunCmd.Flags().BoolVarP(&chainVerboseFlag, "verbose", "v", false, "Show extracted context values per step")
	chainRunCmd.Flags().BoolVarP(&chainInsecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	chainRunCmd.Flags().BoolVar(&chainNoColorFlag, "no-color", getEnvBool("RESTFLOW_NO_COLOR", false), "Disable colored output (env: RESTFLOW_NO_COLOR)")

	chainCmd.AddCommand(chainRunCmd)
}

func chainRunCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	if chainWatchFlag {
		return watchChainFile(cmd, path)
	}
	return runChainFile(cmd, path)
}

func runChainFile(cmd *cobra.Command, path string) error {
	def, err := chain.LoadFile(path)
	if err != nil {
		return err
	}

	ws, cfg, err := openWorkspace()
	if err != nil {
		return err
	}

	collection := chainCollectionFlag
	if collection == "" {
		collection = def.Collection
	}
	if collection == "" {
		collection = cfg.DefaultCollection
	}

	global, err := ws.GlobalVars()
	if err != nil {
		return err
	}
	if chainEnvFileFlag != "" {
		overlay, err := store.LoadEnvFile(chainEnvFileFlag)
		if err != nil {
			return err
		}
		for k, v := range overlay {
			global[k] = v
		}
	}
	envVars, err := ws.CollectionEnvVars(collection)
	if err != nil {
		return err
	}

	client := newClient(cfg, 0, chainInsecureFlag)
	executor := chain.NewExecutor(ws, ws, client,
		chain.WithGlobalVars(global),
		chain.WithEnvVars(envVars),
		chain.WithRateLimit(chainRateFlag),
		chain.WithWarnFunc(warnf),
		chain.WithSchemaValidator(schema.NewValidator(filepath.Dir(path))),
	)

	stopOnError := chainStopOnErrorFlag || def.StopOnError
	result := executor.Run(context.Background(), collection, def.Steps, stopOnError)

	recordChain(ws, def.Name, result)

	switch chainOutputFlag {
	case "json":
		if err := output.WriteJSON(cmd.OutOrStdout(), def.Name, result, chainVerboseFlag); err != nil {
			return err
		}
	default:
		formatter := output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithVerbose(chainVerboseFlag),
			output.WithNoColor(chainNoColorFlag || cfg.GetNoColor()),
		)
		formatter.FormatResult(def.Name, result)
	}

	if !result.Success {
		return errors.New("chain aborted")
	}
	return nil
}

func recordChain(ws *store.Store, name string, result *chain.Result) {
	hist, err := history.Open(historyPath(ws))
	if err != nil {
		warnf("history unavailable: %v", err)
		return
	}
	defer hist.Close()

	for _, r := range result.Results {
		entry := &history.Entry{
			Chain:  name,
			Step:   r.Index,
			URL:    r.Request,
			Status: r.Status,
		}
		if r.Response != nil {
			entry.DurationMs = r.Response.DurationMs()
			entry.SizeBytes = r.Response.SizeBytes()
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		if err := hist.Append(entry); err != nil {
			warnf("recording history: %v", err)
			return
		}
	}
}

// watchChainFile re-runs the chain whenever the file changes, debounced
// so editors that write multiple events per save trigger one run.
func watchChainFile(cmd *cobra.Command, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors often replace the
	// file on save, which drops a direct watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		if err := runChainFile(cmd, path); err != nil {
			warnf("%v", err)
		}
	}
	runOnce()
	fmt.Fprintf(cmd.OutOrStdout(), "\nwatching %s (ctrl-c to stop)\n", path)

	var debounce *time.Timer
	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounceDelay, runOnce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			warnf("watch error: %v", err)
		}
	}
}
