// Package output renders chain results for humans and machines.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/ariel-mendez/restflow/packages/chain"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(name string, result *chain.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Chain: "+name))

	for _, r := range result.Results {
		switch {
		case r.Aborted:
			fmt.Fprintf(f.writer, "  %s %d. %s %s\n", red("✗"), r.Index, r.Request,
				red(fmt.Sprintf("(aborted: %s)", describeFailure(r))))
		case !r.OK():
			fmt.Fprintf(f.writer, "  %s %d. %s %s\n", yellow("!"), r.Index, r.Request,
				yellow(fmt.Sprintf("(%s)", describeFailure(r))))
		default:
			fmt.Fprintf(f.writer, "  %s %d. %s %s %s\n", green("✓"), r.Index, r.Request,
				statusLabel(r.Status), cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		}

		if f.verbose && len(r.Extracted) > 0 {
			for key, value := range r.Extracted {
				fmt.Fprintf(f.writer, "      %s = %s\n", key, formatValue(value, 80))
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	if result.Success {
		fmt.Fprintf(f.writer, "%s", green("chain succeeded"))
	} else {
		fmt.Fprintf(f.writer, "%s", red("chain aborted"))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, " %s", yellow(fmt.Sprintf("(%d step(s) failed)", result.Failed)))
	}
	fmt.Fprintf(f.writer, "\n")
}

func describeFailure(r *chain.StepResult) string {
	if r.ErrKind == chain.ErrHTTPStatus {
		return fmt.Sprintf("status %d", r.Status)
	}
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.ErrKind, r.Err)
	}
	return r.ErrKind.String()
}

func statusLabel(status int) string {
	if status == 0 {
		return ""
	}
	return fmt.Sprintf("[%d]", status)
}

// formatValue formats a value for display, truncating or summarizing
// large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}
