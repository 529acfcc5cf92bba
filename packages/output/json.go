package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ariel-mendez/restflow/packages/chain"
)

type jsonStep struct {
	Index     int            `json:"index"`
	Request   string         `json:"request"`
	Status    int            `json:"status,omitempty"`
	Duration  int64          `json:"durationMs"`
	Error     string         `json:"error,omitempty"`
	ErrorKind string         `json:"errorKind,omitempty"`
	Aborted   bool           `json:"aborted,omitempty"`
	Extracted map[string]any `json:"extracted,omitempty"`
	Body      string         `json:"body,omitempty"`
}

type jsonResult struct {
	Chain   string         `json:"chain"`
	Success bool           `json:"success"`
	Failed  int            `json:"failed"`
	Steps   []jsonStep     `json:"steps"`
	Context map[string]any `json:"context"`
}

// WriteJSON renders a chain result as indented JSON. With verbose set,
// response bodies are included per step.
func WriteJSON(w io.Writer, name string, result *chain.Result, verbose bool) error {
	out := jsonResult{
		Chain:   name,
		Success: result.Success,
		Failed:  result.Failed,
		Context: result.Context,
	}
	for _, r := range result.Results {
		step := jsonStep{
			Index:     r.Index,
			Request:   r.Request,
			Status:    r.Status,
			Duration:  r.Duration.Milliseconds(),
			Aborted:   r.Aborted,
			Extracted: r.Extracted,
		}
		if !r.OK() {
			step.ErrorKind = r.ErrKind.String()
			if r.Err != nil {
				step.Error = r.Err.Error()
			}
		}
		if verbose && r.Response != nil {
			step.Body = r.Response.BodyString()
		}
		out.Steps = append(out.Steps, step)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
