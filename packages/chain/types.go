package chain

import (
	"context"
	"time"

	"github.com/ariel-mendez/restflow/packages/httpx"
)

// RequestDef is a reusable request definition, either stored in a
// collection or declared inline on a chain step. Templates in URL,
// headers and body may contain {{placeholders}}.
type RequestDef struct {
	Name    string            `yaml:"name"`
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    any               `yaml:"body,omitempty"`
	Auth    string            `yaml:"auth,omitempty"`
	Extract map[string]string `yaml:"extract,omitempty"`
}

// Step is one entry of a chain: either a reference to a saved request
// (Request) or an inline definition. Use merges extra variables at
// highest priority for this step only; Extract maps context keys to
// dot-paths into the response snapshot.
type Step struct {
	Request string            `yaml:"request,omitempty"`
	Name    string            `yaml:"name,omitempty"`
	Method  string            `yaml:"method,omitempty"`
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    any               `yaml:"body,omitempty"`
	Auth    string            `yaml:"auth,omitempty"`
	Use     map[string]any    `yaml:"use,omitempty"`
	Extract map[string]string `yaml:"extract,omitempty"`
	DelayMs int               `yaml:"delayMs,omitempty"`
	Schema  string            `yaml:"schema,omitempty"`
}

// Definition is a chain file: an ordered list of steps plus run policy.
type Definition struct {
	Name        string `yaml:"name"`
	Collection  string `yaml:"collection,omitempty"`
	StopOnError bool   `yaml:"stop_on_error,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// ErrKind classifies step-level failures.
type ErrKind int

const (
	ErrNone ErrKind = iota
	// ErrRequestNotFound means the step referenced an unknown saved request.
	ErrRequestNotFound
	// ErrTransportFailure means no response was obtained at all.
	ErrTransportFailure
	// ErrHTTPStatus means a response arrived with status >= 400.
	ErrHTTPStatus
	// ErrSchemaViolation means the response body failed schema validation.
	ErrSchemaViolation
)

func (k ErrKind) String() string {
	switch k {
	case ErrNone:
		return "ok"
	case ErrRequestNotFound:
		return "request not found"
	case ErrTransportFailure:
		return "transport failure"
	case ErrHTTPStatus:
		return "http error status"
	case ErrSchemaViolation:
		return "schema violation"
	default:
		return "unknown"
	}
}

// StepResult records the outcome of one step. Response is nil when no
// response was obtained (ErrRequestNotFound, ErrTransportFailure).
type StepResult struct {
	Index      int
	Request    string
	Status     int
	StatusText string
	Duration   time.Duration
	Response   *httpx.Response
	ErrKind    ErrKind
	Err        error
	Extracted  map[string]any
	Aborted    bool
}

func (r *StepResult) OK() bool {
	return r.ErrKind == ErrNone
}

// Result aggregates a chain run. Success is false only when a
// stop-on-error abort fired; non-aborting step failures keep Success
// true but are counted in Failed for callers that want the stricter
// reading.
type Result struct {
	Success bool
	Failed  int
	Results []*StepResult
	Context map[string]any
}

// RequestStore fetches saved request definitions by name.
type RequestStore interface {
	RequestByName(collection, name string) (*RequestDef, error)
}

// CredentialStore resolves a named auth reference to concrete material.
type CredentialStore interface {
	ResolveAuth(name string) (*httpx.Auth, error)
}

// HTTPExecutor issues one request and returns a response snapshot. An
// error means no response was obtained.
type HTTPExecutor interface {
	Do(ctx context.Context, req *httpx.Request) (*httpx.Response, error)
}

// SchemaValidator checks a response body against a named schema.
type SchemaValidator interface {
	Validate(schemaPath string, body []byte) error
}
