package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ariel-mendez/restflow/packages/core/vars"
	"github.com/ariel-mendez/restflow/packages/extract"
	"github.com/ariel-mendez/restflow/packages/httpx"
)

// Executor runs chains. The variable layers, request store, credential
// store and HTTP transport are all injected; the executor holds no
// ambient state and a single Executor can serve many runs, each with an
// independently owned context and results list.
type Executor struct {
	requests  RequestStore
	creds     CredentialStore
	client    HTTPExecutor
	validator SchemaValidator
	global    map[string]any
	envVars   map[string]any
	limiter   *rate.Limiter
	warnFunc  vars.WarnFunc
}

type Option func(*Executor)

func NewExecutor(requests RequestStore, creds CredentialStore, client HTTPExecutor, opts ...Option) *Executor {
	e := &Executor{
		requests: requests,
		creds:    creds,
		client:   client,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithGlobalVars supplies the workspace-wide variable layer.
func WithGlobalVars(global map[string]any) Option {
	return func(e *Executor) {
		e.global = global
	}
}

// WithEnvVars supplies the collection active-environment layer.
func WithEnvVars(envVars map[string]any) Option {
	return func(e *Executor) {
		e.envVars = envVars
	}
}

// WithRateLimit caps step issuance at rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(e *Executor) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithWarnFunc(fn vars.WarnFunc) Option {
	return func(e *Executor) {
		e.warnFunc = fn
	}
}

func WithSchemaValidator(v SchemaValidator) Option {
	return func(e *Executor) {
		e.validator = v
	}
}

// Run executes the steps in declared order. The chain context starts
// empty and grows by merging each step's extracted values; later steps
// see everything earlier steps extracted. When stopOnError is set, a
// step failure or an HTTP status >= 400 aborts the run with the results
// gathered so far and Success=false. When it is not set, execution
// continues past failed steps; they are counted in Failed but do not
// flip Success. Steps that fail without obtaining a response contribute
// nothing to the context.
func (e *Executor) Run(ctx context.Context, collection string, steps []Step, stopOnError bool) *Result {
	result := &Result{
		Success: true,
		Context: make(map[string]any),
	}

	for i, step := range steps {
		stepResult := e.runStep(ctx, collection, step, i+1, result.Context, stopOnError)
		if !stepResult.OK() {
			result.Failed++
			if stopOnError {
				stepResult.Aborted = true
				result.Success = false
				result.Results = append(result.Results, stepResult)
				return result
			}
		}
		result.Results = append(result.Results, stepResult)

		if step.DelayMs > 0 && i < len(steps)-1 {
			if !sleepCtx(ctx, time.Duration(step.DelayMs)*time.Millisecond) {
				return result
			}
		}
	}

	return result
}

func (e *Executor) runStep(ctx context.Context, collection string, step Step, index int, chainCtx map[string]any, stopOnError bool) *StepResult {
	req, identity, err := e.resolveStep(collection, step)
	stepResult := &StepResult{Index: index, Request: identity}
	if err != nil {
		stepResult.ErrKind = ErrRequestNotFound
		stepResult.Err = err
		return stepResult
	}

	scope := vars.Merge(e.global, e.envVars, chainCtx, step.Use)
	resolver := vars.NewResolver(scope)
	resolver.SetWarnFunc(e.warnFunc)

	httpReq := e.buildRequest(req, resolver)

	if e.limiter != nil {
		// A wait error only happens on context cancellation; the
		// transport will surface it on the Do call right after.
		_ = e.limiter.Wait(ctx)
	}

	resp, err := e.client.Do(ctx, httpReq)
	if err != nil {
		stepResult.ErrKind = ErrTransportFailure
		stepResult.Err = err
		return stepResult
	}

	stepResult.Status = resp.StatusCode
	stepResult.StatusText = resp.Status
	stepResult.Duration = resp.Duration
	stepResult.Response = resp

	if step.Schema != "" && e.validator != nil {
		if verr := e.validator.Validate(step.Schema, resp.Body); verr != nil {
			stepResult.ErrKind = ErrSchemaViolation
			stepResult.Err = verr
			return stepResult
		}
	}

	if resp.IsError() {
		stepResult.ErrKind = ErrHTTPStatus
		stepResult.Err = fmt.Errorf("http status %d", resp.StatusCode)
	}

	// Extraction runs whenever a response exists and the run will
	// continue, even for error statuses; null results are skipped and
	// never fail the step. An aborting step stops before extraction.
	if !stepResult.OK() && stopOnError {
		return stepResult
	}
	extractMap := mergeExtract(req.Extract, step.Extract)
	if len(extractMap) > 0 {
		snapshot := responseSnapshot(resp)
		stepResult.Extracted = make(map[string]any)
		for key, path := range extractMap {
			if value := extract.ByPath(snapshot, path); value != nil {
				chainCtx[key] = value
				stepResult.Extracted[key] = value
			}
		}
	}

	return stepResult
}

// resolveStep returns the effective request definition for a step and
// an identity string for reporting.
func (e *Executor) resolveStep(collection string, step Step) (*RequestDef, string, error) {
	if step.Request != "" {
		req, err := e.requests.RequestByName(collection, step.Request)
		if err != nil {
			return nil, step.Request, err
		}
		return req, step.Request, nil
	}

	identity := step.Name
	if identity == "" {
		identity = strings.ToUpper(step.Method) + " " + step.URL
	}
	return &RequestDef{
		Name:    step.Name,
		Method:  step.Method,
		URL:     step.URL,
		Headers: step.Headers,
		Body:    step.Body,
		Auth:    step.Auth,
	}, identity, nil
}

func (e *Executor) buildRequest(def *RequestDef, resolver *vars.Resolver) *httpx.Request {
	method := strings.ToUpper(def.Method)
	if method == "" {
		method = "GET"
	}

	req := httpx.NewRequest(method, resolver.Interpolate(def.URL))
	for k, v := range resolver.InterpolateMap(def.Headers) {
		req.SetHeader(k, v)
	}

	switch body := def.Body.(type) {
	case nil:
	case string:
		req.SetBody(resolver.Interpolate(body))
	default:
		resolved := resolver.InterpolateValue(body)
		if data, err := json.Marshal(resolved); err == nil {
			req.SetBody(string(data))
			if req.Headers["Content-Type"] == "" {
				req.SetHeader("Content-Type", "application/json")
			}
		}
	}

	req.Auth = e.resolveAuth(def.Auth, resolver)
	return req
}

func (e *Executor) resolveAuth(ref string, resolver *vars.Resolver) *httpx.Auth {
	if ref == "" || e.creds == nil {
		return nil
	}
	auth, err := e.creds.ResolveAuth(ref)
	if err != nil || auth == nil {
		if e.warnFunc != nil {
			e.warnFunc("auth reference %q not found, sending without auth", ref)
		}
		return nil
	}
	// Credential fields may themselves contain placeholders.
	resolved := *auth
	resolved.Token = resolver.Interpolate(auth.Token)
	resolved.Username = resolver.Interpolate(auth.Username)
	resolved.Password = resolver.Interpolate(auth.Password)
	resolved.Key = resolver.Interpolate(auth.Key)
	resolved.Value = resolver.Interpolate(auth.Value)
	return &resolved
}

// responseSnapshot exposes the response to dot-path extraction as a
// plain value: status, statusText, headers, parsed body, timing, size.
func responseSnapshot(resp *httpx.Response) map[string]any {
	return map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
		"headers":    resp.Headers,
		"body":       extract.JSONValue(resp.Body),
		"durationMs": resp.DurationMs(),
		"sizeBytes":  resp.SizeBytes(),
	}
}

func mergeExtract(fromRequest, fromStep map[string]string) map[string]string {
	if len(fromRequest) == 0 {
		return fromStep
	}
	merged := make(map[string]string, len(fromRequest)+len(fromStep))
	for k, v := range fromRequest {
		merged[k] = v
	}
	for k, v := range fromStep {
		merged[k] = v
	}
	return merged
}

// sleepCtx waits for d unless the context is done first. Returns false
// when the wait was cut short.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
