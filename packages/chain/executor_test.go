package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-mendez/restflow/packages/httpx"
)

type fakeRequestStore struct {
	requests map[string]*RequestDef
}

func (s *fakeRequestStore) RequestByName(collection, name string) (*RequestDef, error) {
	if req, ok := s.requests[name]; ok {
		return req, nil
	}
	return nil, fmt.Errorf("request not found: %s", name)
}

type fakeCredentialStore struct {
	auths map[string]*httpx.Auth
}

func (s *fakeCredentialStore) ResolveAuth(name string) (*httpx.Auth, error) {
	if auth, ok := s.auths[name]; ok {
		return auth, nil
	}
	return nil, fmt.Errorf("auth not found: %s", name)
}

type httpExecutorFunc func(ctx context.Context, req *httpx.Request) (*httpx.Response, error)

func (f httpExecutorFunc) Do(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
	return f(ctx, req)
}

func jsonResponse(status int, body string) *httpx.Response {
	return &httpx.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d status", status),
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
		Duration:   5 * time.Millisecond,
	}
}

func newTestExecutor(client HTTPExecutor, opts ...Option) *Executor {
	return NewExecutor(&fakeRequestStore{}, &fakeCredentialStore{}, client, opts...)
}

func TestRunPropagatesExtractedContext(t *testing.T) {
	var urls []string
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		urls = append(urls, req.BuildURL())
		if len(urls) == 1 {
			return jsonResponse(200, `{"access_token": "abc123"}`), nil
		}
		return jsonResponse(200, `{}`), nil
	})

	executor := newTestExecutor(client,
		WithGlobalVars(map[string]any{"base": "https://api.example.com"}),
	)

	steps := []Step{
		{Name: "login", Method: "POST", URL: "{{base}}/login",
			Extract: map[string]string{"token": "body.access_token"}},
		{Name: "me", Method: "GET", URL: "{{base}}/{{token}}"},
	}

	result := executor.Run(context.Background(), "", steps, false)

	require.Len(t, result.Results, 2)
	assert.True(t, result.Success)
	assert.Equal(t, "abc123", result.Context["token"])
	require.Len(t, urls, 2)
	assert.Contains(t, urls[1], "abc123")
}

func TestRunStopOnErrorAborts(t *testing.T) {
	var calls int
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		calls++
		if calls == 2 {
			return jsonResponse(500, `{"error": "boom"}`), nil
		}
		return jsonResponse(200, `{}`), nil
	})

	steps := []Step{
		{Name: "one", Method: "GET", URL: "https://api.example.com/1"},
		{Name: "two", Method: "GET", URL: "https://api.example.com/2"},
		{Name: "three", Method: "GET", URL: "https://api.example.com/3"},
	}

	result := newTestExecutor(client).Run(context.Background(), "", steps, true)

	assert.False(t, result.Success)
	require.Len(t, result.Results, 2)
	assert.Equal(t, 2, calls, "step three must never run")

	aborted := result.Results[1]
	assert.True(t, aborted.Aborted)
	assert.Equal(t, ErrHTTPStatus, aborted.ErrKind)
	assert.Equal(t, 500, aborted.Status)
	// The response is still available on the aborted step.
	require.NotNil(t, aborted.Response)
	assert.Contains(t, aborted.Response.BodyString(), "boom")
}

func TestRunContinuesWithoutStopOnError(t *testing.T) {
	var calls int
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		calls++
		if calls == 2 {
			return jsonResponse(500, `{}`), nil
		}
		return jsonResponse(200, `{}`), nil
	})

	steps := []Step{
		{Name: "one", Method: "GET", URL: "https://api.example.com/1"},
		{Name: "two", Method: "GET", URL: "https://api.example.com/2"},
		{Name: "three", Method: "GET", URL: "https://api.example.com/3"},
	}

	result := newTestExecutor(client).Run(context.Background(), "", steps, false)

	// Success stays true: only an explicit abort flips it. The failed
	// step is still visible through Failed and the step records.
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)
	assert.Equal(t, ErrHTTPStatus, result.Results[1].ErrKind)
	assert.False(t, result.Results[1].Aborted)
}

func TestRunRequestNotFound(t *testing.T) {
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		return jsonResponse(200, `{}`), nil
	})

	steps := []Step{
		{Request: "missing"},
		{Name: "after", Method: "GET", URL: "https://api.example.com/after"},
	}

	t.Run("skips the step without stop-on-error", func(t *testing.T) {
		result := newTestExecutor(client).Run(context.Background(), "", steps, false)

		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Results, 2)
		assert.Equal(t, ErrRequestNotFound, result.Results[0].ErrKind)
		assert.Equal(t, "missing", result.Results[0].Request)
		assert.Empty(t, result.Context)
	})

	t.Run("aborts with stop-on-error", func(t *testing.T) {
		result := newTestExecutor(client).Run(context.Background(), "", steps, true)

		assert.False(t, result.Success)
		require.Len(t, result.Results, 1)
		assert.True(t, result.Results[0].Aborted)
	})
}

func TestRunTransportFailure(t *testing.T) {
	var calls int
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return jsonResponse(200, `{}`), nil
	})

	steps := []Step{
		{Name: "down", Method: "GET", URL: "https://api.example.com/down",
			Extract: map[string]string{"id": "body.id"}},
		{Name: "up", Method: "GET", URL: "https://api.example.com/up"},
	}

	result := newTestExecutor(client).Run(context.Background(), "", steps, false)

	assert.True(t, result.Success)
	require.Len(t, result.Results, 2)
	assert.Equal(t, ErrTransportFailure, result.Results[0].ErrKind)
	assert.Nil(t, result.Results[0].Response)
	// The failed step contributed nothing to the context.
	assert.Empty(t, result.Context)
	assert.Equal(t, ErrNone, result.Results[1].ErrKind)
}

func TestRunSavedRequestWithStepOverrides(t *testing.T) {
	var captured *httpx.Request
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		captured = req
		return jsonResponse(200, `{"id": 42}`), nil
	})

	requests := &fakeRequestStore{requests: map[string]*RequestDef{
		"createUser": {
			Name:    "createUser",
			Method:  "post",
			URL:     "{{base}}/users/{{user_id}}",
			Headers: map[string]string{"X-Env": "{{env_name}}"},
			Extract: map[string]string{"created_id": "body.id"},
		},
	}}

	executor := NewExecutor(requests, &fakeCredentialStore{}, client,
		WithGlobalVars(map[string]any{"base": "https://api.example.com", "user_id": "global"}),
		WithEnvVars(map[string]any{"env_name": "staging"}),
	)

	steps := []Step{
		{Request: "createUser", Use: map[string]any{"user_id": "override"}},
	}

	result := executor.Run(context.Background(), "", steps, false)

	require.NotNil(t, captured)
	assert.Equal(t, "POST", captured.Method)
	assert.Equal(t, "https://api.example.com/users/override", captured.URL)
	assert.Equal(t, "staging", captured.Headers["X-Env"])
	assert.Equal(t, float64(42), result.Context["created_id"])
}

func TestRunStepExtractOverridesRequestExtract(t *testing.T) {
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		return jsonResponse(200, `{"id": 1, "name": "ada"}`), nil
	})

	requests := &fakeRequestStore{requests: map[string]*RequestDef{
		"getUser": {
			Name:    "getUser",
			Method:  "GET",
			URL:     "https://api.example.com/user",
			Extract: map[string]string{"value": "body.id"},
		},
	}}

	executor := NewExecutor(requests, &fakeCredentialStore{}, client)
	steps := []Step{
		{Request: "getUser", Extract: map[string]string{"value": "body.name"}},
	}

	result := executor.Run(context.Background(), "", steps, false)

	assert.Equal(t, "ada", result.Context["value"])
}

func TestRunSkipsNullExtractions(t *testing.T) {
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		return jsonResponse(200, `{"present": "yes"}`), nil
	})

	steps := []Step{
		{Name: "only", Method: "GET", URL: "https://api.example.com/x",
			Extract: map[string]string{
				"present": "body.present",
				"absent":  "body.nope.deeper",
			}},
	}

	result := newTestExecutor(client).Run(context.Background(), "", steps, false)

	assert.True(t, result.Success)
	assert.Equal(t, "yes", result.Context["present"])
	_, ok := result.Context["absent"]
	assert.False(t, ok)
	assert.Equal(t, ErrNone, result.Results[0].ErrKind)
}

func TestRunExtractionOnErrorStatus(t *testing.T) {
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		return jsonResponse(422, `{"error_code": "DUPLICATE"}`), nil
	})

	steps := []Step{
		{Name: "create", Method: "POST", URL: "https://api.example.com/x",
			Extract: map[string]string{"code": "body.error_code"}},
	}

	t.Run("error responses still extract when continuing", func(t *testing.T) {
		result := newTestExecutor(client).Run(context.Background(), "", steps, false)

		assert.Equal(t, ErrHTTPStatus, result.Results[0].ErrKind)
		assert.Equal(t, "DUPLICATE", result.Context["code"])
	})

	t.Run("an aborting step stops before extraction", func(t *testing.T) {
		result := newTestExecutor(client).Run(context.Background(), "", steps, true)

		assert.False(t, result.Success)
		assert.Empty(t, result.Context)
	})
}

func TestRunJSONBodyInterpolation(t *testing.T) {
	var captured *httpx.Request
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		captured = req
		return jsonResponse(200, `{}`), nil
	})

	executor := newTestExecutor(client, WithGlobalVars(map[string]any{"user": "ada"}))
	steps := []Step{
		{Name: "create", Method: "POST", URL: "https://api.example.com/users",
			Body: map[string]any{"name": "{{user}}", "active": true}},
	}

	executor.Run(context.Background(), "", steps, false)

	require.NotNil(t, captured)
	assert.JSONEq(t, `{"name": "ada", "active": true}`, captured.Body)
	assert.Equal(t, "application/json", captured.Headers["Content-Type"])
}

func TestRunAuthResolution(t *testing.T) {
	var captured *httpx.Request
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		captured = req
		return jsonResponse(200, `{}`), nil
	})

	creds := &fakeCredentialStore{auths: map[string]*httpx.Auth{
		"api-token": {Kind: httpx.AuthBearer, Token: "{{secret}}"},
	}}

	executor := NewExecutor(&fakeRequestStore{}, creds, client,
		WithGlobalVars(map[string]any{"secret": "s3cr3t"}),
	)

	steps := []Step{
		{Name: "call", Method: "GET", URL: "https://api.example.com/x", Auth: "api-token"},
	}

	executor.Run(context.Background(), "", steps, false)

	require.NotNil(t, captured)
	require.NotNil(t, captured.Auth)
	assert.Equal(t, httpx.AuthBearer, captured.Auth.Kind)
	assert.Equal(t, "s3cr3t", captured.Auth.Token)
}

func TestRunInterStepDelay(t *testing.T) {
	var calls []time.Time
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		calls = append(calls, time.Now())
		return jsonResponse(200, `{}`), nil
	})

	steps := []Step{
		{Name: "one", Method: "GET", URL: "https://api.example.com/1", DelayMs: 50},
		{Name: "two", Method: "GET", URL: "https://api.example.com/2"},
	}

	newTestExecutor(client).Run(context.Background(), "", steps, false)

	require.Len(t, calls, 2)
	assert.GreaterOrEqual(t, calls[1].Sub(calls[0]), 50*time.Millisecond)
}

func TestRunIndependentContextsAcrossRuns(t *testing.T) {
	client := httpExecutorFunc(func(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
		return jsonResponse(200, `{"n": 1}`), nil
	})

	executor := newTestExecutor(client)
	steps := []Step{
		{Name: "s", Method: "GET", URL: "https://api.example.com/x",
			Extract: map[string]string{"n": "body.n"}},
	}

	first := executor.Run(context.Background(), "", steps, false)
	second := executor.Run(context.Background(), "", steps, false)

	first.Context["n"] = "mutated"
	assert.Equal(t, float64(1), second.Context["n"])
}
