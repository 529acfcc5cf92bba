package httpx

import (
	"encoding/base64"
	"net/url"
	"time"
)

type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string]string
	Body        string
	Timeout     time.Duration
	Auth        *Auth
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams[key] = value
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// ApplyAuth folds the request's auth material into headers or query
// parameters. AuthUnrecognized and AuthNone leave the request untouched.
func (r *Request) ApplyAuth() {
	if r.Auth == nil {
		return
	}
	switch r.Auth.Kind {
	case AuthBearer:
		if r.Auth.Token != "" {
			r.Headers["Authorization"] = "Bearer " + r.Auth.Token
		}
	case AuthBasic:
		creds := r.Auth.Username + ":" + r.Auth.Password
		encoded := base64.StdEncoding.EncodeToString([]byte(creds))
		r.Headers["Authorization"] = "Basic " + encoded
	case AuthAPIKeyHeader:
		if r.Auth.Key != "" {
			r.Headers[r.Auth.Key] = r.Auth.Value
		}
	case AuthAPIKeyQuery:
		if r.Auth.Key != "" {
			r.QueryParams[r.Auth.Key] = r.Auth.Value
		}
	}
}

// BuildURL returns the request URL with query parameters encoded in.
func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	q := u.Query()
	for k, v := range r.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
