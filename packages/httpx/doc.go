// Package httpx is the HTTP executor boundary: it turns fully
// interpolated request definitions into wire requests and hands back
// response snapshots with timing. Transport failures (no response at
// all) surface as errors; HTTP error statuses are ordinary responses.
package httpx
