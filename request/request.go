package request

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/go-kyugo/productapi/router"
)

// Request is a small wrapper around *http.Request providing convenience
// methods used by handlers in the codebase.
type Request struct {
	R *http.Request
}

// New wraps an *http.Request.
func New(r *http.Request) *Request {
	return &Request{R: r}
}

// Param returns a URL parameter value by name.
func (r *Request) Param(name string) string {
	if r == nil || r.R == nil {
		return ""
	}
	return chi.URLParam(r.R, name)
}

// IntParam parses a URL parameter as an int.
func (r *Request) IntParam(name string) (int, error) {
	return strconv.Atoi(r.Param(name))
}

// BodyAsRequest is a generic helper that attempts to retrieve the validated
// body previously stored by the router's validation step and assert it to T.
func BodyAsRequest[T any](r *Request) (T, bool) {
	var zero T
	if r == nil || r.R == nil {
		return zero, false
	}
	return router.BodyAs[T](r.R)
}

// Context returns the request context.
func (r *Request) Context() context.Context {
	return r.R.Context()
}
