package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/go-kyugo/productapi/response"
	"github.com/go-kyugo/productapi/validation"
)

type ctxKey string

const validatedBodyKey ctxKey = "productapi.validated_body"

// Router is a lightweight wrapper around a chi router exposing a small,
// fluent API for grouping routes and attaching body validation.
type Router struct {
	r *chi.Mux
}

// New creates a new Router instance.
func New() *Router {
	return &Router{r: chi.NewRouter()}
}

// Handler returns the underlying http.Handler to be used with ListenAndServe.
func (rt *Router) Handler() http.Handler {
	return rt.r
}

// Use applies middleware to every route. It must be called before any route
// is registered.
func (rt *Router) Use(mws ...func(http.Handler) http.Handler) {
	rt.r.Use(mws...)
}

// Group creates a route group rooted at the provided prefix.
func (rt *Router) Group(prefix string) *Group {
	return &Group{parent: rt.r, prefix: prefix}
}

// Group represents a group of routes under a common prefix.
type Group struct {
	parent chi.Router
	prefix string
}

// With returns a new Group that applies the provided middleware to all
// routes registered through it.
func (g *Group) With(mws ...func(http.Handler) http.Handler) *Group {
	return &Group{parent: g.parent.With(mws...), prefix: g.prefix}
}

func join(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return p
	}
	return path.Join(prefix, p)
}

// RouteChain configures a route after registration.
type RouteChain struct {
	validate bool
	bodyType reflect.Type
	mws      []func(http.Handler) http.Handler
}

// ValidateBody enables body validation for the route. If `dto` is nil the
// body is only checked to be valid JSON. Otherwise the body is decoded into
// a fresh instance of the dto's type and run through validation.Validate;
// the result is available to the handler through BodyAs.
func (rc *RouteChain) ValidateBody(dto interface{}) *RouteChain {
	rc.validate = true
	if dto != nil {
		rc.bodyType = reflect.TypeOf(dto)
	}
	return rc
}

// Middleware registers middleware for the route. It wraps both the
// validation step and the handler:
//
//	group.Post(...).ValidateBody(...).Middleware(mw1, mw2)
func (rc *RouteChain) Middleware(mws ...func(http.Handler) http.Handler) *RouteChain {
	rc.mws = append(rc.mws, mws...)
	return rc
}

func (rc *RouteChain) serve(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := http.Handler(h)
		if rc.validate {
			base = rc.validateBody(h)
		}
		for i := len(rc.mws) - 1; i >= 0; i-- {
			base = rc.mws[i](base)
		}
		base.ServeHTTP(w, r)
	})
}

func (rc *RouteChain) validateBody(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "INVALID_REQUEST", "BODY_TOO_LARGE", "Request body too large", nil)
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "INVALID_BODY", "Failed to read body", nil)
			return
		}
		if len(b) == 0 || !json.Valid(b) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "INVALID_BODY", "Invalid JSON body", nil)
			return
		}

		if rc.bodyType != nil {
			t := rc.bodyType
			if t.Kind() == reflect.Ptr {
				t = t.Elem()
			}
			v := reflect.New(t).Interface()
			if err := json.Unmarshal(b, v); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "INVALID_BODY", "Invalid JSON body", nil)
				return
			}
			if err := validation.Validate(v); err != nil {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "INVALID_ATTRIBUTES", "Validation failed", validation.FormatValidationErrors(err))
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), validatedBodyKey, v))
		}

		// restore body for downstream handlers
		r.Body = io.NopCloser(bytes.NewReader(b))
		h(w, r)
	})
}

func register(parent chi.Router, method, p string, h http.HandlerFunc, mws []func(http.Handler) http.Handler) *RouteChain {
	rc := &RouteChain{}
	parent.With(mws...).Method(strings.ToUpper(method), p, rc.serve(h))
	return rc
}

// Get registers a GET handler under the group's prefix.
func (g *Group) Get(p string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) *RouteChain {
	return register(g.parent, http.MethodGet, join(g.prefix, p), h, mws)
}

// Post registers a POST handler under the group's prefix.
func (g *Group) Post(p string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) *RouteChain {
	return register(g.parent, http.MethodPost, join(g.prefix, p), h, mws)
}

// Put registers a PUT handler under the group's prefix.
func (g *Group) Put(p string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) *RouteChain {
	return register(g.parent, http.MethodPut, join(g.prefix, p), h, mws)
}

// Delete registers a DELETE handler under the group's prefix.
func (g *Group) Delete(p string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) *RouteChain {
	return register(g.parent, http.MethodDelete, join(g.prefix, p), h, mws)
}

// Handle mounts a plain http.Handler, used for endpoints like /metrics.
func (g *Group) Handle(p string, h http.Handler) {
	g.parent.Handle(join(g.prefix, p), h)
}

// Param returns a URL parameter value by name. It delegates to chi.URLParam
// but keeps handlers free from importing chi directly.
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// BodyAs retrieves a previously-validated request body (set by ValidateBody)
// and attempts to return it as type T. The returned bool is false when the
// validated body is not present or cannot be asserted to T.
func BodyAs[T any](r *http.Request) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	v := r.Context().Value(validatedBodyKey)
	if v == nil {
		return zero, false
	}
	if vv, ok := v.(T); ok {
		return vv, true
	}
	// try pointer -> value conversion
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.Elem().IsValid() && rv.Elem().CanInterface() {
		if val, ok := rv.Elem().Interface().(T); ok {
			return val, true
		}
	}
	return zero, false
}
