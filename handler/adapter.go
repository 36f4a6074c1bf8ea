package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/go-kyugo/productapi/logger"
	"github.com/go-kyugo/productapi/request"
	"github.com/go-kyugo/productapi/response"
)

// Func is a handler written against the wrapper types. A returned error is
// treated as unhandled and answered with a generic 500.
type Func func(*response.Writer, *request.Request) error

// Adapt converts a Func into a standard http.HandlerFunc. Errors are logged
// with their detail and never exposed to the client.
func Adapt(log *logger.Logger, h Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := response.NewWriter(w, r)
		req := request.New(r)
		if err := h(resp, req); err != nil {
			log.Error("unhandled request error", err, logger.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": middleware.GetReqID(r.Context()),
			})
			resp.InternalError(response.InternalErrorMessage)
		}
	}
}
