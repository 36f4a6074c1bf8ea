package middleware

import (
	"net/http"
	"strings"

	"github.com/go-kyugo/productapi/config"
)

var (
	defaultMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultHeaders = []string{"Content-Type", "X-Request-ID"}
)

// CORS returns a middleware that applies CORS headers based on config.
// Preflight requests are answered with 204 and never reach the router.
func CORS(c config.CorsConfig) func(http.Handler) http.Handler {
	methods := c.AllowedMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}
	headers := c.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultHeaders
	}
	allowMethods := strings.Join(methods, ",")
	allowHeaders := strings.Join(headers, ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := allowedOrigin(c.AllowedOrigins, r.Header.Get("Origin"))
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or "" when
// the request origin is not allowed.
func allowedOrigin(allowed []string, origin string) string {
	if len(allowed) == 0 {
		return "*"
	}
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
