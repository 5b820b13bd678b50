package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

var (
	CorsAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	CorsAllowedHeaders = []string{"Content-Type", "Authorization", "x-api-key"}
)

const CorsMaxAge = 86400

// corsPolicy admits every origin. rs/cors validates preflights and decorates
// actual responses; accepted preflights are then answered with the complete
// method and header lists instead of echoing the requested ones. Header names
// keep their listed spelling.
func corsPolicy(logger *zap.Logger) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     CorsAllowedMethods,
		AllowedHeaders:     CorsAllowedHeaders,
		MaxAge:             CorsMaxAge,
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		return c.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if !isPreflight(r) {
				if h.Get("Access-Control-Allow-Origin") != "" {
					h.Set("Access-Control-Expose-Headers", strings.Join(CorsAllowedHeaders, ", "))
				}
				next.ServeHTTP(w, r)
				return
			}

			if h.Get("Access-Control-Allow-Origin") == "" {
				logger.Debug("rejected CORS preflight",
					zap.String("origin", r.Header.Get("Origin")),
					zap.String("method", r.Header.Get("Access-Control-Request-Method")),
					zap.String("headers", r.Header.Get("Access-Control-Request-Headers")))
				http.Error(w, "Disallowed CORS request", http.StatusBadRequest)
				return
			}
			h.Set("Access-Control-Allow-Methods", strings.Join(CorsAllowedMethods, ", "))
			h.Set("Access-Control-Allow-Headers", strings.Join(CorsAllowedHeaders, ", "))
			h.Set("Access-Control-Max-Age", strconv.Itoa(CorsMaxAge))
			w.WriteHeader(http.StatusOK)
		}))
	}
}

// isPreflight matches CORS preflights only; an OPTIONS request without an
// Origin goes to the route like any other request.
func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}
