package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type noBody = bool

// toJson adapts a typed handler to an http.HandlerFunc that decodes the
// request body into Req (unless Req is noBody) and encodes Res as JSON.
// With checkAccept unset, the JSON response is sent whatever Accept says.
func toJson[Req any, Res any, Dat any](handler func(Req, Dat, *http.Request) (Res, error), data Dat, checkContentType, checkAccept bool, logger *zap.Logger) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); checkContentType && !isJSON(ct) {
			http.Error(w, "Unsupported media type: Expected Content-Type: application/json", http.StatusUnsupportedMediaType)
			return
		}
		if checkAccept && !acceptsJSON(r.Header.Get("Accept")) {
			http.Error(w, "Not acceptable: Expected Accept: application/json", http.StatusNotAcceptable)
			return
		}

		var requestObject Req
		if _, noBody := any(requestObject).(noBody); !noBody {
			if err := json.NewDecoder(r.Body).Decode(&requestObject); err != nil {
				logger.Warn("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "Could not parse request body.", http.StatusBadRequest)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")

		responseObject, err := handler(requestObject, data, r)
		if err != nil {
			errorMessage, err := json.Marshal(map[string]string{"error": err.Error()})
			if err != nil {
				http.Error(w, "Internal Error: could not marshal error message", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			w.Write(errorMessage)
			return
		}

		responseJson, err := json.Marshal(responseObject)
		if err != nil {
			http.Error(w, "Internal Error: could not marshal output data", http.StatusInternalServerError)
			return
		}
		w.Write(responseJson)
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// acceptsJSON reports whether an Accept header admits application/json.
// A missing header accepts anything.
func acceptsJSON(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "application/json", "application/*", "*/*":
			return true
		}
	}
	return false
}

// requestLogger writes one line per completed request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
