package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ContentType is the JSON:API media type.
const ContentType = "application/vnd.api+json"

// UseContentNegotiation provides JSON:API content negotiation
// middleware. It returns 415 Unsupported Media Type for an invalid
// Content-Type on requests with a body and 406 Not Acceptable for
// Accept headers that exclude the JSON:API media type.
func UseContentNegotiation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && contentType != ContentType {
				http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
				return
			}
		}

		accept := r.Header.Get("Accept")
		if accept != "" && accept != "*/*" && !strings.Contains(accept, ContentType) {
			http.Error(w, "Not Acceptable", http.StatusNotAcceptable)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UseRequestContextResolver creates middleware that resolves request
// context information using the provided resolver and makes it
// available to downstream handlers.
func UseRequestContextResolver(next http.Handler, resolver RequestContextResolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, err := resolver.ResolveRequestContext(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		ctx := SetRequestContext(r.Context(), rc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UseRequestLogging creates middleware that logs each request with
// method, path, status, and duration fields.
func UseRequestLogging(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(start),
		}).Info("request handled")
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
