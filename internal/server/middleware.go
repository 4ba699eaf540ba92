package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	commonhttp "bitable-intake/internal/common/http"
	"bitable-intake/internal/common/logger"
	"bitable-intake/internal/common/observability"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// corsMiddleware sets the CORS headers on every response and answers
// preflight requests itself.
func corsMiddleware(allowOrigin string) func(http.Handler) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestIDMiddleware reuses the caller's X-Request-ID or mints one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(commonhttp.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(commonhttp.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(commonhttp.WithRequestID(r.Context(), id)))
	})
}

// accessLogMiddleware wraps the request in a span and logs its outcome.
func accessLogMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), "HTTP "+r.Method,
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", ww.Status()))
			observability.EndSpan(span, nil)

			log.Info("Request handled", map[string]interface{}{
				"requestId":  commonhttp.RequestID(ctx),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"durationMs": time.Since(started).Milliseconds(),
				"remoteAddr": r.RemoteAddr,
			})
		})
	}
}

// recoverMiddleware turns a panic into the uniform JSON 500.
func recoverMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Panic while handling request", map[string]interface{}{
					"requestId": commonhttp.RequestID(r.Context()),
					"panic":     fmt.Sprint(rec),
					"stack":     string(debug.Stack()),
				})
				commonhttp.WriteError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
