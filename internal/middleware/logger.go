// Package middleware provides reusable HTTP middleware for the API server.
package middleware

import (
	"log"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Logger logs method, path, status code, response size and duration for every request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			// nothing written; net/http answers 200
			status = http.StatusOK
		}
		log.Printf("%s %s %d %dB %s reqid=%s",
			r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start), chiMiddleware.GetReqID(r.Context()))
	})
}
