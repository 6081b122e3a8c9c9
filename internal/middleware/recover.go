package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/mediadrop/uploader/internal/response"
)

// Recover turns a panic in a downstream handler into the JSON 500 response
// so one failing request never takes the server down.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("panic: %v\n%s", rec, debug.Stack())
			response.InternalError(w, fmt.Errorf("%v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}
