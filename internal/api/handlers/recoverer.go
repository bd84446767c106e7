package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/hlog"
)

var errPanic = errors.New("handler panic")

// Recoverer turns a panic in a handler into a logged JSON 500.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic")
			writeError(w, r, fmt.Errorf("%w: %v", errPanic, rec))
		}()
		next.ServeHTTP(w, r)
	})
}
