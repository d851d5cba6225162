package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"careerquest/internal/response"
	"careerquest/internal/services"

	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 envelope and logs the stack
func Recovery() func(http.Handler) http.Handler {
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

				GetRequestLogger(r.Context()).Error("Panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				response.QuickError(w, r, services.NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
