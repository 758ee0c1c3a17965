// Package middleware provides HTTP middleware for the status server.
package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/skonghq/skong/internal/errors"
	"github.com/skonghq/skong/internal/observability"
)

// Recovery converts handler panics into a 500 response with the standard
// error envelope instead of killing the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.CLILogger.Error("Handler panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path))
				apperrors.WriteHTTPError(w, http.StatusInternalServerError,
					apperrors.CodeInternal, fmt.Sprintf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
