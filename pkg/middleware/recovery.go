package middleware

import (
	"net/http"
	"runtime/debug"
	apperrors "shubakar/pkg/errors"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.Error("Panic recovered",
						"request_id", RequestIDFrom(r.Context()),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"hijacked", wrapped.hijacked,
						"stack", string(debug.Stack()),
					)

					// A hijacked connection or a started response cannot take an
					// error envelope anymore.
					if wrapped.written {
						return
					}
					_ = httputil.WriteError(wrapped, apperrors.Internal("panic", nil))
				}
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
