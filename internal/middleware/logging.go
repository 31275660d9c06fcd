package middleware

import (
	"net/http"
	"runtime/debug"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	reqctx "logitrack/tracker/internal/context"
	"logitrack/tracker/internal/logging"
)

// Logging logs each incoming request at debug level. The admin token header
// is never logged.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Debug("HTTP request received",
			"request_id", reqctx.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"has_admin_token", r.Header.Get(constants.AdminTokenHeader) != "",
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// Recoverer turns a handler panic into a 500 JSON error.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.WithRequest(reqctx.GetRequestID(r.Context()), r.URL.Path).Errorw("Handler panic",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				common.RespondError(w, constants.MsgInternalServerError, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
