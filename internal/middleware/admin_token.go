package middleware

import (
	"crypto/subtle"
	"net/http"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	reqctx "logitrack/tracker/internal/context"
	"logitrack/tracker/internal/logging"
)

// AdminTokenMiddleware rejects requests whose X-Admin-Token header does not
// equal the configured secret, before any handler work runs.
func AdminTokenMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(constants.AdminTokenHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				logging.Warn("Admin token rejected",
					"request_id", reqctx.GetRequestID(r.Context()),
					"path", r.URL.Path,
					"token_present", got != "",
				)
				common.RespondError(w, constants.MsgUnauthorized, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
