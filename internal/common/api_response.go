package common

import (
	"encoding/json"
	"net/http"

	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/models/dtos/responses"
)

// RespondSuccess sends {ok:true, data}.
func RespondSuccess[T any](w http.ResponseWriter, data T, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}
	WriteJSON(w, code, responses.APIResponse[T]{OK: true, Data: &data})
}

// RespondError sends {ok:false, error}.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, responses.APIResponse[any]{OK: false, Error: message})
}

// WriteJSON marshals body and writes it to the HTTP response.
func WriteJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
