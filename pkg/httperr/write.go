package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError renders err as a JSON error response. Internal errors omit the
// description so storage and wiring details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != CodeInternal {
		var e *Error
		if errors.As(err, &e) {
			body.ErrorDescription = e.Message
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(code))
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
