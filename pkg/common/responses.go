package common

import (
	"encoding/json"
	"net/http"

	apperrors "tripchat/pkg/errors"
)

// Envelope is the wire format every endpoint replies with. Successful
// responses carry Ok=true plus endpoint-specific fields merged in; failures
// carry Ok=false and an error string.
type Envelope map[string]interface{}

// RespondJSON sends a success envelope with extra payload fields
func RespondJSON(w http.ResponseWriter, status int, payload Envelope) {
	body := Envelope{"ok": true}
	for k, v := range payload {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// RespondError sends a failure envelope
func RespondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{"ok": false, "error": message})
}

// RespondAppError maps an application error onto the failure envelope,
// using the error's own HTTP status.
func RespondAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if appErr := apperrors.GetAppError(err); appErr != nil {
		message = appErr.Message
	}
	RespondError(w, status, message)
}

// ParseJSONBody parses a JSON request body with a size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(v)
}
