package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dailysettle/internal/transport/http/api"
)

// DecodeJSON reads the body into dst and writes the failure response itself
// when it returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	return decodeJSON(w, r, dst, requestID, false)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose fields all have
// defaults: an empty body leaves dst untouched.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	return decodeJSON(w, r, dst, requestID, true)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string, allowEmpty bool) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}
	return true
}
