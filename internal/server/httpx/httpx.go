// Package httpx holds small JSON request/response helpers shared by HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrMalformedBody is returned by DecodeJSON for unparseable request bodies.
var ErrMalformedBody = errors.New("malformed request body")

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// RespondError writes a JSON error body {"detail": ...} with the given status.
// 401 responses carry a WWW-Authenticate challenge per RFC 6750.
func RespondError(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	RespondJSON(w, status, map[string]string{"detail": detail})
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrMalformedBody
	}
	return nil
}
