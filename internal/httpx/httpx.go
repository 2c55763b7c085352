// Package httpx holds the JSON response helpers shared by module handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ErrMalformedID is returned when a path identifier is not a UUID.
var ErrMalformedID = errors.New("malformed identifier")

// ErrorResponse is the body of every non-2xx JSON response. Redirect is set
// when the client should navigate away, e.g. after a malformed match link.
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// WriteMalformedID rejects a request whose identifier failed to parse and sends
// the client back to the home page.
func WriteMalformedID(w http.ResponseWriter, name string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:    "invalid " + name,
		Redirect: "/",
	})
}

// URLParamUUID parses the chi path parameter name as a UUID.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, ErrMalformedID
	}
	return id, nil
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
