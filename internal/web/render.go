package web

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"

	"github.com/anytrip/dashboard/internal/errors"
)

// errorBody is the JSON shape of every error response. Error carries the
// diagnostic for server-side failures only.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError maps err to its status and writes the error body.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	dErr := errors.As(err)
	if dErr.Status >= 500 {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	renderJSON(w, dErr.Status, errorBody{
		Message: dErr.Message,
		Error:   dErr.Diagnostic(),
	})
}

// decodeBody reads a JSON request body of at most limit bytes into v.
// An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.NewInvalidRequest("Request body too large")
		case stderrors.Is(err, io.EOF):
			return nil
		default:
			return errors.NewInvalidRequest("Invalid JSON body")
		}
	}
	if dec.More() {
		return errors.NewInvalidRequest("Invalid JSON body")
	}
	return nil
}
