// Package httpx holds the JSON response envelope shared by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/nxsg/chat-api/internal/apperr"
)

const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage wraps a plain confirmation in {"message": ...}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// WriteError maps err through the error taxonomy and writes {"error": ...}.
// Errors outside the taxonomy are logged and reported as an internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	} else {
		hlog.FromRequest(r).Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	WriteJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// DecodeJSON reads a single JSON object from the request body into dest.
func DecodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return apperr.New(apperr.ErrInvalidInput, "request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.ErrInvalidInput, "request body required")
		}
		return &apperr.Error{
			Kind:    apperr.ErrInvalidInput,
			Msg:     "invalid request body",
			Wrapped: fmt.Errorf("decode: %w", err),
		}
	}
	return nil
}

// PathParam returns the named chi URL parameter, percent-decoded. chi routes
// on RawPath whenever the client escaped more than net/url would (a "%2F" or
// "%21" in a chat name), and leaves those escapes in the parameter.
func PathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
