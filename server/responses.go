package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jrsteele09/go-ssi-auth-server/correlation"
	"github.com/jrsteele09/go-ssi-auth-server/ssi"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type okMessage struct {
	Message string `json:"message"`
}

var okResponse = okMessage{Message: "ok"}

// errorMessage and errorEnvelope mirror the body shape existing Strapi clients parse
type errorMessage struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

type errorEnvelope struct {
	Messages []errorMessage `json:"messages"`
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    any    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeBadRequest(w http.ResponseWriter, e *ssi.Error) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		StatusCode: http.StatusBadRequest,
		Error:      http.StatusText(http.StatusBadRequest),
		Message: []errorEnvelope{{Messages: []errorMessage{{
			ID:      e.ID,
			Message: e.Message,
			Field:   e.Field,
		}}}},
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{
		StatusCode: http.StatusUnauthorized,
		Error:      http.StatusText(http.StatusUnauthorized),
		Message:    message,
	})
}

func writeServiceUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorBody{
		StatusCode: http.StatusServiceUnavailable,
		Error:      http.StatusText(http.StatusServiceUnavailable),
		Message:    "Correlation store unavailable",
	})
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{
		StatusCode: http.StatusInternalServerError,
		Error:      http.StatusText(http.StatusInternalServerError),
		Message:    "An internal server error occurred",
	})
}

// writeError maps service errors to Strapi style responses
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := ssi.AsError(err); ok {
		writeBadRequest(w, e)
		return
	}
	if errors.Is(err, correlation.ErrStoreUnavailable) {
		s.logError(r.Method, r.URL.Path, err.Error())
		writeServiceUnavailable(w)
		return
	}
	s.logError(r.Method, r.URL.Path, err.Error())
	writeInternalError(w)
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
