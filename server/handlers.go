package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-ssi-auth-server/ssi"
)

var errInvalidBody = &ssi.Error{
	Kind:    ssi.KindValidation,
	ID:      "Auth.form.error.request.invalid",
	Message: "Request body must be a JSON object.",
}

type bindSignUpBody struct {
	ConfirmationToken string `json:"confirmationToken"`
	ConnectionID      string `json:"connectionId"`
}

type resolveSignUpBody struct {
	DID               string          `json:"did"`
	ConfirmationToken string          `json:"confirmationToken"`
	Proof             json.RawMessage `json:"proof"`
}

type bindSignInBody struct {
	Challenge    string `json:"challenge"`
	ConnectionID string `json:"connectionId"`
}

type bindSignInResponse struct {
	Message   string `json:"message"`
	Challenge string `json:"challenge"`
}

type resolveSignInBody struct {
	DID       string          `json:"did"`
	Challenge string          `json:"challenge"`
	Proof     json.RawMessage `json:"proof"`
}

func (s *Server) SignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ssi.SignUpRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeBadRequest(w, errInvalidBody)
			return
		}

		result, err := s.deps.Service.SignUp(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// SSISignUpRequestHandler lets a connection wait for the outcome of a sign up.
// Only a store outage is reported to the caller.
func (s *Server) SSISignUpRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body bindSignUpBody
		if err := decodeBody(w, r, &body); err != nil || body.ConfirmationToken == "" {
			writeJSON(w, http.StatusOK, okResponse)
			return
		}

		if err := s.deps.Service.BindSignUp(r.Context(), body.ConfirmationToken, body.ConnectionID); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse)
	}
}

// SSISignUpHandler answers ok for unknown, stale and rejected tokens alike so
// callers cannot probe for them. Only a directory outage is reported.
func (s *Server) SSISignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body resolveSignUpBody
		if err := decodeBody(w, r, &body); err != nil {
			writeJSON(w, http.StatusOK, okResponse)
			return
		}

		if err := s.deps.Service.ResolveSignUp(r.Context(), ssi.ResolveSignUpRequest{
			ConfirmationToken: body.ConfirmationToken,
			DID:               body.DID,
			Proof:             body.Proof,
		}); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse)
	}
}

func (s *Server) SSISignInRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body bindSignInBody
		if err := decodeBody(w, r, &body); err != nil {
			writeBadRequest(w, errInvalidBody)
			return
		}

		challenge, err := s.deps.Service.BindSignIn(r.Context(), body.Challenge, body.ConnectionID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, bindSignInResponse{Message: okResponse.Message, Challenge: challenge})
	}
}

func (s *Server) SSISignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body resolveSignInBody
		if err := decodeBody(w, r, &body); err != nil {
			writeBadRequest(w, errInvalidBody)
			return
		}

		result, err := s.deps.Service.ResolveSignIn(r.Context(), ssi.ResolveSignInRequest{
			Challenge: body.Challenge,
			DID:       body.DID,
			Proof:     body.Proof,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) ProtectedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, okMessage{Message: "Protected Route"})
	}
}

func (s *Server) UnprotectedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, okMessage{Message: "Unprotected Route"})
	}
}

// PreflightHandler answers CORS preflight requests; the headers come from CorsMiddleware
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.deps.Store.Ping(r.Context()); err != nil {
			s.logError(r.Method, r.URL.Path, err.Error())
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Store: "down"})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: "up"})
	}
}
