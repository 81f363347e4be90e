package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hal9000y/mail-triage/internal/logger"
)

// httpError carries the status and client-facing detail for a failed request.
type httpError struct {
	status int
	detail string
	err    error
}

func (e *httpError) Error() string {
	if e.err != nil {
		return e.detail + ": " + e.err.Error()
	}
	return e.detail
}

func (e *httpError) Unwrap() error {
	return e.err
}

func badRequest(detail string) error {
	return &httpError{status: http.StatusBadRequest, detail: detail}
}

func unauthorized(detail string) error {
	return &httpError{status: http.StatusUnauthorized, detail: detail}
}

// internal reports an upstream failure as "<what>: <err>".
func internal(what string, err error) error {
	return &httpError{status: http.StatusInternalServerError, detail: what, err: err}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts an error-returning handler. Errors that are not httpError
// become a bare 500.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var he *httpError
		if !errors.As(err, &he) {
			he = &httpError{status: http.StatusInternalServerError, detail: "Internal server error", err: err}
		}

		log := logger.WithRequest(r.Context(), s.log)
		if he.status >= http.StatusInternalServerError {
			log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		} else {
			log.Info("request rejected", zap.String("path", r.URL.Path), zap.Int("status", he.status), zap.String("detail", he.detail))
		}

		writeJSON(w, he.status, errorResponse{Detail: he.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON request body of at most maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("Invalid JSON body")
	}
	return nil
}
