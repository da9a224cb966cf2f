package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ledger-service/internal/auth"
	"ledger-service/internal/logger"
	"ledger-service/internal/repository"
)

var validate = validator.New()

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, apiError{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// WriteError is used by the router middleware for auth failures.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message, nil)
}

// decodeJSON reads a single JSON object and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": "extra data after json"})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
			writeError(w, http.StatusBadRequest, "invalid_input", "request validation failed", fields)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return false
	}

	return true
}

func parseID(w http.ResponseWriter, r *http.Request, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil || id == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+what+" id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps ledger errors onto HTTP statuses. Anything unknown
// is logged and reported as a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error(), nil)
	case errors.Is(err, repository.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "empty_cart", err.Error(), nil)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err.Error(), nil)
	case errors.Is(err, repository.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error(), nil)
	case errors.Is(err, repository.ErrInsufficientPayment):
		writeError(w, http.StatusConflict, "insufficient_payment", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	default:
		requestLogger(r).Error().Err(err).Str("action", action).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to "+action, nil)
	}
}

func requestLogger(r *http.Request) *zerolog.Logger {
	l := logger.WithComponent("api")
	if s, ok := SessionFrom(r.Context()); ok {
		l = l.With().Str("user", s.Username).Logger()
	}
	return &l
}
