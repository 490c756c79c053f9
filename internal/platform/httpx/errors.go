package httpx

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stewardhq/steward/internal/shared"
)

const pgUniqueViolation = "23505"

// RespondError maps domain errors to HTTP status codes and the error
// envelope. Store-layer errors that carry no domain kind collapse into a
// generic 500 so raw driver messages never reach the caller.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, shared.ErrMissingToken):
		Error(w, http.StatusUnauthorized, "Token not provided")
	case errors.Is(err, shared.ErrInvalidToken):
		Error(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, messageOf(err, "Resource not found"))
	case errors.Is(err, shared.ErrAlreadyExists):
		Error(w, http.StatusConflict, messageOf(err, "Resource already exists"))
	case errors.Is(err, shared.ErrConflict):
		Error(w, http.StatusConflict, messageOf(err, "Resource conflict"))
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, messageOf(err, "Validation failed"))
	case isUniqueViolation(err):
		Error(w, http.StatusConflict, "Resource already exists")
	default:
		Error(w, http.StatusInternalServerError, "Unknown error")
	}
}

func messageOf(err error, fallback string) string {
	var domainErr *shared.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return fallback
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
