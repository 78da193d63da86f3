package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mailvault/internal/common"
)

// APIError is the machine-readable error payload. Code is stable for
// client-side handling; Message is safe to show to a user.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the root object of every error reply.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// toHTTP maps service-layer sentinel errors to a status code and response
// body. Anything unrecognized becomes 500 with no detail leaked.
func toHTTP(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, errorResponse("validation_error", "missing or malformed input")
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, errorResponse("duplicate", "email already in use")
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse("invalid_credentials", "Invalid credentials")
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse("token_expired", "token expired")
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse("invalid_token", "invalid token")
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, errorResponse("not_found", "resource not found")
	default:
		return http.StatusInternalServerError, errorResponse("internal", "internal error")
	}
}

func errorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: message}}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := toHTTP(err)
	writeJSON(w, status, body)
}
