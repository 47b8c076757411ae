package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/handscript/pkg/errors"
)

// APIError is the body of a failed request.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps an APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(w http.ResponseWriter, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = errors.UserMessage(err)
	}
	respondJSON(w, status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// respondErr maps a pipeline error to its status and code.
func respondErr(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", err)
		return
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	respondError(w, statusFor(code), string(code), err)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle,
		errors.ErrCodeInvalidPlan, errors.ErrCodeInvalidSeed:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeExtraction:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeAIUnavailable, errors.ErrCodeNetwork:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondOK(w http.ResponseWriter, payload any) {
	respondJSON(w, http.StatusOK, payload)
}
