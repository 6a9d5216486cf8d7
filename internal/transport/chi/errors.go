package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/findex/internal/domain"
)

// Error codes of the JSON error body.
const (
	CodeBadRequest        = "bad_request"
	CodeUnauthorized      = "unauthorized"
	CodeValidationFailed  = "validation_failed"
	CodeNotFound          = "not_found"
	CodeAlreadyExists     = "already_exists"
	CodeMethodNotAllowed  = "method_not_allowed"
	CodeRemoteError       = "search_engine_error"
	CodeRemoteUnavailable = "search_engine_unavailable"
	CodeTaskFailed        = "task_failed"
	CodeTaskTimeout       = "task_timeout"
	CodeNotImplemented    = "not_implemented"
	CodeInternalError     = "internal_error"
)

const engineInvalidRequest = "invalid_request"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	EngineCode string `json:"engine_code,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
		remoteErrorHandler,
		sentinelHandler(domain.ErrRemoteAPI, http.StatusBadGateway, CodeRemoteError),
		sentinelHandler(domain.ErrRemoteUnavailable, http.StatusServiceUnavailable, CodeRemoteUnavailable),
		sentinelHandler(domain.ErrTaskFailed, http.StatusUnprocessableEntity, CodeTaskFailed),
		sentinelHandler(domain.ErrTaskTimeout, http.StatusGatewayTimeout, CodeTaskTimeout),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrRemoteAPI,
		domain.ErrRemoteUnavailable,
		domain.ErrTaskFailed,
		domain.ErrTaskTimeout,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler exposes the full message: it only describes caller input.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	return true
}

// remoteErrorHandler handles engine error bodies, passing the engine code through.
// Requests the engine rejected as invalid are the caller's fault.
func remoteErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	var re *domain.RemoteError
	if !errors.As(err, &re) {
		return false
	}
	if re.Type == engineInvalidRequest {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:       CodeValidationFailed,
			Message:    re.Message,
			EngineCode: re.Code,
		})
		return true
	}
	writeJSON(w, http.StatusBadGateway, ErrorResponse{
		Code:       CodeRemoteError,
		Message:    msg,
		EngineCode: re.Code,
	})
	return true
}
