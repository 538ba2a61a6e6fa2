package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/logger"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a domain error kind onto an HTTP status. Untyped errors
// are logged and surfaced as opaque 500s.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	code := "INTERNAL"
	message := "internal server error"

	switch errors.KindOf(err) {
	case errors.KindValidation:
		status = http.StatusBadRequest
	case errors.KindAuthorization:
		status = http.StatusForbidden
	case errors.KindStateConflict:
		status = http.StatusConflict
	case errors.KindInsufficientFunds:
		status = http.StatusPaymentRequired
	case errors.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
		return
	}

	var de *errors.DomainError
	if stderrors.As(err, &de) {
		code = de.Code
		message = de.Message
	} else {
		message = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Validation("invalid request body: %v", err)
	}
	return nil
}
