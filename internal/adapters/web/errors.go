package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"relief-ledger/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// serviceError maps domain error kinds onto HTTP statuses. Anything
// unrecognized is logged and becomes a 500 with the detail withheld from
// the client.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *core.ValidationError
		notFound     *core.NotFoundError
		dupItem      *core.DuplicateItemCodeError
		dupDept      *core.DuplicateDepartmentCodeError
		conflict     *core.DependencyConflictError
		insufficient *core.InsufficientStockError
		release      *core.InvalidReleaseError
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, r, validation.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &notFound):
		writeError(w, r, notFound.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &dupItem):
		writeError(w, r, dupItem.Error(), "DUPLICATE_ITEM_CODE", http.StatusConflict)
	case errors.As(err, &dupDept):
		writeError(w, r, dupDept.Error(), "DUPLICATE_DEPARTMENT_CODE", http.StatusConflict)
	case errors.As(err, &conflict):
		writeError(w, r, conflict.Error(), "DEPENDENCY_CONFLICT", http.StatusConflict)
	case errors.As(err, &insufficient):
		writeError(w, r, insufficient.Error(), "INSUFFICIENT_STOCK", http.StatusUnprocessableEntity)
	case errors.As(err, &release):
		writeError(w, r, release.Error(), "INVALID_RELEASE", http.StatusUnprocessableEntity)
	default:
		h.logger.Error("unhandled service error",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
