package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"auditdesk/internal/core"
	"auditdesk/pkg/domain"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeServiceError maps a service failure onto a status code.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var blocked domain.RuleViolationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &blocked):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"violations": blocked.Result.Violations,
		})
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeStrict reads a single JSON object into dst and rejects unknown
// fields.
func decodeStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid request body: trailing data")
	}
	return nil
}

// mutation is the response to a create or update.
type mutation[T any] struct {
	Data       T                `json:"data"`
	Violations []core.Violation `json:"violations,omitempty"`
}

// deletion acknowledges a delete.
type deletion struct {
	Success    bool             `json:"success"`
	Violations []core.Violation `json:"violations,omitempty"`
}
