package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"auditdesk/internal/adapters/reports"
	"auditdesk/internal/blob"
)

type exportRequest struct {
	Report      string   `json:"report"`
	Formats     []string `json:"formats"`
	RequestedBy string   `json:"requested_by"`
}

func (h *Handler) mountExports(r chi.Router) {
	r.Post("/", h.handleExportCreate)
	r.Get("/{id}", h.handleExportGet)
	r.Get("/{id}/artifacts", h.handleArtifactList)
	r.Get("/{id}/artifacts/{format}", h.handleArtifact)
}

func (h *Handler) handleExportCreate(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	formats := make([]reports.Format, 0, len(req.Formats))
	for _, f := range req.Formats {
		formats = append(formats, reports.Format(strings.ToLower(strings.TrimSpace(f))))
	}
	record, err := h.exports.EnqueueExport(r.Context(), reports.ExportInput{
		Report:      reports.Report(req.Report),
		Formats:     formats,
		RequestedBy: firstNonEmpty(req.RequestedBy, r.Header.Get("X-User-ID"), "anonymous"),
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, reports.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
}

func (h *Handler) handleExportGet(w http.ResponseWriter, r *http.Request) {
	record, ok := h.exports.GetExport(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}

func (h *Handler) handleArtifactList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.exports.ListArtifacts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, reports.ErrExportNotFound) {
			writeError(w, http.StatusNotFound, "export not found")
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	if infos == nil {
		infos = []blob.Info{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": infos})
}

func (h *Handler) handleArtifact(w http.ResponseWriter, r *http.Request) {
	format := reports.Format(chi.URLParam(r, "format"))
	artifact, body, err := h.exports.OpenArtifact(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		if errors.Is(err, reports.ErrExportNotFound) || errors.Is(err, blob.ErrNotFound) {
			writeError(w, http.StatusNotFound, "artifact not found")
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", artifact.ContentType)
	if artifact.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(artifact.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream artifact", zap.String("key", artifact.Key), zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
