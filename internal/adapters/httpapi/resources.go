package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"auditdesk/internal/core"
)

// resource binds the five data-access operations of one entity to routes.
type resource[T, P any] struct {
	list   func(context.Context) ([]T, error)
	get    func(context.Context, string) (T, error)
	create func(context.Context, T) (T, core.Result, error)
	update func(context.Context, string, P) (T, core.Result, error)
	remove func(context.Context, string) (core.Result, error)
}

func (res resource[T, P]) mount(r chi.Router, h *Handler) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		items, err := res.list(r.Context())
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var record T
		if err := decodeStrict(r, &record); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, result, err := res.create(r.Context(), record)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, mutation[T]{Data: created, Violations: result.Violations})
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		record, err := res.get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	})
	r.Patch("/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch P
		if err := decodeStrict(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, result, err := res.update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutation[T]{Data: updated, Violations: result.Violations})
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		result, err := res.remove(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deletion{Success: true, Violations: result.Violations})
	})
}

func (h *Handler) mountResources(r chi.Router) {
	svc := h.svc
	audits := resource[core.Audit, core.AuditPatch]{
		list:   svc.ListAudits,
		get:    svc.GetAudit,
		create: svc.CreateAudit,
		update: svc.UpdateAudit,
		remove: svc.DeleteAudit,
	}
	r.Route("/audits", func(r chi.Router) {
		r.Get("/template", h.handleAuditTemplate)
		audits.mount(r, h)
	})
	r.Route("/exceptions", resource[core.Exception, core.ExceptionPatch]{
		list:   svc.ListExceptions,
		get:    svc.GetException,
		create: svc.CreateException,
		update: svc.UpdateException,
		remove: svc.DeleteException,
	}.routes(h))
	r.Route("/kpis", resource[core.KPI, core.KPIPatch]{
		list:   svc.ListKPIs,
		get:    svc.GetKPI,
		create: svc.CreateKPI,
		update: svc.UpdateKPI,
		remove: svc.DeleteKPI,
	}.routes(h))
	r.Route("/stores", resource[core.Store, core.StorePatch]{
		list:   svc.ListStores,
		get:    svc.GetStore,
		create: svc.CreateStore,
		update: svc.UpdateStore,
		remove: svc.DeleteStore,
	}.routes(h))
}

func (res resource[T, P]) routes(h *Handler) func(chi.Router) {
	return func(r chi.Router) { res.mount(r, h) }
}

// handleAuditTemplate returns a blank audit carrying the default
// questionnaire, ready to be filled in and posted back.
func (h *Handler) handleAuditTemplate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, core.NewAuditDraft(q.Get("storeId"), q.Get("auditorId"), q.Get("scheduledDate")))
}
