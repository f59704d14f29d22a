package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"relief-ledger/internal/core"
)

// apiListDepartments handles GET /api/departments.
func (h *Handler) apiListDepartments(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListDepartments(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetDepartment handles GET /api/departments/{ref}.
func (h *Handler) apiGetDepartment(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetDepartment(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Department)
}

// apiCreateDepartment handles POST /api/departments.
// Body: { code, name, description?, contact_person?, phone? }
func (h *Handler) apiCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code          string `json:"code"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		ContactPerson string `json:"contact_person"`
		Phone         string `json:"phone"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateDepartment(r.Context(), core.DepartmentInput{
		Code:          body.Code,
		Name:          body.Name,
		Description:   body.Description,
		ContactPerson: body.ContactPerson,
		Phone:         body.Phone,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Department)
}

// apiDeleteDepartment handles DELETE /api/departments/{ref}.
// Departments are deleted by numeric id only.
func (h *Handler) apiDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, "invalid department ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteDepartment(r.Context(), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
