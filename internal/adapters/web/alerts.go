package web

import (
	"net/http"
)

// apiLowStock handles GET /api/alerts/low-stock?department_id=.
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.LowStockAlerts(r.Context(), queryInt(r, "department_id", 0))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCriticalStock handles GET /api/alerts/critical?department_id=.
func (h *Handler) apiCriticalStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CriticalStockAlerts(r.Context(), queryInt(r, "department_id", 0))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiExpiring handles GET /api/alerts/expiring?department_id=&days=.
func (h *Handler) apiExpiring(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ExpiringItems(r.Context(),
		queryInt(r, "department_id", 0), queryInt(r, "days", 0))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiExpired handles GET /api/alerts/expired?department_id=.
func (h *Handler) apiExpired(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ExpiredItems(r.Context(), queryInt(r, "department_id", 0))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
