package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"relief-ledger/internal/app"
	"relief-ledger/internal/core"
)

// apiListTransactions handles GET /api/transactions.
// Query: type, status, department_id, item_code, overdue, page, per_page.
// view=pending and view=overdue return the dedicated work queues instead.
func (h *Handler) apiListTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("view") {
	case "pending":
		result, err := h.svc.PendingTransactions(r.Context())
		if err != nil {
			h.serviceError(w, r, err)
			return
		}
		writeJSON(w, result)
		return
	case "overdue":
		result, err := h.svc.OverdueTransactions(r.Context())
		if err != nil {
			h.serviceError(w, r, err)
			return
		}
		writeJSON(w, result)
		return
	}

	filter := core.TransactionFilter{
		Type:         core.TransactionType(r.URL.Query().Get("type")),
		Status:       core.TransactionStatus(r.URL.Query().Get("status")),
		DepartmentID: queryInt(r, "department_id", 0),
		ItemCode:     r.URL.Query().Get("item_code"),
		Overdue:      queryBool(r, "overdue"),
		Page:         queryInt(r, "page", 1),
		PerPage:      queryInt(r, "per_page", 0),
	}

	result, err := h.svc.ListTransactions(r.Context(), filter)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiRecordTransaction handles POST /api/transactions.
// Body: { type, item_code, quantity, reason, inventory_id?, from?, to?,
// status?, expected_delivery?, notes? } where from/to are
// { department_id?, warehouse? }.
func (h *Handler) apiRecordTransaction(w http.ResponseWriter, r *http.Request) {
	type endpoint struct {
		DepartmentID *int   `json:"department_id"`
		Warehouse    string `json:"warehouse"`
	}
	var body struct {
		Type             string   `json:"type"`
		InventoryID      *int     `json:"inventory_id"`
		ItemCode         string   `json:"item_code"`
		Quantity         int      `json:"quantity"`
		From             endpoint `json:"from"`
		To               endpoint `json:"to"`
		Reason           string   `json:"reason"`
		Status           string   `json:"status"`
		ExpectedDelivery string   `json:"expected_delivery"`
		Notes            string   `json:"notes"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.RecordTransaction(r.Context(), app.RecordTransactionRequest{
		Type:             body.Type,
		InventoryID:      body.InventoryID,
		ItemCode:         body.ItemCode,
		Quantity:         body.Quantity,
		From:             app.EndpointInput{DepartmentID: body.From.DepartmentID, Warehouse: body.From.Warehouse},
		To:               app.EndpointInput{DepartmentID: body.To.DepartmentID, Warehouse: body.To.Warehouse},
		Reason:           body.Reason,
		Status:           body.Status,
		ExpectedDelivery: body.ExpectedDelivery,
		Notes:            body.Notes,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Transaction)
}

// apiGetTransaction handles GET /api/transactions/{ref}.
func (h *Handler) apiGetTransaction(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetTransaction(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Transaction)
}

// apiSetTransactionStatus handles POST /api/transactions/{ref}/status.
// Body: { status }
func (h *Handler) apiSetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Status == "" {
		writeError(w, r, "status is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SetTransactionStatus(r.Context(), chi.URLParam(r, "ref"), body.Status)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Transaction)
}
