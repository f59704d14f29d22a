package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"relief-ledger/internal/app"
	"relief-ledger/internal/core"
)

// itemRef extracts the {ref} URL parameter (numeric id or item code).
func itemRef(r *http.Request) string {
	return chi.URLParam(r, "ref")
}

// queryInt parses an integer query parameter, returning def when absent
// or malformed.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// queryBool reports whether a query parameter is set to a truthy value.
func queryBool(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// apiCreateItem handles POST /api/items.
// Body: { item_code, name, unit, department_id, current_quantity?, minimum_quantity?,
// maximum_quantity?, description?, category?, brand?, model?, warehouse?, section?,
// rack?, shelf?, unit_price?, currency?, expiry_date?, status? }
func (h *Handler) apiCreateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemCode     string `json:"item_code"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		Category     string `json:"category"`
		Brand        string `json:"brand"`
		Model        string `json:"model"`
		Unit         string `json:"unit"`
		Current      int    `json:"current_quantity"`
		Minimum      int    `json:"minimum_quantity"`
		Maximum      int    `json:"maximum_quantity"`
		DepartmentID int    `json:"department_id"`
		Warehouse    string `json:"warehouse"`
		Section      string `json:"section"`
		Rack         string `json:"rack"`
		Shelf        string `json:"shelf"`
		UnitPrice    string `json:"unit_price"`
		Currency     string `json:"currency"`
		ExpiryDate   string `json:"expiry_date"`
		Status       string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	unitPrice := decimal.Zero
	if body.UnitPrice != "" {
		var err error
		unitPrice, err = decimal.NewFromString(body.UnitPrice)
		if err != nil {
			writeError(w, r, "invalid unit_price", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.CreateItem(r.Context(), app.CreateItemRequest{
		ItemCode:     body.ItemCode,
		Name:         body.Name,
		Description:  body.Description,
		Category:     body.Category,
		Brand:        body.Brand,
		Model:        body.Model,
		Unit:         body.Unit,
		Current:      body.Current,
		Minimum:      body.Minimum,
		Maximum:      body.Maximum,
		DepartmentID: body.DepartmentID,
		Warehouse:    body.Warehouse,
		Section:      body.Section,
		Rack:         body.Rack,
		Shelf:        body.Shelf,
		UnitPrice:    unitPrice,
		Currency:     body.Currency,
		ExpiryDate:   body.ExpiryDate,
		Status:       body.Status,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Item)
}

// apiQueryItems handles GET /api/items.
// Query: category, status, department_id, search, low_stock, critical,
// expiring_days, include_deleted, page, per_page, sort.
func (h *Handler) apiQueryItems(w http.ResponseWriter, r *http.Request) {
	filter := core.ItemFilter{
		Category:       r.URL.Query().Get("category"),
		Status:         core.ItemStatus(r.URL.Query().Get("status")),
		DepartmentID:   queryInt(r, "department_id", 0),
		Search:         r.URL.Query().Get("search"),
		LowStock:       queryBool(r, "low_stock"),
		Critical:       queryBool(r, "critical"),
		ExpiringDays:   queryInt(r, "expiring_days", 0),
		IncludeDeleted: queryBool(r, "include_deleted"),
		Page:           queryInt(r, "page", 1),
		PerPage:        queryInt(r, "per_page", 0),
		Sort:           r.URL.Query().Get("sort"),
	}

	result, err := h.svc.QueryItems(r.Context(), filter)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetItem handles GET /api/items/{ref}.
func (h *Handler) apiGetItem(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetItem(r.Context(), itemRef(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiUpdateItem handles PATCH /api/items/{ref}.
// Body: any subset of the item fields; absent fields stay untouched.
func (h *Handler) apiUpdateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		Category     *string `json:"category"`
		Brand        *string `json:"brand"`
		Model        *string `json:"model"`
		Unit         *string `json:"unit"`
		Status       *string `json:"status"`
		DepartmentID *int    `json:"department_id"`
		Warehouse    *string `json:"warehouse"`
		Section      *string `json:"section"`
		Rack         *string `json:"rack"`
		Shelf        *string `json:"shelf"`
		UnitPrice    *string `json:"unit_price"`
		Currency     *string `json:"currency"`
		ExpiryDate   *string `json:"expiry_date"`
		Current      *int    `json:"current_quantity"`
		Minimum      *int    `json:"minimum_quantity"`
		Maximum      *int    `json:"maximum_quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	req := app.UpdateItemRequest{
		Name:         body.Name,
		Description:  body.Description,
		Category:     body.Category,
		Brand:        body.Brand,
		Model:        body.Model,
		Unit:         body.Unit,
		Status:       body.Status,
		DepartmentID: body.DepartmentID,
		Warehouse:    body.Warehouse,
		Section:      body.Section,
		Rack:         body.Rack,
		Shelf:        body.Shelf,
		Currency:     body.Currency,
		ExpiryDate:   body.ExpiryDate,
		Current:      body.Current,
		Minimum:      body.Minimum,
		Maximum:      body.Maximum,
	}
	if body.UnitPrice != nil {
		price, err := decimal.NewFromString(*body.UnitPrice)
		if err != nil {
			writeError(w, r, "invalid unit_price", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.UnitPrice = &price
	}

	result, err := h.svc.UpdateItem(r.Context(), itemRef(r), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiDeleteItem handles DELETE /api/items/{ref}?permanent=.
func (h *Handler) apiDeleteItem(w http.ResponseWriter, r *http.Request) {
	permanent := queryBool(r, "permanent")
	if err := h.svc.DeleteItem(r.Context(), itemRef(r), permanent); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiAdjustQuantity handles POST /api/items/{ref}/adjust.
// Body: { new_current, reason }
func (h *Handler) apiAdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewCurrent *int   `json:"new_current"`
		Reason     string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.NewCurrent == nil {
		writeError(w, r, "new_current is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.AdjustQuantity(r.Context(), itemRef(r), *body.NewCurrent, body.Reason)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiReserveStock handles POST /api/items/{ref}/reserve.
// Body: { quantity }
func (h *Handler) apiReserveStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.ReserveStock(r.Context(), itemRef(r), body.Quantity)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiReleaseStock handles POST /api/items/{ref}/release.
// Body: { quantity }
func (h *Handler) apiReleaseStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.ReleaseStock(r.Context(), itemRef(r), body.Quantity)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// apiItemHistory handles GET /api/items/{ref}/transactions?limit=.
func (h *Handler) apiItemHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	result, err := h.svc.ItemHistory(r.Context(), itemRef(r), limit)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
