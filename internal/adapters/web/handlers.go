package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"relief-ledger/internal/app"
)

// Handler holds the ApplicationService and the process logger.
type Handler struct {
	svc    app.ApplicationService
	logger *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, logger *zap.Logger, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// All mutation endpoints get a 1 MB body limit to prevent unbounded
	// request abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Inventory items ─────────────────────────────────────────────────
		r.Post("/api/items", h.apiCreateItem)
		r.Get("/api/items", h.apiQueryItems)
		r.Get("/api/items/{ref}", h.apiGetItem)
		r.Patch("/api/items/{ref}", h.apiUpdateItem)
		r.Delete("/api/items/{ref}", h.apiDeleteItem)
		r.Post("/api/items/{ref}/adjust", h.apiAdjustQuantity)
		r.Post("/api/items/{ref}/reserve", h.apiReserveStock)
		r.Post("/api/items/{ref}/release", h.apiReleaseStock)
		r.Get("/api/items/{ref}/transactions", h.apiItemHistory)

		// ── Transactions ────────────────────────────────────────────────────
		r.Get("/api/transactions", h.apiListTransactions)
		r.Post("/api/transactions", h.apiRecordTransaction)
		r.Get("/api/transactions/{ref}", h.apiGetTransaction)
		r.Post("/api/transactions/{ref}/status", h.apiSetTransactionStatus)

		// ── Alerts ──────────────────────────────────────────────────────────
		r.Get("/api/alerts/low-stock", h.apiLowStock)
		r.Get("/api/alerts/critical", h.apiCriticalStock)
		r.Get("/api/alerts/expiring", h.apiExpiring)
		r.Get("/api/alerts/expired", h.apiExpired)

		// ── Departments ─────────────────────────────────────────────────────
		r.Get("/api/departments", h.apiListDepartments)
		r.Post("/api/departments", h.apiCreateDepartment)
		r.Get("/api/departments/{ref}", h.apiGetDepartment)
		r.Delete("/api/departments/{ref}", h.apiDeleteDepartment)
	})

	return r
}

// health reports service liveness, touching the database through the
// department listing.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status      string `json:"status"`
		Departments int    `json:"departments"`
	}

	result, err := h.svc.ListDepartments(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(response{Status: "degraded"})
		return
	}
	writeJSON(w, response{Status: "ok", Departments: result.Count})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
