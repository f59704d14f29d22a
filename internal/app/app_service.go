package app

import (
	"context"
	"strconv"
	"time"

	"relief-ledger/internal/core"
)

type appService struct {
	store       *core.InventoryStore
	ledger      *core.TransactionLedger
	coordinator *core.LedgerCoordinator
	alerts      *core.AlertService
	departments core.DepartmentService
	horizonDays int
}

// NewAppService constructs an appService that satisfies ApplicationService.
// horizonDays drives the is_expiring_soon classification on returned items.
func NewAppService(
	store *core.InventoryStore,
	ledger *core.TransactionLedger,
	coordinator *core.LedgerCoordinator,
	alerts *core.AlertService,
	departments core.DepartmentService,
	horizonDays int,
) ApplicationService {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return &appService{
		store:       store,
		ledger:      ledger,
		coordinator: coordinator,
		alerts:      alerts,
		departments: departments,
		horizonDays: horizonDays,
	}
}

// CreateItem registers a new inventory item with its initial inbound entry.
func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error) {
	expiry, err := parseDate("expiry_date", req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	input := core.ItemInput{
		ItemCode:     req.ItemCode,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Brand:        req.Brand,
		Model:        req.Model,
		Unit:         core.Unit(req.Unit),
		Quantity:     core.Quantity{Current: req.Current, Minimum: req.Minimum, Maximum: req.Maximum},
		DepartmentID: req.DepartmentID,
		Warehouse:    req.Warehouse,
		Section:      req.Section,
		Rack:         req.Rack,
		Shelf:        req.Shelf,
		UnitPrice:    req.UnitPrice,
		Currency:     req.Currency,
		ExpiryDate:   expiry,
		Status:       core.ItemStatus(req.Status),
	}

	item, err := s.coordinator.CreateItem(ctx, input)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: newItemView(*item, s.horizonDays)}, nil
}

// GetItem returns a single item by numeric id or item code.
func (s *appService) GetItem(ctx context.Context, ref string) (*ItemResult, error) {
	item, err := s.resolveItem(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: newItemView(*item, s.horizonDays)}, nil
}

// QueryItems returns a filtered, paginated listing with aggregates.
func (s *appService) QueryItems(ctx context.Context, filter core.ItemFilter) (*ItemPageResult, error) {
	page, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ItemPageResult{
		Items:      newItemViews(page.Items, s.horizonDays),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		Aggregates: page.Aggregates,
	}, nil
}

// UpdateItem applies a partial update to an item.
func (s *appService) UpdateItem(ctx context.Context, ref string, req UpdateItemRequest) (*ItemResult, error) {
	item, err := s.resolveItem(ctx, ref)
	if err != nil {
		return nil, err
	}

	patch := core.ItemPatch{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Brand:        req.Brand,
		Model:        req.Model,
		DepartmentID: req.DepartmentID,
		Warehouse:    req.Warehouse,
		Section:      req.Section,
		Rack:         req.Rack,
		Shelf:        req.Shelf,
		UnitPrice:    req.UnitPrice,
		Currency:     req.Currency,
		Current:      req.Current,
		Minimum:      req.Minimum,
		Maximum:      req.Maximum,
	}
	if req.Unit != nil {
		u := core.Unit(*req.Unit)
		patch.Unit = &u
	}
	if req.Status != nil {
		st := core.ItemStatus(*req.Status)
		patch.Status = &st
	}
	if req.ExpiryDate != nil {
		expiry, err := parseDate("expiry_date", *req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		patch.ExpiryDate = expiry
	}

	updated, err := s.coordinator.UpdateItem(ctx, item.ID, patch)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: newItemView(*updated, s.horizonDays)}, nil
}

// AdjustQuantity sets the current quantity, booking an adjustment entry.
func (s *appService) AdjustQuantity(ctx context.Context, ref string, newCurrent int, reason string) (*ItemResult, error) {
	item, err := s.resolveItem(ctx, ref)
	if err != nil {
		return nil, err
	}
	updated, err := s.coordinator.AdjustQuantity(ctx, item.ID, newCurrent, reason)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: newItemView(*updated, s.horizonDays)}, nil
}

// ReserveStock sets aside stock against future distribution.
func (s *appService) ReserveStock(ctx context.Context, ref string, quantity int) (*ItemResult, error) {
	item, err := s.resolveItem(ctx, ref)
	if err != nil {
		return nil, err
	}
	updated, err := s.coordinator.Reserve(ctx, item.ID, quantity)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: newItemView(*updated, s.horizonDays)}, nil
}

// ReleaseStock returns reserved stock to the available pool.
func (s *appService) ReleaseStock(ctx context.Context, ref string, quantity int) (*ItemResult, error) {
	item, err := s.resolveItem(ctx, ref)
	if err != nil {
		return nil, err
	}
	updated, err := s.coordinator.Release(ctx, item.ID, quantity)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: newItemView(*updated, s.horizonDays)}, nil
}

// DeleteItem removes an item; soft by default, permanent on request.
func (s *appService) DeleteItem(ctx context.Context, ref string, permanent bool) error {
	// A numeric ref goes straight through so a soft-deleted item can still
	// be purged by id; codes only resolve against live items.
	if id, err := strconv.Atoi(ref); err == nil {
		return s.coordinator.DeleteItem(ctx, id, permanent)
	}
	item, err := s.store.GetByCode(ctx, ref)
	if err != nil {
		return err
	}
	return s.coordinator.DeleteItem(ctx, item.ID, permanent)
}

// ItemHistory returns an item's transactions, newest first.
func (s *appService) ItemHistory(ctx context.Context, ref string, limit int) (*TransactionListResult, error) {
	var (
		txns []core.Transaction
		err  error
	)
	if id, convErr := strconv.Atoi(ref); convErr == nil {
		txns, err = s.ledger.ByInventory(ctx, id, limit)
	} else {
		txns, err = s.ledger.ByItemCode(ctx, ref, limit)
	}
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns, Count: len(txns)}, nil
}

// RecordTransaction appends a standalone ledger entry.
func (s *appService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*TransactionResult, error) {
	delivery, err := parseDate("expected_delivery", req.ExpectedDelivery)
	if err != nil {
		return nil, err
	}

	input := core.TransactionInput{
		Type:             core.TransactionType(req.Type),
		InventoryID:      req.InventoryID,
		ItemCode:         req.ItemCode,
		Quantity:         req.Quantity,
		From:             core.Endpoint{DepartmentID: req.From.DepartmentID, Warehouse: req.From.Warehouse},
		To:               core.Endpoint{DepartmentID: req.To.DepartmentID, Warehouse: req.To.Warehouse},
		Reason:           req.Reason,
		Status:           core.TransactionStatus(req.Status),
		ExpectedDelivery: delivery,
		Notes:            req.Notes,
	}

	txn, err := s.ledger.Append(ctx, input)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: txn}, nil
}

// GetTransaction returns a transaction by id or TXN reference.
func (s *appService) GetTransaction(ctx context.Context, ref string) (*TransactionResult, error) {
	txn, err := s.ledger.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: txn}, nil
}

// ListTransactions returns a filtered, paginated transaction listing.
func (s *appService) ListTransactions(ctx context.Context, filter core.TransactionFilter) (*TransactionPageResult, error) {
	page, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &TransactionPageResult{
		Transactions: page.Transactions,
		Total:        page.Total,
		Page:         page.Page,
		PerPage:      page.PerPage,
	}, nil
}

// PendingTransactions returns open transfers in arrival order.
func (s *appService) PendingTransactions(ctx context.Context) (*TransactionListResult, error) {
	txns, err := s.ledger.Pending(ctx)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns, Count: len(txns)}, nil
}

// OverdueTransactions returns pending transfers past their delivery date.
func (s *appService) OverdueTransactions(ctx context.Context) (*TransactionListResult, error) {
	txns, err := s.ledger.Overdue(ctx)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns, Count: len(txns)}, nil
}

// SetTransactionStatus moves a transaction through its status workflow.
func (s *appService) SetTransactionStatus(ctx context.Context, ref string, status string) (*TransactionResult, error) {
	txn, err := s.ledger.UpdateStatus(ctx, ref, core.TransactionStatus(status))
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: txn}, nil
}

// LowStockAlerts lists items at or below their minimum quantity.
func (s *appService) LowStockAlerts(ctx context.Context, departmentID int) (*AlertResult, error) {
	items, err := s.alerts.LowStock(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return s.alertResult(items), nil
}

// CriticalStockAlerts lists items at or below half their minimum.
func (s *appService) CriticalStockAlerts(ctx context.Context, departmentID int) (*AlertResult, error) {
	items, err := s.alerts.CriticalStock(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return s.alertResult(items), nil
}

// ExpiringItems lists items expiring within the window.
func (s *appService) ExpiringItems(ctx context.Context, departmentID, days int) (*AlertResult, error) {
	items, err := s.alerts.Expiring(ctx, departmentID, days)
	if err != nil {
		return nil, err
	}
	return s.alertResult(items), nil
}

// ExpiredItems lists items already past their expiry date.
func (s *appService) ExpiredItems(ctx context.Context, departmentID int) (*AlertResult, error) {
	items, err := s.alerts.Expired(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return s.alertResult(items), nil
}

// ListDepartments returns all active departments.
func (s *appService) ListDepartments(ctx context.Context) (*DepartmentListResult, error) {
	deps, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}
	return &DepartmentListResult{Departments: deps, Count: len(deps)}, nil
}

// GetDepartment returns a department by numeric id or code.
func (s *appService) GetDepartment(ctx context.Context, ref string) (*DepartmentResult, error) {
	dep, err := s.departments.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &DepartmentResult{Department: dep}, nil
}

// CreateDepartment registers a new department.
func (s *appService) CreateDepartment(ctx context.Context, input core.DepartmentInput) (*DepartmentResult, error) {
	dep, err := s.departments.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return &DepartmentResult{Department: dep}, nil
}

// DeleteDepartment soft-deletes a department if no active items remain.
func (s *appService) DeleteDepartment(ctx context.Context, id int) error {
	return s.departments.Delete(ctx, id)
}

// ── private helpers ───────────────────────────────────────────────────────────

// resolveItem looks up an item by numeric id or item code.
func (s *appService) resolveItem(ctx context.Context, ref string) (*core.InventoryItem, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.store.Get(ctx, id)
	}
	return s.store.GetByCode(ctx, ref)
}

func (s *appService) alertResult(items []core.InventoryItem) *AlertResult {
	views := newItemViews(items, s.horizonDays)
	return &AlertResult{Items: views, Count: len(views)}
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, &core.ValidationError{Field: field, Message: "must be a YYYY-MM-DD date"}
	}
	return &t, nil
}
