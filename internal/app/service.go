package app

import (
	"context"

	"relief-ledger/internal/core"
)

// ApplicationService is the single interface all adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Item refs accept either a numeric database id or an item code; transaction
// refs accept a numeric id or a TXN reference string.
type ApplicationService interface {
	// CreateItem registers a new inventory item. Initial stock, if any,
	// arrives as a paired inbound transaction.
	CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error)

	// GetItem returns a single item with derived quantity fields.
	GetItem(ctx context.Context, ref string) (*ItemResult, error)

	// QueryItems returns a filtered, sorted, paginated item listing with
	// aggregates computed over the full filtered set.
	QueryItems(ctx context.Context, filter core.ItemFilter) (*ItemPageResult, error)

	// UpdateItem applies a partial update. A current-quantity change inside
	// the patch books a paired adjustment transaction.
	UpdateItem(ctx context.Context, ref string, req UpdateItemRequest) (*ItemResult, error)

	// AdjustQuantity sets the current quantity to newCurrent, recording an
	// adjustment transaction carrying the caller's reason.
	AdjustQuantity(ctx context.Context, ref string, newCurrent int, reason string) (*ItemResult, error)

	// ReserveStock sets aside quantity units against future distribution.
	ReserveStock(ctx context.Context, ref string, quantity int) (*ItemResult, error)

	// ReleaseStock returns previously reserved units to the available pool.
	ReleaseStock(ctx context.Context, ref string, quantity int) (*ItemResult, error)

	// DeleteItem soft-deletes by default; permanent removes the row while
	// the transaction history survives.
	DeleteItem(ctx context.Context, ref string, permanent bool) error

	// ItemHistory returns the item's transactions, newest first. Looking up
	// by item code still works after the item itself was hard-deleted.
	ItemHistory(ctx context.Context, ref string, limit int) (*TransactionListResult, error)

	// RecordTransaction appends a standalone ledger entry, such as a
	// transfer request between departments. It never moves stock.
	RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*TransactionResult, error)

	// GetTransaction returns a single transaction by id or TXN reference.
	GetTransaction(ctx context.Context, ref string) (*TransactionResult, error)

	// ListTransactions returns a filtered, paginated transaction listing.
	ListTransactions(ctx context.Context, filter core.TransactionFilter) (*TransactionPageResult, error)

	// PendingTransactions returns open transfers in arrival order.
	PendingTransactions(ctx context.Context) (*TransactionListResult, error)

	// OverdueTransactions returns pending transfers past their expected
	// delivery date.
	OverdueTransactions(ctx context.Context) (*TransactionListResult, error)

	// SetTransactionStatus moves a transaction through its status workflow
	// (pending → approved → completed, with cancellation from either).
	SetTransactionStatus(ctx context.Context, ref string, status string) (*TransactionResult, error)

	// LowStockAlerts lists items at or below their minimum quantity.
	// departmentID of 0 means all departments.
	LowStockAlerts(ctx context.Context, departmentID int) (*AlertResult, error)

	// CriticalStockAlerts lists items at or below half their minimum.
	CriticalStockAlerts(ctx context.Context, departmentID int) (*AlertResult, error)

	// ExpiringItems lists items expiring within days (0 uses the configured
	// horizon).
	ExpiringItems(ctx context.Context, departmentID, days int) (*AlertResult, error)

	// ExpiredItems lists items already past their expiry date.
	ExpiredItems(ctx context.Context, departmentID int) (*AlertResult, error)

	// ListDepartments returns all active departments ordered by code.
	ListDepartments(ctx context.Context) (*DepartmentListResult, error)

	// GetDepartment returns a department by numeric id or code.
	GetDepartment(ctx context.Context, ref string) (*DepartmentResult, error)

	// CreateDepartment registers a new department.
	CreateDepartment(ctx context.Context, input core.DepartmentInput) (*DepartmentResult, error)

	// DeleteDepartment soft-deletes a department. It fails with a
	// DependencyConflictError while active inventory still references it.
	DeleteDepartment(ctx context.Context, id int) error
}
