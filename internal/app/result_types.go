package app

import (
	"time"

	"relief-ledger/internal/core"
)

// ItemView is an inventory item enriched with the derived fields every
// adapter needs: available quantity, the stock-status classification, and
// the expiry flags evaluated against the configured horizon.
type ItemView struct {
	core.InventoryItem
	AvailableQuantity int              `json:"available_quantity"`
	StockStatus       core.StockStatus `json:"stock_status"`
	IsExpiringSoon    bool             `json:"is_expiring_soon"`
	IsExpired         bool             `json:"is_expired"`
}

func newItemView(it core.InventoryItem, horizonDays int) ItemView {
	now := time.Now()
	return ItemView{
		InventoryItem:     it,
		AvailableQuantity: it.Quantity.Available(),
		StockStatus:       it.Quantity.StockStatus(),
		IsExpiringSoon:    it.IsExpiringSoon(now, horizonDays),
		IsExpired:         it.IsExpired(now),
	}
}

func newItemViews(items []core.InventoryItem, horizonDays int) []ItemView {
	views := make([]ItemView, len(items))
	for i, it := range items {
		views[i] = newItemView(it, horizonDays)
	}
	return views
}

// ItemResult is returned by single-item operations.
type ItemResult struct {
	Item ItemView
}

// ItemPageResult is returned by QueryItems.
type ItemPageResult struct {
	Items      []ItemView          `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	Aggregates core.ItemAggregates `json:"aggregates"`
}

// TransactionResult is returned by single-transaction operations.
type TransactionResult struct {
	Transaction *core.Transaction
}

// TransactionListResult is returned by ItemHistory, PendingTransactions
// and OverdueTransactions.
type TransactionListResult struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

// TransactionPageResult is returned by ListTransactions.
type TransactionPageResult struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int                `json:"total"`
	Page         int                `json:"page"`
	PerPage      int                `json:"per_page"`
}

// AlertResult is returned by the alert queries.
type AlertResult struct {
	Items []ItemView `json:"items"`
	Count int        `json:"count"`
}

// DepartmentResult is returned by department operations.
type DepartmentResult struct {
	Department *core.Department
}

// DepartmentListResult is returned by ListDepartments.
type DepartmentListResult struct {
	Departments []core.Department `json:"departments"`
	Count       int               `json:"count"`
}
