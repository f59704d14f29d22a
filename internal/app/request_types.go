package app

import (
	"github.com/shopspring/decimal"
)

// CreateItemRequest is the input for registering a new inventory item.
// Dates travel as YYYY-MM-DD strings; the service parses and validates them.
type CreateItemRequest struct {
	ItemCode     string
	Name         string
	Description  string
	Category     string
	Brand        string
	Model        string
	Unit         string
	Current      int
	Minimum      int
	Maximum      int
	DepartmentID int
	Warehouse    string
	Section      string
	Rack         string
	Shelf        string
	UnitPrice    decimal.Decimal
	Currency     string
	ExpiryDate   string // YYYY-MM-DD, empty means no expiry
	Status       string
}

// UpdateItemRequest is a partial update; nil fields are left untouched.
// Reserved quantity is absent on purpose — it moves only through
// ReserveStock and ReleaseStock.
type UpdateItemRequest struct {
	Name         *string
	Description  *string
	Category     *string
	Brand        *string
	Model        *string
	Unit         *string
	Status       *string
	DepartmentID *int
	Warehouse    *string
	Section      *string
	Rack         *string
	Shelf        *string
	UnitPrice    *decimal.Decimal
	Currency     *string
	ExpiryDate   *string // YYYY-MM-DD
	Current      *int
	Minimum      *int
	Maximum      *int
}

// RecordTransactionRequest is the input for appending a standalone ledger
// entry (typically a transfer request between departments).
type RecordTransactionRequest struct {
	Type             string
	InventoryID      *int
	ItemCode         string
	Quantity         int
	From             EndpointInput
	To               EndpointInput
	Reason           string
	Status           string // empty defaults to completed
	ExpectedDelivery string // YYYY-MM-DD
	Notes            string
}

// EndpointInput names one side of a stock movement.
type EndpointInput struct {
	DepartmentID *int
	Warehouse    string
}
