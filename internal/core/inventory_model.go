package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitPieces  Unit = "pieces"
	UnitKg      Unit = "kg"
	UnitLiters  Unit = "liters"
	UnitBoxes   Unit = "boxes"
	UnitPackets Unit = "packets"
	UnitMeters  Unit = "meters"
	UnitSets    Unit = "sets"
)

func ValidUnit(u Unit) bool {
	switch u {
	case UnitPieces, UnitKg, UnitLiters, UnitBoxes, UnitPackets, UnitMeters, UnitSets:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemAvailable        ItemStatus = "available"
	ItemReserved         ItemStatus = "reserved"
	ItemDamaged          ItemStatus = "damaged"
	ItemExpired          ItemStatus = "expired"
	ItemUnderMaintenance ItemStatus = "under_maintenance"
)

func ValidItemStatus(s ItemStatus) bool {
	switch s {
	case ItemAvailable, ItemReserved, ItemDamaged, ItemExpired, ItemUnderMaintenance:
		return true
	}
	return false
}

// Location pins an item to the department that owns it and to a physical
// spot in that department's storage.
type Location struct {
	DepartmentID int    `json:"department_id"`
	Warehouse    string `json:"warehouse,omitempty"`
	Section      string `json:"section,omitempty"`
	Rack         string `json:"rack,omitempty"`
	Shelf        string `json:"shelf,omitempty"`
}

// Cost carries the per-unit price and the derived total value
// (unit price times current quantity). TotalValue is recomputed on every
// quantity or price change, never accepted from callers.
type Cost struct {
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Currency   string          `json:"currency,omitempty"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type InventoryItem struct {
	ID          int        `json:"id"`
	ItemCode    string     `json:"item_code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	Model       string     `json:"model,omitempty"`
	Unit        Unit       `json:"unit"`
	Quantity    Quantity   `json:"quantity"`
	Location    Location   `json:"location"`
	Cost        Cost       `json:"cost"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	Status      ItemStatus `json:"status"`
	IsDeleted   bool       `json:"is_deleted,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated time.Time  `json:"last_updated"`
}

func (it *InventoryItem) IsExpired(now time.Time) bool {
	return it.ExpiryDate != nil && it.ExpiryDate.Before(now)
}

// IsExpiringSoon reports whether the item expires within the next `days`
// days. Already-expired items are not "expiring soon".
func (it *InventoryItem) IsExpiringSoon(now time.Time, days int) bool {
	if it.ExpiryDate == nil || it.IsExpired(now) {
		return false
	}
	return it.ExpiryDate.Before(now.AddDate(0, 0, days))
}

// itemCodePattern matches normalized item codes: 3 to 20 characters,
// uppercase letters and digits only.
var itemCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

// ItemInput is the caller-supplied shape for creating an item.
type ItemInput struct {
	ItemCode     string          `json:"item_code"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Unit         Unit            `json:"unit"`
	Quantity     Quantity        `json:"quantity"`
	DepartmentID int             `json:"department_id"`
	Warehouse    string          `json:"warehouse"`
	Section      string          `json:"section"`
	Rack         string          `json:"rack"`
	Shelf        string          `json:"shelf"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Currency     string          `json:"currency"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Status       ItemStatus      `json:"status"`
}

// Normalize cleans up caller input before validation. Item codes are
// case-insensitive on the wire and stored uppercase.
func (in *ItemInput) Normalize() {
	in.ItemCode = strings.ToUpper(strings.TrimSpace(in.ItemCode))
	in.Name = strings.TrimSpace(in.Name)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Status == "" {
		in.Status = ItemAvailable
	}
}

func (in *ItemInput) Validate() error {
	if !itemCodePattern.MatchString(in.ItemCode) {
		return &ValidationError{Field: "item_code", Message: "must be 3-20 alphanumeric characters"}
	}
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if !ValidUnit(in.Unit) {
		return &ValidationError{Field: "unit", Message: fmt.Sprintf("unknown unit %q", in.Unit)}
	}
	if !ValidItemStatus(in.Status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if err := in.Quantity.Validate(); err != nil {
		return err
	}
	if in.DepartmentID <= 0 {
		return &ValidationError{Field: "department_id", Message: "is required"}
	}
	if in.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Message: "cannot be negative"}
	}
	return nil
}

// ItemPatch is a partial update: nil fields are left untouched. Reserved
// quantity is deliberately absent; it moves only through Reserve and
// Release so the reservation arithmetic cannot be bypassed.
type ItemPatch struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Brand        *string          `json:"brand"`
	Model        *string          `json:"model"`
	Unit         *Unit            `json:"unit"`
	Status       *ItemStatus      `json:"status"`
	DepartmentID *int             `json:"department_id"`
	Warehouse    *string          `json:"warehouse"`
	Section      *string          `json:"section"`
	Rack         *string          `json:"rack"`
	Shelf        *string          `json:"shelf"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	Currency     *string          `json:"currency"`
	ExpiryDate   *time.Time       `json:"expiry_date"`
	Current      *int             `json:"current_quantity"`
	Minimum      *int             `json:"minimum_quantity"`
	Maximum      *int             `json:"maximum_quantity"`
}

// quantityOnly reports whether the patch touches nothing but the current
// quantity. Such a patch with an unchanged value is a full no-op.
func (p *ItemPatch) quantityOnly() bool {
	return p.Current != nil &&
		p.Name == nil && p.Description == nil && p.Category == nil &&
		p.Brand == nil && p.Model == nil && p.Unit == nil && p.Status == nil &&
		p.DepartmentID == nil && p.Warehouse == nil && p.Section == nil &&
		p.Rack == nil && p.Shelf == nil && p.UnitPrice == nil &&
		p.Currency == nil && p.ExpiryDate == nil && p.Minimum == nil && p.Maximum == nil
}

func (p *ItemPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Message: "cannot be blank"}
	}
	if p.Unit != nil && !ValidUnit(*p.Unit) {
		return &ValidationError{Field: "unit", Message: fmt.Sprintf("unknown unit %q", *p.Unit)}
	}
	if p.Status != nil && !ValidItemStatus(*p.Status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *p.Status)}
	}
	if p.DepartmentID != nil && *p.DepartmentID <= 0 {
		return &ValidationError{Field: "department_id", Message: "must be positive"}
	}
	if p.UnitPrice != nil && p.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Message: "cannot be negative"}
	}
	if p.Current != nil && *p.Current < 0 {
		return &ValidationError{Field: "quantity.current", Message: "cannot be negative"}
	}
	if p.Minimum != nil && *p.Minimum < 0 {
		return &ValidationError{Field: "quantity.minimum", Message: "cannot be negative"}
	}
	if p.Maximum != nil && *p.Maximum < 0 {
		return &ValidationError{Field: "quantity.maximum", Message: "cannot be negative"}
	}
	return nil
}

// Apply lays the patch over an item in place. Quantity bounds are
// re-checked afterwards by the caller via ValidateExisting, once the
// final current/minimum/maximum combination is known.
func (p *ItemPatch) Apply(it *InventoryItem) {
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Brand != nil {
		it.Brand = *p.Brand
	}
	if p.Model != nil {
		it.Model = *p.Model
	}
	if p.Unit != nil {
		it.Unit = *p.Unit
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.DepartmentID != nil {
		it.Location.DepartmentID = *p.DepartmentID
	}
	if p.Warehouse != nil {
		it.Location.Warehouse = *p.Warehouse
	}
	if p.Section != nil {
		it.Location.Section = *p.Section
	}
	if p.Rack != nil {
		it.Location.Rack = *p.Rack
	}
	if p.Shelf != nil {
		it.Location.Shelf = *p.Shelf
	}
	if p.UnitPrice != nil {
		it.Cost.UnitPrice = *p.UnitPrice
	}
	if p.Currency != nil {
		it.Cost.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.ExpiryDate != nil {
		it.ExpiryDate = p.ExpiryDate
	}
	if p.Current != nil {
		it.Quantity.Current = *p.Current
	}
	if p.Minimum != nil {
		it.Quantity.Minimum = *p.Minimum
	}
	if p.Maximum != nil {
		it.Quantity.Maximum = *p.Maximum
	}
}

// ItemFilter narrows and pages QueryItems. Zero values mean "no
// constraint". Page and PerPage are clamped by Normalize.
type ItemFilter struct {
	Category       string
	Status         ItemStatus
	DepartmentID   int
	Search         string
	LowStock       bool
	Critical       bool
	ExpiringDays   int
	IncludeDeleted bool
	Page           int
	PerPage        int
	Sort           string
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func (f *ItemFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	if f.Sort == "" {
		f.Sort = "item_code"
	}
}

// ItemAggregates summarizes the full filtered set, not just the page.
// The three stock buckets are disjoint: an out-of-stock item is not
// also counted as critical, and a critical item is not counted as low.
type ItemAggregates struct {
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockCount   int             `json:"low_stock_count"`
	CriticalCount   int             `json:"critical_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
}

type ItemPage struct {
	Items      []InventoryItem `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	Aggregates ItemAggregates  `json:"aggregates"`
}
