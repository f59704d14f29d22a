package events

import (
	"context"
	"time"
)

// Publisher fans domain events out to subscribers. Publication is
// fire-and-forget relative to the mutation that produced the event:
// failures are logged by the caller and never fail the mutation, and a
// subscriber that misses an event can rebuild state by re-querying.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Event is a domain event. Key is the partition key, so all events for
// one item stay ordered on a single partition.
type Event interface {
	Type() string
	Key() string
}

type InventoryCreated struct {
	ItemID       int       `json:"item_id"`
	ItemCode     string    `json:"item_code"`
	Name         string    `json:"name"`
	DepartmentID int       `json:"department_id"`
	Current      int       `json:"current_quantity"`
	StockStatus  string    `json:"stock_status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e InventoryCreated) Type() string { return "inventoryCreated" }
func (e InventoryCreated) Key() string  { return e.ItemCode }

type InventoryUpdated struct {
	ItemID       int       `json:"item_id"`
	ItemCode     string    `json:"item_code"`
	Name         string    `json:"name"`
	DepartmentID int       `json:"department_id"`
	Previous     int       `json:"previous_quantity"`
	Current      int       `json:"current_quantity"`
	StockStatus  string    `json:"stock_status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e InventoryUpdated) Type() string { return "inventoryUpdated" }
func (e InventoryUpdated) Key() string  { return e.ItemCode }

type InventoryDeleted struct {
	ItemID     int       `json:"item_id"`
	ItemCode   string    `json:"item_code"`
	Permanent  bool      `json:"permanent"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e InventoryDeleted) Type() string { return "inventoryDeleted" }
func (e InventoryDeleted) Key() string  { return e.ItemCode }

// LowStockAlert fires when a mutation leaves an item at or below its
// minimum quantity.
type LowStockAlert struct {
	ItemID       int       `json:"item_id"`
	ItemCode     string    `json:"item_code"`
	Name         string    `json:"name"`
	DepartmentID int       `json:"department_id"`
	Current      int       `json:"current_quantity"`
	Minimum      int       `json:"minimum_quantity"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e LowStockAlert) Type() string { return "inventoryLowStock" }
func (e LowStockAlert) Key() string  { return e.ItemCode }

// CriticalStockAlert fires when a mutation leaves an item at or below
// half its minimum quantity, or out of stock entirely.
type CriticalStockAlert struct {
	ItemID       int       `json:"item_id"`
	ItemCode     string    `json:"item_code"`
	Name         string    `json:"name"`
	DepartmentID int       `json:"department_id"`
	Current      int       `json:"current_quantity"`
	Minimum      int       `json:"minimum_quantity"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e CriticalStockAlert) Type() string { return "inventoryCriticalStock" }
func (e CriticalStockAlert) Key() string  { return e.ItemCode }
