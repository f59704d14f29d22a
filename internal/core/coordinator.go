package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"relief-ledger/internal/events"
)

// LedgerCoordinator runs every stock mutation as one unit: validate,
// mutate the inventory record, append the matching ledger row, commit,
// then publish events. The record write and the ledger append share a
// database transaction, so an orphaned mutation or an orphaned ledger
// row cannot exist. Event publication sits outside that boundary and is
// fire-and-forget.
type LedgerCoordinator struct {
	pool      *pgxpool.Pool
	store     *InventoryStore
	ledger    *TransactionLedger
	deps      DepartmentService
	publisher events.Publisher
	logger    *zap.Logger
}

func NewLedgerCoordinator(
	pool *pgxpool.Pool,
	store *InventoryStore,
	ledger *TransactionLedger,
	deps DepartmentService,
	publisher events.Publisher,
	logger *zap.Logger,
) *LedgerCoordinator {
	return &LedgerCoordinator{
		pool:      pool,
		store:     store,
		ledger:    ledger,
		deps:      deps,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateItem validates, inserts the record, and books the opening
// inbound movement. An item created with zero stock gets no ledger row;
// there is no movement to record.
func (c *LedgerCoordinator) CreateItem(ctx context.Context, input ItemInput) (*InventoryItem, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	exists, err := c.deps.Exists(ctx, input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Entity: "department", Ref: strconv.Itoa(input.DepartmentID)}
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	it, err := c.store.CreateTx(ctx, tx, input)
	if err != nil {
		return nil, err
	}

	if it.Quantity.Current > 0 {
		if _, err := c.ledger.AppendTx(ctx, tx, TransactionInput{
			Type:        TxnInbound,
			InventoryID: &it.ID,
			ItemCode:    it.ItemCode,
			Quantity:    it.Quantity.Current,
			To:          endpointFor(it),
			Reason:      "Initial stock entry",
		}); err != nil {
			return nil, fmt.Errorf("failed to record initial stock entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item creation: %w", err)
	}

	now := time.Now().UTC()
	c.publish(ctx, events.InventoryCreated{
		ItemID:       it.ID,
		ItemCode:     it.ItemCode,
		Name:         it.Name,
		DepartmentID: it.Location.DepartmentID,
		Current:      it.Quantity.Current,
		StockStatus:  string(it.Quantity.StockStatus()),
		OccurredAt:   now,
	})
	c.publishThreshold(ctx, it, now)
	return it, nil
}

// UpdateItem applies a general patch. A quantity change rides along with
// a canned reason; callers wanting a specific reason use AdjustQuantity.
func (c *LedgerCoordinator) UpdateItem(ctx context.Context, id int, patch ItemPatch) (*InventoryItem, error) {
	return c.update(ctx, id, patch, "Stock adjustment via item update")
}

// AdjustQuantity sets the current quantity to an absolute value and
// records one adjustment movement of abs(delta) with the caller's
// reason. Setting the same value is a no-op: no write, no ledger row,
// no event.
func (c *LedgerCoordinator) AdjustQuantity(ctx context.Context, id, newCurrent int, reason string) (*InventoryItem, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "is required"}
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, &ValidationError{Field: "reason", Message: fmt.Sprintf("exceeds %d characters", maxReasonLength)}
	}
	if newCurrent < 0 {
		return nil, &ValidationError{Field: "quantity.current", Message: "cannot be negative"}
	}
	return c.update(ctx, id, ItemPatch{Current: &newCurrent}, reason)
}

func (c *LedgerCoordinator) update(ctx context.Context, id int, patch ItemPatch, reason string) (*InventoryItem, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	before, err := c.store.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	oldCurrent := before.Quantity.Current

	if patch.quantityOnly() && *patch.Current == oldCurrent {
		return before, nil
	}

	updated, err := c.store.UpdateTx(ctx, tx, before, patch)
	if err != nil {
		return nil, err
	}

	delta := updated.Quantity.Current - oldCurrent
	if delta != 0 {
		in := TransactionInput{
			Type:        TxnAdjustment,
			InventoryID: &updated.ID,
			ItemCode:    updated.ItemCode,
			Quantity:    abs(delta),
			Reason:      reason,
		}
		if delta > 0 {
			in.To = endpointFor(updated)
			in.Notes = fmt.Sprintf("Stock increased by %d (from %d to %d)", delta, oldCurrent, updated.Quantity.Current)
		} else {
			in.From = endpointFor(updated)
			in.Notes = fmt.Sprintf("Stock decreased by %d (from %d to %d)", -delta, oldCurrent, updated.Quantity.Current)
		}
		if _, err := c.ledger.AppendTx(ctx, tx, in); err != nil {
			return nil, fmt.Errorf("failed to record adjustment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item update: %w", err)
	}

	now := time.Now().UTC()
	c.publish(ctx, events.InventoryUpdated{
		ItemID:       updated.ID,
		ItemCode:     updated.ItemCode,
		Name:         updated.Name,
		DepartmentID: updated.Location.DepartmentID,
		Previous:     oldCurrent,
		Current:      updated.Quantity.Current,
		StockStatus:  string(updated.Quantity.StockStatus()),
		OccurredAt:   now,
	})
	c.publishThreshold(ctx, updated, now)
	return updated, nil
}

// Reserve soft-locks stock. Reservations shuffle quantity inside one
// record without changing the total, so nothing is ledgered and no
// event fires.
func (c *LedgerCoordinator) Reserve(ctx context.Context, id, quantity int) (*InventoryItem, error) {
	return c.store.Reserve(ctx, id, quantity)
}

// Release returns reserved stock to the available pool.
func (c *LedgerCoordinator) Release(ctx context.Context, id, quantity int) (*InventoryItem, error) {
	return c.store.Release(ctx, id, quantity)
}

// DeleteItem removes an item, softly by default. A soft-deleted item can
// still be hard-deleted afterwards; ledger rows survive both paths.
func (c *LedgerCoordinator) DeleteItem(ctx context.Context, id int, permanent bool) error {
	it, err := c.store.GetIncludingDeleted(ctx, id)
	if err != nil {
		return err
	}
	if it.IsDeleted && !permanent {
		return &NotFoundError{Entity: "item", Ref: strconv.Itoa(id)}
	}

	if permanent {
		err = c.store.HardDelete(ctx, id)
	} else {
		err = c.store.SoftDelete(ctx, id)
	}
	if err != nil {
		return err
	}

	c.publish(ctx, events.InventoryDeleted{
		ItemID:     it.ID,
		ItemCode:   it.ItemCode,
		Permanent:  permanent,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// publish logs and swallows broker errors: the mutation already
// committed, and subscribers can reconstruct state by re-querying.
func (c *LedgerCoordinator) publish(ctx context.Context, event events.Event) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish event",
			zap.String("event_type", event.Type()),
			zap.String("key", event.Key()),
			zap.Error(err),
		)
	}
}

func (c *LedgerCoordinator) publishThreshold(ctx context.Context, it *InventoryItem, now time.Time) {
	switch it.Quantity.StockStatus() {
	case StockOutOfStock, StockCritical:
		c.publish(ctx, events.CriticalStockAlert{
			ItemID:       it.ID,
			ItemCode:     it.ItemCode,
			Name:         it.Name,
			DepartmentID: it.Location.DepartmentID,
			Current:      it.Quantity.Current,
			Minimum:      it.Quantity.Minimum,
			OccurredAt:   now,
		})
	case StockLow:
		c.publish(ctx, events.LowStockAlert{
			ItemID:       it.ID,
			ItemCode:     it.ItemCode,
			Name:         it.Name,
			DepartmentID: it.Location.DepartmentID,
			Current:      it.Quantity.Current,
			Minimum:      it.Quantity.Minimum,
			OccurredAt:   now,
		})
	}
}

func endpointFor(it *InventoryItem) Endpoint {
	dept := it.Location.DepartmentID
	return Endpoint{DepartmentID: &dept, Warehouse: it.Location.Warehouse}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
