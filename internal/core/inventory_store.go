package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryStore owns reads and writes of inventory records. Reservation
// arithmetic runs under row locks in the store's own transactions;
// create and update are TX-scoped so the LedgerCoordinator can commit a
// record mutation and its ledger entry as one unit.
type InventoryStore struct {
	pool *pgxpool.Pool
}

func NewInventoryStore(pool *pgxpool.Pool) *InventoryStore {
	return &InventoryStore{pool: pool}
}

const itemColumns = `id, item_code, name, description, category, brand, model, unit,
	qty_current, qty_reserved, qty_minimum, qty_maximum,
	department_id, warehouse, section, rack, shelf,
	unit_price, currency, total_value, expiry_date, status,
	is_deleted, created_at, last_updated`

func scanItem(row pgx.Row) (*InventoryItem, error) {
	var it InventoryItem
	err := row.Scan(
		&it.ID, &it.ItemCode, &it.Name, &it.Description, &it.Category, &it.Brand, &it.Model, &it.Unit,
		&it.Quantity.Current, &it.Quantity.Reserved, &it.Quantity.Minimum, &it.Quantity.Maximum,
		&it.Location.DepartmentID, &it.Location.Warehouse, &it.Location.Section, &it.Location.Rack, &it.Location.Shelf,
		&it.Cost.UnitPrice, &it.Cost.Currency, &it.Cost.TotalValue, &it.ExpiryDate, &it.Status,
		&it.IsDeleted, &it.CreatedAt, &it.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func totalValue(unitPrice decimal.Decimal, current int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(current)))
}

// ── Reads ─────────────────────────────────────────────────────────────────────

// Get returns an item by id. Soft-deleted items are invisible here.
func (s *InventoryStore) Get(ctx context.Context, id int) (*InventoryItem, error) {
	it, err := scanItem(s.pool.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE id = $1 AND NOT is_deleted", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch item %d: %w", id, err)
	}
	return it, nil
}

// GetIncludingDeleted returns an item regardless of its soft-delete flag.
// Used by DeleteItem so a permanent delete can still reach a record that
// was soft-deleted earlier.
func (s *InventoryStore) GetIncludingDeleted(ctx context.Context, id int) (*InventoryItem, error) {
	it, err := scanItem(s.pool.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch item %d: %w", id, err)
	}
	return it, nil
}

// GetByCode looks an item up by its code, case-insensitively.
func (s *InventoryStore) GetByCode(ctx context.Context, code string) (*InventoryItem, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	it, err := scanItem(s.pool.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE upper(item_code) = $1 AND NOT is_deleted", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", Ref: code}
		}
		return nil, fmt.Errorf("failed to fetch item %s: %w", code, err)
	}
	return it, nil
}

// sortColumns is the allowlist for ItemFilter.Sort. Anything else falls
// back to item_code so raw filter input can never reach the ORDER BY.
var sortColumns = map[string]string{
	"item_code":    "item_code",
	"name":         "name",
	"current":      "qty_current",
	"total_value":  "total_value",
	"created_at":   "created_at",
	"last_updated": "last_updated",
}

// Query returns one page of items plus aggregates computed over the whole
// filtered set.
func (s *InventoryStore) Query(ctx context.Context, filter ItemFilter) (*ItemPage, error) {
	filter.Normalize()

	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "NOT is_deleted")
	}
	if filter.Category != "" {
		conditions = append(conditions, "lower(category) = lower("+arg(filter.Category)+")")
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.DepartmentID > 0 {
		conditions = append(conditions, "department_id = "+arg(filter.DepartmentID))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE %s OR item_code ILIKE %s OR description ILIKE %s OR brand ILIKE %s OR model ILIKE %s)",
			p, p, p, p, p))
	}
	if filter.Critical {
		conditions = append(conditions, "qty_current <= qty_minimum / 2")
	} else if filter.LowStock {
		conditions = append(conditions, "qty_current <= qty_minimum")
	}
	if filter.ExpiringDays > 0 {
		conditions = append(conditions,
			"expiry_date IS NOT NULL AND expiry_date >= CURRENT_DATE AND expiry_date < CURRENT_DATE + make_interval(days => "+arg(filter.ExpiringDays)+")")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Aggregates cover the entire filtered set, not just this page. The
	// three stock buckets are disjoint so their sum never double-counts.
	page := &ItemPage{Page: filter.Page, PerPage: filter.PerPage}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_value), 0),
		       COUNT(*) FILTER (WHERE qty_current > 0 AND qty_current > qty_minimum / 2 AND qty_current <= qty_minimum),
		       COUNT(*) FILTER (WHERE qty_current > 0 AND qty_current <= qty_minimum / 2),
		       COUNT(*) FILTER (WHERE qty_current = 0)
		FROM inventory_items`+where, args...).Scan(
		&page.Total,
		&page.Aggregates.TotalValue,
		&page.Aggregates.LowStockCount,
		&page.Aggregates.CriticalCount,
		&page.Aggregates.OutOfStockCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate items: %w", err)
	}

	sortKey := filter.Sort
	direction := "ASC"
	if strings.HasPrefix(sortKey, "-") {
		sortKey = sortKey[1:]
		direction = "DESC"
	}
	column, ok := sortColumns[sortKey]
	if !ok {
		column, direction = "item_code", "ASC"
	}
	orderBy := fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction)

	limitOffset := fmt.Sprintf(" LIMIT %s OFFSET %s",
		arg(filter.PerPage), arg((filter.Page-1)*filter.PerPage))

	rows, err := s.pool.Query(ctx,
		"SELECT "+itemColumns+" FROM inventory_items"+where+orderBy+limitOffset, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	page.Items = []InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		page.Items = append(page.Items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return page, nil
}

// ── TX-scoped writes ──────────────────────────────────────────────────────────

// CreateTx inserts a new item within the caller's transaction. Input must
// already be normalized and validated.
func (s *InventoryStore) CreateTx(ctx context.Context, tx pgx.Tx, in ItemInput) (*InventoryItem, error) {
	it, err := scanItem(tx.QueryRow(ctx, `
		INSERT INTO inventory_items (
			item_code, name, description, category, brand, model, unit,
			qty_current, qty_reserved, qty_minimum, qty_maximum,
			department_id, warehouse, section, rack, shelf,
			unit_price, currency, total_value, expiry_date, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING `+itemColumns,
		in.ItemCode, in.Name, in.Description, in.Category, in.Brand, in.Model, string(in.Unit),
		in.Quantity.Current, in.Quantity.Minimum, in.Quantity.Maximum,
		in.DepartmentID, in.Warehouse, in.Section, in.Rack, in.Shelf,
		in.UnitPrice, in.Currency, totalValue(in.UnitPrice, in.Quantity.Current),
		in.ExpiryDate, string(in.Status),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, &DuplicateItemCodeError{ItemCode: in.ItemCode}
			case "23503":
				return nil, &NotFoundError{Entity: "department", Ref: strconv.Itoa(in.DepartmentID)}
			}
		}
		return nil, fmt.Errorf("failed to insert item %s: %w", in.ItemCode, err)
	}
	return it, nil
}

// GetForUpdateTx loads an item under FOR UPDATE so concurrent mutations
// of the same record serialize on the row lock.
func (s *InventoryStore) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int) (*InventoryItem, error) {
	it, err := scanItem(tx.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE id = $1 AND NOT is_deleted FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to lock item %d: %w", id, err)
	}
	return it, nil
}

// UpdateTx applies a patch to an item already locked by GetForUpdateTx
// and writes it back. Total value is recomputed from the final unit
// price and current quantity.
func (s *InventoryStore) UpdateTx(ctx context.Context, tx pgx.Tx, it *InventoryItem, patch ItemPatch) (*InventoryItem, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	patch.Apply(it)
	if err := it.Quantity.ValidateExisting(); err != nil {
		return nil, err
	}
	it.Cost.TotalValue = totalValue(it.Cost.UnitPrice, it.Quantity.Current)

	updated, err := scanItem(tx.QueryRow(ctx, `
		UPDATE inventory_items
		SET name = $1, description = $2, category = $3, brand = $4, model = $5, unit = $6,
		    qty_current = $7, qty_minimum = $8, qty_maximum = $9,
		    department_id = $10, warehouse = $11, section = $12, rack = $13, shelf = $14,
		    unit_price = $15, currency = $16, total_value = $17, expiry_date = $18, status = $19,
		    last_updated = NOW()
		WHERE id = $20
		RETURNING `+itemColumns,
		it.Name, it.Description, it.Category, it.Brand, it.Model, string(it.Unit),
		it.Quantity.Current, it.Quantity.Minimum, it.Quantity.Maximum,
		it.Location.DepartmentID, it.Location.Warehouse, it.Location.Section, it.Location.Rack, it.Location.Shelf,
		it.Cost.UnitPrice, it.Cost.Currency, it.Cost.TotalValue, it.ExpiryDate, string(it.Status),
		it.ID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, &NotFoundError{Entity: "department", Ref: strconv.Itoa(it.Location.DepartmentID)}
		}
		return nil, fmt.Errorf("failed to update item %d: %w", it.ID, err)
	}
	return updated, nil
}

// ── Reservations ──────────────────────────────────────────────────────────────

// Reserve soft-locks quantity for an item. The row lock makes the
// available-quantity check and the increment a single serialized step,
// so concurrent reservations cannot oversell.
func (s *InventoryStore) Reserve(ctx context.Context, id, quantity int) (*InventoryItem, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be positive"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	it, err := s.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if it.Quantity.Available() < quantity {
		return nil, &InsufficientStockError{
			ItemCode:  it.ItemCode,
			Available: it.Quantity.Available(),
			Requested: quantity,
		}
	}

	updated, err := scanItem(tx.QueryRow(ctx, `
		UPDATE inventory_items
		SET qty_reserved = qty_reserved + $1, last_updated = NOW()
		WHERE id = $2
		RETURNING `+itemColumns, quantity, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reserve stock for item %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}
	return updated, nil
}

// Release returns reserved quantity to the available pool.
func (s *InventoryStore) Release(ctx context.Context, id, quantity int) (*InventoryItem, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be positive"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	it, err := s.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if it.Quantity.Reserved < quantity {
		return nil, &InvalidReleaseError{
			ItemCode:  it.ItemCode,
			Reserved:  it.Quantity.Reserved,
			Requested: quantity,
		}
	}

	updated, err := scanItem(tx.QueryRow(ctx, `
		UPDATE inventory_items
		SET qty_reserved = qty_reserved - $1, last_updated = NOW()
		WHERE id = $2
		RETURNING `+itemColumns, quantity, id))
	if err != nil {
		return nil, fmt.Errorf("failed to release stock for item %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit release: %w", err)
	}
	return updated, nil
}

// ── Deletes ───────────────────────────────────────────────────────────────────

// SoftDelete hides an item from reads and frees its code for reuse.
// Ledger rows keep their inventory_id reference.
func (s *InventoryStore) SoftDelete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE inventory_items SET is_deleted = true, last_updated = NOW() WHERE id = $1 AND NOT is_deleted", id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "item", Ref: strconv.Itoa(id)}
	}
	return nil
}

// HardDelete removes the row outright. Ledger rows survive with their
// inventory_id nulled by the FK and the denormalized item_code intact.
func (s *InventoryStore) HardDelete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM inventory_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "item", Ref: strconv.Itoa(id)}
	}
	return nil
}
