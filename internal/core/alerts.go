package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AlertService answers the read-side stock questions: what is running
// low, what is critical, what expires soon. These are plain filtered
// queries re-executed per call; nothing is cached or pushed.
type AlertService struct {
	pool        *pgxpool.Pool
	horizonDays int
}

// NewAlertService constructs an AlertService. horizonDays is the default
// look-ahead window for Expiring when the caller does not pass one.
func NewAlertService(pool *pgxpool.Pool, horizonDays int) *AlertService {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return &AlertService{pool: pool, horizonDays: horizonDays}
}

// LowStock returns items at or below their minimum quantity, most
// depleted first. departmentID of 0 means all departments.
func (s *AlertService) LowStock(ctx context.Context, departmentID int) ([]InventoryItem, error) {
	return s.collect(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE NOT is_deleted
		  AND qty_current <= qty_minimum
		  AND ($1 = 0 OR department_id = $1)
		ORDER BY qty_current ASC, item_code ASC`, departmentID)
}

// CriticalStock returns items at or below half their minimum quantity,
// including those fully out of stock.
func (s *AlertService) CriticalStock(ctx context.Context, departmentID int) ([]InventoryItem, error) {
	return s.collect(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE NOT is_deleted
		  AND qty_current <= qty_minimum / 2
		  AND ($1 = 0 OR department_id = $1)
		ORDER BY qty_current ASC, item_code ASC`, departmentID)
}

// Expiring returns items whose expiry date falls within the next `days`
// days, soonest first. days of 0 or less uses the configured horizon.
func (s *AlertService) Expiring(ctx context.Context, departmentID, days int) ([]InventoryItem, error) {
	if days <= 0 {
		days = s.horizonDays
	}
	return s.collect(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE NOT is_deleted
		  AND expiry_date IS NOT NULL
		  AND expiry_date >= CURRENT_DATE
		  AND expiry_date < CURRENT_DATE + make_interval(days => $2)
		  AND ($1 = 0 OR department_id = $1)
		ORDER BY expiry_date ASC, item_code ASC`, departmentID, days)
}

// Expired returns items already past their expiry date.
func (s *AlertService) Expired(ctx context.Context, departmentID int) ([]InventoryItem, error) {
	return s.collect(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE NOT is_deleted
		  AND expiry_date IS NOT NULL
		  AND expiry_date < CURRENT_DATE
		  AND ($1 = 0 OR department_id = $1)
		ORDER BY expiry_date ASC, item_code ASC`, departmentID)
}

func (s *AlertService) collect(ctx context.Context, query string, args ...any) ([]InventoryItem, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert items: %w", err)
	}
	defer rows.Close()

	items := []InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert items: %w", err)
	}
	return items, nil
}
