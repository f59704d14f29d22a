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
)

// TransactionLedger is the append-only movement history. Rows are never
// rewritten after insert; the only mutations are the status workflow for
// pending transfers and the soft-delete flag.
type TransactionLedger struct {
	pool *pgxpool.Pool
}

func NewTransactionLedger(pool *pgxpool.Pool) *TransactionLedger {
	return &TransactionLedger{pool: pool}
}

const txnColumns = `id, transaction_id, type, inventory_id, item_code, quantity,
	from_department_id, from_warehouse, to_department_id, to_warehouse,
	reason, status, expected_delivery, notes, is_deleted, created_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(
		&t.ID, &t.TransactionID, &t.Type, &t.InventoryID, &t.ItemCode, &t.Quantity,
		&t.From.DepartmentID, &t.From.Warehouse, &t.To.DepartmentID, &t.To.Warehouse,
		&t.Reason, &t.Status, &t.ExpectedDelivery, &t.Notes, &t.IsDeleted, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// txnPredicate resolves a caller-supplied reference: a numeric string is
// a row id, anything else is matched against the TXN identifier.
func txnPredicate(ref string) (string, any) {
	if id, err := strconv.Atoi(ref); err == nil {
		return "id = $1", id
	}
	return "upper(transaction_id) = upper($1)", strings.TrimSpace(ref)
}

// AppendTx writes one ledger row within the caller's transaction. The
// LedgerCoordinator uses this so a stock mutation and its ledger entry
// commit or roll back together.
func (l *TransactionLedger) AppendTx(ctx context.Context, tx pgx.Tx, in TransactionInput) (*Transaction, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := scanTransaction(tx.QueryRow(ctx, `
		INSERT INTO stock_transactions (
			transaction_id, type, inventory_id, item_code, quantity,
			from_department_id, from_warehouse, to_department_id, to_warehouse,
			reason, status, expected_delivery, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+txnColumns,
		NewTransactionID(), string(in.Type), in.InventoryID, in.ItemCode, in.Quantity,
		in.From.DepartmentID, in.From.Warehouse, in.To.DepartmentID, in.To.Warehouse,
		in.Reason, string(in.Status), in.ExpectedDelivery, in.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, &NotFoundError{Entity: "department", Ref: pgErr.Detail}
		}
		return nil, fmt.Errorf("failed to append transaction for item %s: %w", in.ItemCode, err)
	}
	return t, nil
}

// Append writes one ledger row in its own transaction. Used for
// standalone records such as transfer requests, which carry no stock
// mutation until approved.
func (l *TransactionLedger) Append(ctx context.Context, in TransactionInput) (*Transaction, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	t, err := l.AppendTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction append: %w", err)
	}
	return t, nil
}

// Get returns one ledger row by numeric id or TXN reference.
func (l *TransactionLedger) Get(ctx context.Context, ref string) (*Transaction, error) {
	predicate, arg := txnPredicate(ref)
	t, err := scanTransaction(l.pool.QueryRow(ctx,
		"SELECT "+txnColumns+" FROM stock_transactions WHERE "+predicate+" AND NOT is_deleted", arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "transaction", Ref: ref}
		}
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", ref, err)
	}
	return t, nil
}

// ByInventory returns the newest ledger rows for one item.
func (l *TransactionLedger) ByInventory(ctx context.Context, inventoryID, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return l.collect(ctx, `
		SELECT `+txnColumns+` FROM stock_transactions
		WHERE inventory_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, inventoryID, limit)
}

// ByItemCode returns history by denormalized code, which still works
// after the item row itself has been hard-deleted.
func (l *TransactionLedger) ByItemCode(ctx context.Context, code string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return l.collect(ctx, `
		SELECT `+txnColumns+` FROM stock_transactions
		WHERE upper(item_code) = upper($1) AND NOT is_deleted
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, strings.TrimSpace(code), limit)
}

// TransactionFilter narrows List. DepartmentID matches either endpoint.
type TransactionFilter struct {
	Type         TransactionType
	Status       TransactionStatus
	DepartmentID int
	ItemCode     string
	Overdue      bool
	Page         int
	PerPage      int
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
}

func (l *TransactionLedger) List(ctx context.Context, filter TransactionFilter) (*TransactionPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	conditions := []string{"NOT is_deleted"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Type != "" {
		conditions = append(conditions, "type = "+arg(string(filter.Type)))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.DepartmentID > 0 {
		p := arg(filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("(from_department_id = %s OR to_department_id = %s)", p, p))
	}
	if filter.ItemCode != "" {
		conditions = append(conditions, "upper(item_code) = upper("+arg(strings.TrimSpace(filter.ItemCode))+")")
	}
	if filter.Overdue {
		conditions = append(conditions, "status = 'pending' AND expected_delivery IS NOT NULL AND expected_delivery < CURRENT_DATE")
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	page := &TransactionPage{Page: filter.Page, PerPage: filter.PerPage}
	if err := l.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM stock_transactions"+where, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	limitOffset := fmt.Sprintf(" LIMIT %s OFFSET %s",
		arg(filter.PerPage), arg((filter.Page-1)*filter.PerPage))

	txns, err := l.collect(ctx,
		"SELECT "+txnColumns+" FROM stock_transactions"+where+
			" ORDER BY created_at DESC, id DESC"+limitOffset, args...)
	if err != nil {
		return nil, err
	}
	page.Transactions = txns
	return page, nil
}

// Pending returns transfer requests still awaiting action, oldest first
// so the queue reads in arrival order.
func (l *TransactionLedger) Pending(ctx context.Context) ([]Transaction, error) {
	return l.collect(ctx, `
		SELECT `+txnColumns+` FROM stock_transactions
		WHERE status = 'pending' AND NOT is_deleted
		ORDER BY created_at ASC, id ASC`)
}

// Overdue returns pending transactions whose expected delivery date has
// passed.
func (l *TransactionLedger) Overdue(ctx context.Context) ([]Transaction, error) {
	return l.collect(ctx, `
		SELECT `+txnColumns+` FROM stock_transactions
		WHERE status = 'pending'
		  AND expected_delivery IS NOT NULL
		  AND expected_delivery < CURRENT_DATE
		  AND NOT is_deleted
		ORDER BY expected_delivery ASC, id ASC`)
}

// UpdateStatus moves a transaction through the pending/approved/
// completed/cancelled workflow. Illegal transitions are rejected without
// touching the row.
func (l *TransactionLedger) UpdateStatus(ctx context.Context, ref string, status TransactionStatus) (*Transaction, error) {
	if !ValidTransactionStatus(status) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	predicate, arg := txnPredicate(ref)
	current, err := scanTransaction(tx.QueryRow(ctx,
		"SELECT "+txnColumns+" FROM stock_transactions WHERE "+predicate+" AND NOT is_deleted FOR UPDATE", arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "transaction", Ref: ref}
		}
		return nil, fmt.Errorf("failed to lock transaction %s: %w", ref, err)
	}

	if !CanTransition(current.Status, status) {
		return nil, &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current.Status, status),
		}
	}

	updated, err := scanTransaction(tx.QueryRow(ctx,
		"UPDATE stock_transactions SET status = $1 WHERE id = $2 RETURNING "+txnColumns,
		string(status), current.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction %s status: %w", ref, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return updated, nil
}

// SoftDelete hides a ledger row from queries. Rows are never removed;
// the audit trail must survive every delete path.
func (l *TransactionLedger) SoftDelete(ctx context.Context, ref string) error {
	predicate, arg := txnPredicate(ref)
	tag, err := l.pool.Exec(ctx,
		"UPDATE stock_transactions SET is_deleted = true WHERE "+predicate+" AND NOT is_deleted", arg)
	if err != nil {
		return fmt.Errorf("failed to soft-delete transaction %s: %w", ref, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "transaction", Ref: ref}
	}
	return nil
}

func (l *TransactionLedger) collect(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}
