package core_test

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"relief-ledger/internal/core"
)

func pendingTransfer(itemCode string, quantity int) core.TransactionInput {
	from, to := 1, 2
	return core.TransactionInput{
		Type:     core.TxnTransfer,
		ItemCode: itemCode,
		Quantity: quantity,
		From:     core.Endpoint{DepartmentID: &from},
		To:       core.Endpoint{DepartmentID: &to},
		Reason:   "Camp relocation",
		Status:   core.TxnPending,
	}
}

func TestTransactionLedger_AppendAndGet(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	ledger := core.NewTransactionLedger(pool)

	txn, err := ledger.Append(ctx, pendingTransfer("BLKT001", 25))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if txn.TransactionID == "" {
		t.Fatal("Expected a TXN reference to be minted")
	}
	if txn.Status != core.TxnPending {
		t.Errorf("Expected pending status, got %s", txn.Status)
	}

	// Get by numeric id
	got, err := ledger.Get(ctx, strconv.Itoa(txn.ID))
	if err != nil {
		t.Fatalf("Get by id failed: %v", err)
	}
	if got.TransactionID != txn.TransactionID {
		t.Errorf("Mismatched transaction: %s vs %s", got.TransactionID, txn.TransactionID)
	}

	// Get by TXN reference, case-insensitively
	got, err = ledger.Get(ctx, strings.ToLower(txn.TransactionID))
	if err != nil {
		t.Fatalf("Get by reference failed: %v", err)
	}
	if got.ID != txn.ID {
		t.Errorf("Expected id %d, got %d", txn.ID, got.ID)
	}

	_, err = ledger.Get(ctx, "TXN-DOES-NOT-EXIST")
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestTransactionLedger_Validation(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	ledger := core.NewTransactionLedger(pool)

	cases := []struct {
		name   string
		mutate func(*core.TransactionInput)
	}{
		{"zero quantity", func(in *core.TransactionInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *core.TransactionInput) { in.Quantity = -10 }},
		{"empty reason", func(in *core.TransactionInput) { in.Reason = "" }},
		{"whitespace reason", func(in *core.TransactionInput) { in.Reason = "   " }},
		{"unknown type", func(in *core.TransactionInput) { in.Type = "teleport" }},
		{"unknown status", func(in *core.TransactionInput) { in.Status = "frozen" }},
	}

	for _, tc := range cases {
		in := pendingTransfer("BLKT001", 10)
		tc.mutate(&in)
		_, err := ledger.Append(ctx, in)
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}

	// Nothing got written along the way
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM stock_transactions").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty ledger after rejected appends, got %d rows", count)
	}
}

func TestTransactionLedger_HistoryOrdering(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	coord, _ := newTestCoordinator(pool)
	ledger := core.NewTransactionLedger(pool)

	it, err := coord.CreateItem(ctx, blanketInput())
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	for i, target := range []int{90, 120, 60} {
		if _, err := coord.AdjustQuantity(ctx, it.ID, target, fmt.Sprintf("Recount %d", i+1)); err != nil {
			t.Fatalf("AdjustQuantity to %d failed: %v", target, err)
		}
	}

	history, err := ledger.ByInventory(ctx, it.ID, 0)
	if err != nil {
		t.Fatalf("ByInventory failed: %v", err)
	}
	// 1 inbound + 3 adjustments, newest first
	if len(history) != 4 {
		t.Fatalf("Expected 4 ledger rows, got %d", len(history))
	}
	if history[0].Reason != "Recount 3" || history[3].Reason != "Initial stock entry" {
		t.Errorf("Unexpected ordering: first=%q last=%q", history[0].Reason, history[3].Reason)
	}
	for i := 0; i < len(history)-1; i++ {
		if history[i].CreatedAt.Before(history[i+1].CreatedAt) {
			t.Errorf("History not newest-first at position %d", i)
		}
	}

	// Limit trims from the newest end
	limited, err := ledger.ByInventory(ctx, it.ID, 2)
	if err != nil {
		t.Fatalf("ByInventory with limit failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Reason != "Recount 3" {
		t.Errorf("Unexpected limited history: %+v", limited)
	}
}

func TestTransactionLedger_AuditSurvivesHardDelete(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	coord, _ := newTestCoordinator(pool)
	ledger := core.NewTransactionLedger(pool)

	it, err := coord.CreateItem(ctx, blanketInput())
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if _, err := coord.AdjustQuantity(ctx, it.ID, 80, "Damaged in transit"); err != nil {
		t.Fatalf("AdjustQuantity failed: %v", err)
	}

	if err := coord.DeleteItem(ctx, it.ID, true); err != nil {
		t.Fatalf("Hard DeleteItem failed: %v", err)
	}

	// The rows survive with the item reference nulled and the code intact
	history, err := ledger.ByItemCode(ctx, "BLKT001", 0)
	if err != nil {
		t.Fatalf("ByItemCode failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 surviving ledger rows, got %d", len(history))
	}
	for _, txn := range history {
		if txn.InventoryID != nil {
			t.Errorf("Expected inventory_id nulled after hard delete, got %v", *txn.InventoryID)
		}
		if txn.ItemCode != "BLKT001" {
			t.Errorf("Expected denormalized item code to survive, got %s", txn.ItemCode)
		}
	}
}

func TestTransactionLedger_StatusWorkflow(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	ledger := core.NewTransactionLedger(pool)

	txn, err := ledger.Append(ctx, pendingTransfer("BLKT001", 10))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// pending → approved → completed
	txn, err = ledger.UpdateStatus(ctx, txn.TransactionID, core.TxnApproved)
	if err != nil {
		t.Fatalf("pending→approved failed: %v", err)
	}
	if txn.Status != core.TxnApproved {
		t.Errorf("Expected approved, got %s", txn.Status)
	}

	txn, err = ledger.UpdateStatus(ctx, txn.TransactionID, core.TxnCompleted)
	if err != nil {
		t.Fatalf("approved→completed failed: %v", err)
	}

	// Completed is terminal
	_, err = ledger.UpdateStatus(ctx, txn.TransactionID, core.TxnCancelled)
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for completed→cancelled, got %v", err)
	}

	// pending → cancelled is allowed; cancelled is terminal
	txn2, err := ledger.Append(ctx, pendingTransfer("WTR500", 5))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := ledger.UpdateStatus(ctx, txn2.TransactionID, core.TxnCancelled); err != nil {
		t.Fatalf("pending→cancelled failed: %v", err)
	}
	if _, err := ledger.UpdateStatus(ctx, txn2.TransactionID, core.TxnApproved); err == nil {
		t.Error("Expected cancelled→approved to fail")
	}

	// Unknown target status is rejected before any lookup
	if _, err := ledger.UpdateStatus(ctx, txn2.TransactionID, "frozen"); err == nil {
		t.Error("Expected unknown status to fail")
	}
}

func TestTransactionLedger_PendingAndOverdue(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	ledger := core.NewTransactionLedger(pool)

	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)

	late := pendingTransfer("BLKT001", 10)
	late.ExpectedDelivery = &yesterday
	if _, err := ledger.Append(ctx, late); err != nil {
		t.Fatalf("Append late transfer failed: %v", err)
	}

	onTime := pendingTransfer("WTR500", 20)
	onTime.ExpectedDelivery = &nextWeek
	if _, err := ledger.Append(ctx, onTime); err != nil {
		t.Fatalf("Append on-time transfer failed: %v", err)
	}

	done := pendingTransfer("MEDKIT1", 5)
	done.Status = core.TxnCompleted
	done.ExpectedDelivery = &yesterday
	if _, err := ledger.Append(ctx, done); err != nil {
		t.Fatalf("Append completed transfer failed: %v", err)
	}

	pending, err := ledger.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("Expected 2 pending transfers, got %d", len(pending))
	}

	overdue, err := ledger.Overdue(ctx)
	if err != nil {
		t.Fatalf("Overdue failed: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ItemCode != "BLKT001" {
		t.Errorf("Expected only the late BLKT001 transfer overdue, got %+v", overdue)
	}
}

func TestTransactionLedger_List(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	ledger := core.NewTransactionLedger(pool)

	for i := 0; i < 3; i++ {
		if _, err := ledger.Append(ctx, pendingTransfer("BLKT001", 10+i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	three := 3
	inbound := core.TransactionInput{
		Type:     core.TxnInbound,
		ItemCode: "WTR500",
		Quantity: 100,
		To:       core.Endpoint{DepartmentID: &three, Warehouse: "Annex"},
		Reason:   "Donation intake",
	}
	// Department 3 does not exist; the append must fail cleanly
	if _, err := ledger.Append(ctx, inbound); err == nil {
		t.Fatal("Expected append with unknown department to fail")
	}
	one := 1
	inbound.To = core.Endpoint{DepartmentID: &one, Warehouse: "Annex"}
	if _, err := ledger.Append(ctx, inbound); err != nil {
		t.Fatalf("Append inbound failed: %v", err)
	}

	// By type
	page, err := ledger.List(ctx, core.TransactionFilter{Type: core.TxnTransfer})
	if err != nil {
		t.Fatalf("List by type failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Expected 3 transfers, got %d", page.Total)
	}

	// By status
	page, err = ledger.List(ctx, core.TransactionFilter{Status: core.TxnCompleted})
	if err != nil {
		t.Fatalf("List by status failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Expected 1 completed transaction, got %d", page.Total)
	}

	// Department matches either endpoint: transfers go 1→2, inbound lands in 1
	page, err = ledger.List(ctx, core.TransactionFilter{DepartmentID: 2})
	if err != nil {
		t.Fatalf("List by department failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Expected 3 transactions touching department 2, got %d", page.Total)
	}

	// Item code filter plus pagination
	page, err = ledger.List(ctx, core.TransactionFilter{ItemCode: "blkt001", PerPage: 2})
	if err != nil {
		t.Fatalf("List by item code failed: %v", err)
	}
	if page.Total != 3 || len(page.Transactions) != 2 {
		t.Errorf("Expected total=3 with 2 on page, got total=%d len=%d", page.Total, len(page.Transactions))
	}
}

func TestTransactionLedger_SoftDelete(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	ledger := core.NewTransactionLedger(pool)

	txn, err := ledger.Append(ctx, pendingTransfer("BLKT001", 10))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := ledger.SoftDelete(ctx, txn.TransactionID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	if _, err := ledger.Get(ctx, txn.TransactionID); err == nil {
		t.Error("Expected Get to miss a soft-deleted transaction")
	}
	page, err := ledger.List(ctx, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("Expected empty list, got %d", page.Total)
	}

	// The row itself is still there; the ledger never loses rows
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM stock_transactions").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected the physical row to survive, got %d rows", count)
	}
}
