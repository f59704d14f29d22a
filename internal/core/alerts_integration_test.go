package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"relief-ledger/internal/core"
)

// seedAlertItems creates one item per stock bucket across two departments:
//
//	BLKT001  dept 1  100/min 20  adequate
//	TENT001  dept 1   15/min 20  low
//	WTR500   dept 2    5/min 20  critical
//	MEDKIT1  dept 2    0/min 10  out of stock
func seedAlertItems(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	coord, _ := newTestCoordinator(pool)
	ctx := context.Background()

	seeds := []struct {
		code, name string
		dept       int
		current    int
		minimum    int
	}{
		{"BLKT001", "Wool Blanket", 1, 100, 20},
		{"TENT001", "Family Tent", 1, 15, 20},
		{"WTR500", "Water Bottle 500ml", 2, 5, 20},
		{"MEDKIT1", "First Aid Kit", 2, 0, 10},
	}
	for _, s := range seeds {
		in := core.ItemInput{
			ItemCode:     s.code,
			Name:         s.name,
			Category:     "relief",
			Unit:         core.UnitPieces,
			Quantity:     core.Quantity{Current: s.current, Minimum: s.minimum, Maximum: 1000},
			DepartmentID: s.dept,
			UnitPrice:    decimal.NewFromInt(5),
			Currency:     "USD",
		}
		if _, err := coord.CreateItem(ctx, in); err != nil {
			t.Fatalf("Seeding %s failed: %v", s.code, err)
		}
	}
}

func codes(items []core.InventoryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ItemCode
	}
	return out
}

func TestAlertService_LowStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	seedAlertItems(t, pool)
	alerts := core.NewAlertService(pool, 30)

	// Low is inclusive: it sweeps up critical and out-of-stock items too,
	// most depleted first.
	low, err := alerts.LowStock(ctx, 0)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	got := codes(low)
	want := []string{"MEDKIT1", "WTR500", "TENT001"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}

	// Department scoping
	low, err = alerts.LowStock(ctx, 1)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 1 || low[0].ItemCode != "TENT001" {
		t.Errorf("Expected only TENT001 in department 1, got %v", codes(low))
	}
}

func TestAlertService_CriticalStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	seedAlertItems(t, pool)
	alerts := core.NewAlertService(pool, 30)

	critical, err := alerts.CriticalStock(ctx, 0)
	if err != nil {
		t.Fatalf("CriticalStock failed: %v", err)
	}
	got := codes(critical)
	if len(got) != 2 || got[0] != "MEDKIT1" || got[1] != "WTR500" {
		t.Errorf("Expected MEDKIT1 and WTR500 critical, got %v", got)
	}
}

func TestAlertService_CriticalBoundary(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	coord, _ := newTestCoordinator(pool)
	alerts := core.NewAlertService(pool, 30)

	// With a minimum of 21 the critical line sits at floor(21/2) = 10
	in := blanketInput()
	in.Quantity = core.Quantity{Current: 10, Minimum: 21, Maximum: 500}
	if _, err := coord.CreateItem(ctx, in); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	in2 := blanketInput()
	in2.ItemCode = "BLKT002"
	in2.Quantity = core.Quantity{Current: 11, Minimum: 21, Maximum: 500}
	if _, err := coord.CreateItem(ctx, in2); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	critical, err := alerts.CriticalStock(ctx, 0)
	if err != nil {
		t.Fatalf("CriticalStock failed: %v", err)
	}
	if len(critical) != 1 || critical[0].ItemCode != "BLKT001" {
		t.Errorf("Expected only the 10/21 item critical, got %v", codes(critical))
	}
	low, err := alerts.LowStock(ctx, 0)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 2 {
		t.Errorf("Expected both items at or below minimum, got %v", codes(low))
	}
}

func TestAlertService_Expiring(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	coord, _ := newTestCoordinator(pool)
	alerts := core.NewAlertService(pool, 30)

	mkItem := func(code string, expiry *time.Time) {
		in := blanketInput()
		in.ItemCode = code
		in.Name = "Ration Pack " + code
		in.ExpiryDate = expiry
		if _, err := coord.CreateItem(ctx, in); err != nil {
			t.Fatalf("CreateItem %s failed: %v", code, err)
		}
	}
	in10 := time.Now().AddDate(0, 0, 10)
	in45 := time.Now().AddDate(0, 0, 45)
	past := time.Now().AddDate(0, 0, -3)
	mkItem("RATION01", &in10)
	mkItem("RATION02", &in45)
	mkItem("RATION03", &past)
	mkItem("RATION04", nil) // never expires

	// Default horizon of 30 days catches only the 10-day item
	soon, err := alerts.Expiring(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Expiring failed: %v", err)
	}
	if len(soon) != 1 || soon[0].ItemCode != "RATION01" {
		t.Errorf("Expected only RATION01 within 30 days, got %v", codes(soon))
	}

	// A 60-day window picks up the 45-day item as well, soonest first
	soon, err = alerts.Expiring(ctx, 0, 60)
	if err != nil {
		t.Fatalf("Expiring failed: %v", err)
	}
	got := codes(soon)
	if len(got) != 2 || got[0] != "RATION01" || got[1] != "RATION02" {
		t.Errorf("Expected RATION01 then RATION02 within 60 days, got %v", got)
	}

	// Already-expired stock belongs to Expired, not Expiring
	expired, err := alerts.Expired(ctx, 0)
	if err != nil {
		t.Fatalf("Expired failed: %v", err)
	}
	if len(expired) != 1 || expired[0].ItemCode != "RATION03" {
		t.Errorf("Expected only RATION03 expired, got %v", codes(expired))
	}
}
