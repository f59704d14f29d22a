// seed loads a demo dataset into a fresh database: relief departments
// plus a starter inventory. Items go through the ledger coordinator so
// every opening balance is booked as an inbound stock transaction.
// Re-running is safe; codes that already exist are left alone.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"relief-ledger/internal/config"
	"relief-ledger/internal/core"
	"relief-ledger/internal/db"
	"relief-ledger/internal/events"
	"relief-ledger/internal/logging"

	"github.com/shopspring/decimal"
)

type seedItem struct {
	code       string
	name       string
	category   string
	unit       core.Unit
	current    int
	minimum    int
	maximum    int
	price      string
	department string
	warehouse  string
	expiryDays int
}

var seedDepartments = []core.DepartmentInput{
	{Code: "LOGISTICS", Name: "Logistics and Distribution", ContactPerson: "R. Iyer", Phone: "+91-98-2041-7788"},
	{Code: "MEDICAL", Name: "Medical Response", ContactPerson: "Dr. A. Sharma", Phone: "+91-99-3310-2244"},
	{Code: "SHELTER", Name: "Shelter and Camp Management", ContactPerson: "P. Nair", Phone: "+91-97-4152-9090"},
	{Code: "NUTRITION", Name: "Food and Nutrition", ContactPerson: "S. Banerjee", Phone: "+91-98-6673-1105"},
}

var seedItems = []seedItem{
	{"BLKT001", "Thermal Blanket", "shelter", core.UnitPieces, 1200, 200, 5000, "350.00", "SHELTER", "Central Depot", 0},
	{"TENT004", "Family Tent 4P", "shelter", core.UnitPieces, 180, 40, 600, "8200.00", "SHELTER", "Central Depot", 0},
	{"TARP6X4", "Tarpaulin 6x4m", "shelter", core.UnitPieces, 950, 150, 3000, "650.00", "SHELTER", "Central Depot", 0},
	{"WTRBTL500", "Water Bottle 500ml", "water", core.UnitPieces, 9600, 2000, 50000, "12.00", "LOGISTICS", "Dock B", 0},
	{"HIVIS01", "Hi-Vis Vest", "logistics", core.UnitPieces, 260, 50, 1000, "240.00", "LOGISTICS", "Dock B", 0},
	{"MEDKIT1", "First Aid Kit", "medical", core.UnitSets, 75, 30, 400, "1500.00", "MEDICAL", "Clinic Store", 0},
	{"ORS012", "ORS Sachet", "medical", core.UnitPackets, 5000, 1000, 20000, "18.50", "MEDICAL", "Clinic Store", 540},
	{"RICE25", "Rice Bag 25kg", "food", core.UnitPieces, 480, 100, 2000, "1100.00", "NUTRITION", "Central Depot", 270},
}

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Environment)
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	store := core.NewInventoryStore(pool)
	ledger := core.NewTransactionLedger(pool)
	departments := core.NewDepartmentService(pool)
	// Seeding stays quiet downstream; nothing should fan out to Kafka.
	coordinator := core.NewLedgerCoordinator(pool, store, ledger, departments,
		events.NewMemoryPublisher(), logger)

	departmentIDs := make(map[string]int, len(seedDepartments))
	for _, input := range seedDepartments {
		dept, err := departments.Create(ctx, input)
		if err != nil {
			var dup *core.DuplicateDepartmentCodeError
			if !errors.As(err, &dup) {
				log.Fatalf("Failed to create department %s: %v", input.Code, err)
			}
			dept, err = departments.Get(ctx, input.Code)
			if err != nil {
				log.Fatalf("Failed to load department %s: %v", input.Code, err)
			}
			log.Printf("Department %s already present.", dept.Code)
		} else {
			log.Printf("Created department %s (%s).", dept.Code, dept.Name)
		}
		departmentIDs[dept.Code] = dept.ID
	}

	created := 0
	for _, item := range seedItems {
		_, err := store.GetByCode(ctx, item.code)
		if err == nil {
			log.Printf("Item %s already present.", item.code)
			continue
		}
		var notFound *core.NotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Failed to check item %s: %v", item.code, err)
		}

		price, err := decimal.NewFromString(item.price)
		if err != nil {
			log.Fatalf("Bad price for %s: %v", item.code, err)
		}

		input := core.ItemInput{
			ItemCode: item.code,
			Name:     item.name,
			Category: item.category,
			Unit:     item.unit,
			Quantity: core.Quantity{
				Current: item.current,
				Minimum: item.minimum,
				Maximum: item.maximum,
			},
			DepartmentID: departmentIDs[item.department],
			Warehouse:    item.warehouse,
			UnitPrice:    price,
			Currency:     "INR",
		}
		if item.expiryDays > 0 {
			expiry := time.Now().AddDate(0, 0, item.expiryDays)
			input.ExpiryDate = &expiry
		}

		if _, err := coordinator.CreateItem(ctx, input); err != nil {
			log.Fatalf("Failed to create item %s: %v", item.code, err)
		}
		log.Printf("Created item %s (%s).", item.code, item.name)
		created++
	}

	log.Printf("Seed complete: %d departments, %d new items.", len(seedDepartments), created)
}
