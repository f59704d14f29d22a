package core_test

import (
	"errors"
	"strconv"
	"testing"

	"relief-ledger/internal/core"
)

func TestDepartmentService_CreateAndGet(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	deps := core.NewDepartmentService(pool)

	created, err := deps.Create(ctx, core.DepartmentInput{
		Code:          "shelter01",
		Name:          "  Shelter Operations  ",
		ContactPerson: "Meera Joshi",
		Phone:         "+91-98200-11111",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Code != "SHELTER01" {
		t.Errorf("Expected uppercased code, got %s", created.Code)
	}
	if created.Name != "Shelter Operations" {
		t.Errorf("Expected trimmed name, got %q", created.Name)
	}

	byID, err := deps.Get(ctx, strconv.Itoa(created.ID))
	if err != nil {
		t.Fatalf("Get by id failed: %v", err)
	}
	if byID.Code != "SHELTER01" {
		t.Errorf("Get by id returned wrong department: %s", byID.Code)
	}

	byCode, err := deps.Get(ctx, "shelter01")
	if err != nil {
		t.Fatalf("Get by code failed: %v", err)
	}
	if byCode.ID != created.ID {
		t.Errorf("Get by code returned wrong department: %d", byCode.ID)
	}

	var nf *core.NotFoundError
	if _, err := deps.Get(ctx, "NOSUCH99"); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestDepartmentService_DuplicateCode(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	deps := core.NewDepartmentService(pool)

	// LOGISTICS is seeded; a lowercase variant must still collide
	_, err := deps.Create(ctx, core.DepartmentInput{Code: "logistics", Name: "Dup"})
	var dup *core.DuplicateDepartmentCodeError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateDepartmentCodeError, got %v", err)
	}
	if dup.Code != "LOGISTICS" {
		t.Errorf("Expected normalized code in the error, got %s", dup.Code)
	}
}

func TestDepartmentService_Validation(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	deps := core.NewDepartmentService(pool)

	cases := []struct {
		name  string
		input core.DepartmentInput
		field string
	}{
		{"short code", core.DepartmentInput{Code: "AB", Name: "Too Short"}, "code"},
		{"symbols in code", core.DepartmentInput{Code: "MED-01", Name: "Dashed"}, "code"},
		{"missing name", core.DepartmentInput{Code: "WATER01", Name: "   "}, "name"},
	}
	for _, tc := range cases {
		_, err := deps.Create(ctx, tc.input)
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}
		if verr.Field != tc.field {
			t.Errorf("%s: expected field %s, got %s", tc.name, tc.field, verr.Field)
		}
	}
}

func TestDepartmentService_List(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	deps := core.NewDepartmentService(pool)

	if _, err := deps.Create(ctx, core.DepartmentInput{Code: "AAARELIEF", Name: "First Alphabetically"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := deps.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	// Seeded LOGISTICS and MEDICAL plus the new one, ordered by code
	if len(all) != 3 {
		t.Fatalf("Expected 3 departments, got %d", len(all))
	}
	if all[0].Code != "AAARELIEF" || all[1].Code != "LOGISTICS" || all[2].Code != "MEDICAL" {
		t.Errorf("Unexpected ordering: %s, %s, %s", all[0].Code, all[1].Code, all[2].Code)
	}
}

func TestDepartmentService_DeleteGatedByInventory(t *testing.T) {
	pool, ctx := setupTestDB(t)
	defer pool.Close()
	deps := core.NewDepartmentService(pool)
	coord, _ := newTestCoordinator(pool)

	it, err := coord.CreateItem(ctx, blanketInput()) // lives in department 1
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	err = deps.Delete(ctx, 1)
	var conflict *core.DependencyConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected DependencyConflictError, got %v", err)
	}
	if conflict.Dependents != 1 {
		t.Errorf("Expected 1 dependent item, got %d", conflict.Dependents)
	}

	// Retiring the item unblocks the department
	if err := coord.DeleteItem(ctx, it.ID, false); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if err := deps.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete after clearing inventory failed: %v", err)
	}

	exists, err := deps.Exists(ctx, 1)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected deleted department to report absent")
	}
	var nf *core.NotFoundError
	if err := deps.Delete(ctx, 1); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}

	// The code frees up for reuse once the old row is flagged
	if _, err := deps.Create(ctx, core.DepartmentInput{Code: "LOGISTICS", Name: "Logistics Rebuilt"}); err != nil {
		t.Errorf("Expected code reuse after soft delete, got %v", err)
	}
}
