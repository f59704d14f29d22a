package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief-ledger/internal/core"
)

func validItemInput() core.ItemInput {
	return core.ItemInput{
		ItemCode:     "BLKT001",
		Name:         "Wool Blanket",
		Unit:         core.UnitPieces,
		Quantity:     core.Quantity{Current: 100, Minimum: 20, Maximum: 500},
		DepartmentID: 1,
		UnitPrice:    decimal.NewFromFloat(12.50),
		Currency:     "usd",
	}
}

func TestItemInput_Normalize(t *testing.T) {
	in := validItemInput()
	in.ItemCode = "  blkt001 "
	in.Name = " Wool Blanket "
	in.Status = ""

	in.Normalize()

	assert.Equal(t, "BLKT001", in.ItemCode)
	assert.Equal(t, "Wool Blanket", in.Name)
	assert.Equal(t, "USD", in.Currency)
	assert.Equal(t, core.ItemAvailable, in.Status)
}

func TestItemInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.ItemInput)
		field  string
	}{
		{"code too short", func(in *core.ItemInput) { in.ItemCode = "AB" }, "item_code"},
		{"code too long", func(in *core.ItemInput) { in.ItemCode = "ABCDEFGHIJKLMNOPQRSTU" }, "item_code"},
		{"code with dash", func(in *core.ItemInput) { in.ItemCode = "BLKT-001" }, "item_code"},
		{"code lowercase", func(in *core.ItemInput) { in.ItemCode = "blkt001" }, "item_code"},
		{"missing name", func(in *core.ItemInput) { in.Name = "" }, "name"},
		{"unknown unit", func(in *core.ItemInput) { in.Unit = "tons" }, "unit"},
		{"unknown status", func(in *core.ItemInput) { in.Status = "broken" }, "status"},
		{"missing department", func(in *core.ItemInput) { in.DepartmentID = 0 }, "department_id"},
		{"negative price", func(in *core.ItemInput) { in.UnitPrice = decimal.NewFromInt(-1) }, "unit_price"},
		{"negative current", func(in *core.ItemInput) { in.Quantity.Current = -1 }, "quantity.current"},
		{"max below min", func(in *core.ItemInput) { in.Quantity.Maximum = 5 }, "quantity.maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validItemInput()
			in.Status = core.ItemAvailable
			tt.mutate(&in)

			err := in.Validate()
			require.Error(t, err)

			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("valid input passes", func(t *testing.T) {
		in := validItemInput()
		in.Normalize()
		assert.NoError(t, in.Validate())
	})

	t.Run("boundary code lengths pass", func(t *testing.T) {
		for _, code := range []string{"AB1", "A2345678901234567890"} {
			in := validItemInput()
			in.ItemCode = code
			in.Normalize()
			assert.NoError(t, in.Validate(), "code %q", code)
		}
	})
}

func TestItemPatch_Apply(t *testing.T) {
	it := core.InventoryItem{
		ItemCode: "BLKT001",
		Name:     "Wool Blanket",
		Unit:     core.UnitPieces,
		Quantity: core.Quantity{Current: 100, Reserved: 10, Minimum: 20, Maximum: 500},
		Location: core.Location{DepartmentID: 1, Warehouse: "Main"},
		Cost:     core.Cost{UnitPrice: decimal.NewFromInt(10)},
		Status:   core.ItemAvailable,
	}

	name := " Thermal Blanket "
	current := 80
	status := core.ItemDamaged
	price := decimal.NewFromFloat(11.25)
	patch := core.ItemPatch{
		Name:      &name,
		Current:   &current,
		Status:    &status,
		UnitPrice: &price,
	}
	require.NoError(t, patch.Validate())

	patch.Apply(&it)

	assert.Equal(t, "Thermal Blanket", it.Name)
	assert.Equal(t, 80, it.Quantity.Current)
	assert.Equal(t, 10, it.Quantity.Reserved, "reserved is untouched by patches")
	assert.Equal(t, core.ItemDamaged, it.Status)
	assert.True(t, price.Equal(it.Cost.UnitPrice))
	assert.Equal(t, "Main", it.Location.Warehouse, "unset fields stay put")
}

func TestItemPatch_Validate(t *testing.T) {
	blank := "  "
	negative := -5
	badUnit := core.Unit("tons")

	tests := []struct {
		name  string
		patch core.ItemPatch
		field string
	}{
		{"blank name", core.ItemPatch{Name: &blank}, "name"},
		{"bad unit", core.ItemPatch{Unit: &badUnit}, "unit"},
		{"negative current", core.ItemPatch{Current: &negative}, "quantity.current"},
		{"negative minimum", core.ItemPatch{Minimum: &negative}, "quantity.minimum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			require.Error(t, err)

			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("empty patch is valid", func(t *testing.T) {
		assert.NoError(t, (&core.ItemPatch{}).Validate())
	})
}

func TestInventoryItem_Expiry(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no expiry date", func(t *testing.T) {
		it := core.InventoryItem{}
		assert.False(t, it.IsExpired(now))
		assert.False(t, it.IsExpiringSoon(now, 30))
	})

	t.Run("already expired", func(t *testing.T) {
		past := now.AddDate(0, 0, -1)
		it := core.InventoryItem{ExpiryDate: &past}
		assert.True(t, it.IsExpired(now))
		assert.False(t, it.IsExpiringSoon(now, 30), "expired items are not expiring soon")
	})

	t.Run("expiring within horizon", func(t *testing.T) {
		soon := now.AddDate(0, 0, 7)
		it := core.InventoryItem{ExpiryDate: &soon}
		assert.False(t, it.IsExpired(now))
		assert.True(t, it.IsExpiringSoon(now, 30))
	})

	t.Run("expiring beyond horizon", func(t *testing.T) {
		far := now.AddDate(0, 0, 60)
		it := core.InventoryItem{ExpiryDate: &far}
		assert.False(t, it.IsExpiringSoon(now, 30))
	})
}

func TestItemFilter_Normalize(t *testing.T) {
	f := core.ItemFilter{Page: 0, PerPage: 0}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PerPage)
	assert.Equal(t, "item_code", f.Sort)

	f = core.ItemFilter{Page: 3, PerPage: 5000, Sort: "-total_value"}
	f.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 100, f.PerPage)
	assert.Equal(t, "-total_value", f.Sort)
}
