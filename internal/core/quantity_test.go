package core_test

import (
	"testing"

	"relief-ledger/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestQuantity_Available(t *testing.T) {
	q := core.Quantity{Current: 100, Reserved: 30}
	assert.Equal(t, 70, q.Available())

	q = core.Quantity{Current: 100, Reserved: 100}
	assert.Equal(t, 0, q.Available())
}

func TestQuantity_StockStatus(t *testing.T) {
	tests := []struct {
		name    string
		current int
		minimum int
		want    core.StockStatus
	}{
		{"zero stock is out of stock", 0, 20, core.StockOutOfStock},
		{"zero stock with zero minimum", 0, 0, core.StockOutOfStock},
		{"well above minimum", 100, 20, core.StockAdequate},
		{"exactly at minimum is low", 20, 20, core.StockLow},
		{"just below minimum is low", 19, 20, core.StockLow},
		{"just above half minimum is low", 11, 20, core.StockLow},
		{"exactly half minimum is critical", 10, 20, core.StockCritical},
		{"below half minimum is critical", 5, 20, core.StockCritical},
		{"odd minimum floors the critical cutoff", 10, 21, core.StockCritical},
		{"above floored cutoff is low", 11, 21, core.StockLow},
		{"one above minimum is adequate", 21, 20, core.StockAdequate},
		{"nonzero stock with zero minimum is adequate", 1, 0, core.StockAdequate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := core.Quantity{Current: tt.current, Minimum: tt.minimum, Maximum: 500}
			assert.Equal(t, tt.want, q.StockStatus())
		})
	}
}

func TestQuantity_Validate(t *testing.T) {
	tests := []struct {
		name      string
		q         core.Quantity
		wantField string
	}{
		{"valid", core.Quantity{Current: 100, Minimum: 20, Maximum: 500}, ""},
		{"valid zero everything", core.Quantity{}, ""},
		{"negative current", core.Quantity{Current: -1, Maximum: 10}, "quantity.current"},
		{"negative reserved", core.Quantity{Reserved: -5, Maximum: 10}, "quantity.reserved"},
		{"negative minimum", core.Quantity{Minimum: -1}, "quantity.minimum"},
		{"negative maximum", core.Quantity{Maximum: -1}, "quantity.maximum"},
		{"maximum below minimum", core.Quantity{Minimum: 50, Maximum: 10}, "quantity.maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *core.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestQuantity_ValidateExisting(t *testing.T) {
	ok := core.Quantity{Current: 10, Reserved: 10, Minimum: 5, Maximum: 50}
	assert.NoError(t, ok.ValidateExisting())

	bad := core.Quantity{Current: 10, Reserved: 11, Minimum: 5, Maximum: 50}
	var ve *core.ValidationError
	assert.ErrorAs(t, bad.ValidateExisting(), &ve)
	assert.Equal(t, "quantity.reserved", ve.Field)
}
