package core

// StockStatus is the derived stock-level classification of an item,
// computed from current quantity against the minimum threshold. It is
// never stored.
type StockStatus string

const (
	StockOutOfStock StockStatus = "out_of_stock"
	StockCritical   StockStatus = "critical"
	StockLow        StockStatus = "low_stock"
	StockAdequate   StockStatus = "adequate"
)

// Quantity is the authoritative quantity state of one inventory record.
// Invariants: all fields non-negative, Maximum >= Minimum, and
// Reserved <= Current at all times.
type Quantity struct {
	Current  int `json:"current"`
	Reserved int `json:"reserved"`
	Minimum  int `json:"minimum"`
	Maximum  int `json:"maximum"`
}

// Available is the quantity eligible for new reservations.
func (q Quantity) Available() int {
	return q.Current - q.Reserved
}

// StockStatus classifies current stock against the minimum threshold.
// Out-of-stock wins at zero; the critical cutoff is half the minimum,
// rounded down.
func (q Quantity) StockStatus() StockStatus {
	switch {
	case q.Current == 0:
		return StockOutOfStock
	case q.Current <= q.Minimum/2:
		return StockCritical
	case q.Current <= q.Minimum:
		return StockLow
	default:
		return StockAdequate
	}
}

// Validate checks the structural invariants that hold for any quantity
// state, new or existing.
func (q Quantity) Validate() error {
	switch {
	case q.Current < 0:
		return &ValidationError{Field: "quantity.current", Message: "must not be negative"}
	case q.Reserved < 0:
		return &ValidationError{Field: "quantity.reserved", Message: "must not be negative"}
	case q.Minimum < 0:
		return &ValidationError{Field: "quantity.minimum", Message: "must not be negative"}
	case q.Maximum < 0:
		return &ValidationError{Field: "quantity.maximum", Message: "must not be negative"}
	case q.Maximum < q.Minimum:
		return &ValidationError{Field: "quantity.maximum", Message: "must not be below minimum"}
	}
	return nil
}

// ValidateExisting additionally enforces the reservation invariant, which
// only applies once a record carries reservations.
func (q Quantity) ValidateExisting() error {
	if err := q.Validate(); err != nil {
		return err
	}
	if q.Reserved > q.Current {
		return &ValidationError{Field: "quantity.reserved", Message: "must not exceed current quantity"}
	}
	return nil
}
