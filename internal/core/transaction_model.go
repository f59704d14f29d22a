package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxnInbound    TransactionType = "inbound"
	TxnOutbound   TransactionType = "outbound"
	TxnTransfer   TransactionType = "transfer"
	TxnAdjustment TransactionType = "adjustment"
	TxnDamaged    TransactionType = "damaged"
	TxnExpired    TransactionType = "expired"
)

func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TxnInbound, TxnOutbound, TxnTransfer, TxnAdjustment, TxnDamaged, TxnExpired:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnApproved  TransactionStatus = "approved"
	TxnCompleted TransactionStatus = "completed"
	TxnCancelled TransactionStatus = "cancelled"
)

func ValidTransactionStatus(s TransactionStatus) bool {
	switch s {
	case TxnPending, TxnApproved, TxnCompleted, TxnCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a status change is legal. Completed and
// cancelled are terminal.
func CanTransition(from, to TransactionStatus) bool {
	switch from {
	case TxnPending:
		return to == TxnApproved || to == TxnCompleted || to == TxnCancelled
	case TxnApproved:
		return to == TxnCompleted || to == TxnCancelled
	}
	return false
}

// Endpoint identifies one side of a stock movement. Either field may be
// empty; adjustments recorded against a single department use only one
// endpoint.
type Endpoint struct {
	DepartmentID *int   `json:"department_id,omitempty"`
	Warehouse    string `json:"warehouse,omitempty"`
}

// Transaction is one immutable row in the movement ledger. InventoryID
// goes NULL if the item is later hard-deleted; ItemCode is denormalized
// at append time so the audit trail stays readable either way.
type Transaction struct {
	ID               int               `json:"id"`
	TransactionID    string            `json:"transaction_id"`
	Type             TransactionType   `json:"type"`
	InventoryID      *int              `json:"inventory_id,omitempty"`
	ItemCode         string            `json:"item_code"`
	Quantity         int               `json:"quantity"`
	From             Endpoint          `json:"from"`
	To               Endpoint          `json:"to"`
	Reason           string            `json:"reason"`
	Status           TransactionStatus `json:"status"`
	ExpectedDelivery *time.Time        `json:"expected_delivery,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	IsDeleted        bool              `json:"is_deleted,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

const maxReasonLength = 500

type TransactionInput struct {
	Type             TransactionType   `json:"type"`
	InventoryID      *int              `json:"inventory_id"`
	ItemCode         string            `json:"item_code"`
	Quantity         int               `json:"quantity"`
	From             Endpoint          `json:"from"`
	To               Endpoint          `json:"to"`
	Reason           string            `json:"reason"`
	Status           TransactionStatus `json:"status"`
	ExpectedDelivery *time.Time        `json:"expected_delivery"`
	Notes            string            `json:"notes"`
}

func (in *TransactionInput) Normalize() {
	in.ItemCode = strings.ToUpper(strings.TrimSpace(in.ItemCode))
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Status == "" {
		in.Status = TxnCompleted
	}
}

func (in *TransactionInput) Validate() error {
	if !ValidTransactionType(in.Type) {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown transaction type %q", in.Type)}
	}
	if in.ItemCode == "" {
		return &ValidationError{Field: "item_code", Message: "is required"}
	}
	if in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if in.Reason == "" {
		return &ValidationError{Field: "reason", Message: "is required"}
	}
	if utf8.RuneCountInString(in.Reason) > maxReasonLength {
		return &ValidationError{Field: "reason", Message: fmt.Sprintf("exceeds %d characters", maxReasonLength)}
	}
	if !ValidTransactionStatus(in.Status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", in.Status)}
	}
	return nil
}

// NewTransactionID mints a human-scannable ledger reference. The UTC
// timestamp keeps references roughly sortable; the uuid fragment breaks
// same-second collisions. A unique index backstops the remainder.
func NewTransactionID() string {
	return fmt.Sprintf("TXN-%s-%s", time.Now().UTC().Format("20060102150405"), uuid.NewString()[:6])
}
