package core

import "fmt"

// ValidationError rejects malformed input before any mutation. Field names
// the offending field so callers can surface it verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DuplicateItemCodeError signals a create colliding with an existing
// non-deleted item code (case-insensitive).
type DuplicateItemCodeError struct {
	ItemCode string
}

func (e *DuplicateItemCodeError) Error() string {
	return fmt.Sprintf("item code %s already exists", e.ItemCode)
}

// DuplicateDepartmentCodeError signals a department create colliding with
// an existing non-deleted department code.
type DuplicateDepartmentCodeError struct {
	Code string
}

func (e *DuplicateDepartmentCodeError) Error() string {
	return fmt.Sprintf("department code %s already exists", e.Code)
}

// NotFoundError covers any entity lookup miss. Soft-deleted records are
// invisible to normal reads and also surface as NotFound.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// InsufficientStockError rejects a reservation exceeding the available
// (current minus reserved) quantity.
type InsufficientStockError struct {
	ItemCode  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: available %d, requested %d",
		e.ItemCode, e.Available, e.Requested)
}

// InvalidReleaseError rejects a release exceeding the reserved quantity,
// which would silently double-release stock.
type InvalidReleaseError struct {
	ItemCode  string
	Reserved  int
	Requested int
}

func (e *InvalidReleaseError) Error() string {
	return fmt.Sprintf("invalid release for item %s: reserved %d, requested %d",
		e.ItemCode, e.Reserved, e.Requested)
}

// DependencyConflictError blocks a delete while dependent records still
// reference the entity.
type DependencyConflictError struct {
	Entity     string
	Ref        string
	Dependents int
}

func (e *DependencyConflictError) Error() string {
	return fmt.Sprintf("%s %s has %d active inventory items and cannot be deleted",
		e.Entity, e.Ref, e.Dependents)
}
