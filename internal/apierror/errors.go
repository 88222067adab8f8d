package apierror

// errors.go: typed domain errors raised by services and mapped to HTTP status
// codes in the handlers (via errors.As). Keeping the taxonomy here, next to the
// response envelope, keeps every error that can reach a client in one package.

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AuthError means there is no valid session behind the request.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Reason
}

// OrgResolutionError means the authenticated employee has no bound organization.
type OrgResolutionError struct {
	EmployeeID string
}

func (e *OrgResolutionError) Error() string {
	return fmt.Sprintf("employee %s is not bound to an organization", e.EmployeeID)
}

// ValidationError flags a request that is well-formed JSON but semantically
// invalid (unknown section tag, zero-quantity line, bad filter value).
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Detail
	}
	return e.Field + ": " + e.Detail
}

// NotFoundError covers lookups of unknown orders, products or employees.
type NotFoundError struct {
	Kind string // "order" | "product" | "employee" | "receipt"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// PersistenceError wraps a failed remote read/write. Local state stays the
// source of truth for the session; callers log these instead of rolling back.
type PersistenceError struct {
	Op  string // "load" | "save"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StockShortfall describes one cart line that cannot be fulfilled.
type StockShortfall struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Required  decimal.Decimal `json:"required_kg"`
	Available decimal.Decimal `json:"available_kg"`
}

// InsufficientStockError reports every failing line of a checkout at once,
// not just the first.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		names = append(names, fmt.Sprintf("%s (need %s kg, have %s kg)",
			s.Name, s.Required.String(), s.Available.String()))
	}
	return "insufficient stock: " + strings.Join(names, "; ")
}
