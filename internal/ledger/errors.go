package ledger

import "errors"

// Validation and lookup failures. None of them leave the document modified.
var (
	ErrInvalidSupplier   = errors.New("ledger: supplier is required")
	ErrInvalidCost       = errors.New("ledger: cost per bottle must be greater than zero")
	ErrInvalidMode       = errors.New("ledger: import type must be small, large or both")
	ErrInvalidQuantity   = errors.New("ledger: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	ErrImportNotFound    = errors.New("ledger: import not found")
	ErrSaleNotFound      = errors.New("ledger: sale not found")
	ErrNotConfirmed      = errors.New("ledger: operation requires confirmation")
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidSupplier) ||
		errors.Is(err, ErrInvalidCost) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidQuantity)
}

// IsNotFound reports whether err is a missing import or sale.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrImportNotFound) || errors.Is(err, ErrSaleNotFound)
}
