package checkout

import (
	"errors"
	"fmt"
)

// Business-rule failures. Voucher rejections propagate as the vouchers
// package's own errors, wrapped; handlers unwrap with errors.Is/As.
var (
	// ErrEmptyCart: the user's cart has no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrConflict: the atomic write lost a race that could not be
	// attributed to a specific line (e.g. duplicate order id). The caller
	// may retry.
	ErrConflict = errors.New("checkout conflict, retry")
)

// InsufficientStockError names the first product whose stock cannot cover
// the requested quantity. Raised both by the advisory pre-check and by the
// authoritative conditional debit inside the transaction.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s", e.ProductName)
}
