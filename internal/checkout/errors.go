package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel failures
var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrWalletNotFound = errors.New("wallet not found")
)

// InsufficientFundsError reports how much the buyer is short.
type InsufficientFundsError struct {
	Shortfall decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %s short", e.Shortfall.StringFixed(2))
}

// ProductNotFoundError names the cart line whose product no longer exists.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError names the product and how many units remain.
type InsufficientStockError struct {
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s: %d available", e.Name, e.Available)
}
