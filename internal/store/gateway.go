package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"bakeshop/internal/domain"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// Tx is the set of primitives available inside one transaction. The *ForUpdate
// reads take a row lock, so concurrent checkouts touching the same wallet or
// product serialize on the row until commit or rollback.
type Tx interface {
	WalletForUpdate(userID uint) (*domain.Wallet, error)
	ProductForUpdate(productID uint) (*domain.Product, error)
	CreateSale(sale *domain.Sale) error
	CreateSaleLine(line *domain.SaleLine) error
	DecrementStock(productID uint, qty int) error
	DebitWallet(walletID uint, amount decimal.Decimal) error
	UpdateWalletBalance(walletID uint, balance decimal.Decimal) error
}

// Gateway opens transactions against the relational store. Any error returned
// by fn rolls back every write made through the Tx.
type Gateway interface {
	InTransaction(ctx context.Context, fn func(Tx) error) error
}
