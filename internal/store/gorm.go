package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bakeshop/internal/domain"
)

// Gorm implements Gateway on a GORM connection pool. One transaction per
// logical operation; the pool hands the connection back on commit or rollback.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open GORM handle.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// InTransaction runs fn inside a single database transaction.
func (g *Gorm) InTransaction(ctx context.Context, fn func(Tx) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
}

type gormTx struct {
	tx *gorm.DB
}

// WalletForUpdate reads the user's wallet under SELECT ... FOR UPDATE.
func (t *gormTx) WalletForUpdate(userID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ProductForUpdate reads a product row under SELECT ... FOR UPDATE.
func (t *gormTx) ProductForUpdate(productID uint) (*domain.Product, error) {
	var product domain.Product
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateSale inserts the sale row and fills in its generated id.
func (t *gormTx) CreateSale(sale *domain.Sale) error {
	return t.tx.Create(sale).Error
}

// CreateSaleLine inserts one line item.
func (t *gormTx) CreateSaleLine(line *domain.SaleLine) error {
	return t.tx.Create(line).Error
}

// DecrementStock lowers a product's stock by qty.
func (t *gormTx) DecrementStock(productID uint, qty int) error {
	return t.tx.Model(&domain.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock - ?", qty)).Error
}

// DebitWallet lowers a wallet's balance by amount.
func (t *gormTx) DebitWallet(walletID uint, amount decimal.Decimal) error {
	return t.tx.Model(&domain.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance - ?", amount)).Error
}

// UpdateWalletBalance sets a wallet's balance to an absolute value computed
// against its locked row.
func (t *gormTx) UpdateWalletBalance(walletID uint, balance decimal.Decimal) error {
	return t.tx.Model(&domain.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance).Error
}
