// Package checkout converts a cart into a sale, atomically. The whole
// operation runs inside one database transaction: wallet and product rows are
// read under row locks, funds and stock are verified against the locked
// values, and either every write commits or none does.
package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bakeshop/internal/domain"
	"bakeshop/internal/store"
	"bakeshop/internal/validate"
)

// CartLine is one requested item. Prices are not accepted from the caller:
// every line is priced from the catalog row read inside the transaction.
type CartLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Engine runs checkouts against a persistence gateway.
type Engine struct {
	gw store.Gateway
}

// NewEngine builds a checkout engine over the given gateway.
func NewEngine(gw store.Gateway) *Engine {
	return &Engine{gw: gw}
}


// Checkout buys the cart for userID and returns the new sale's id.
//
// Failure modes in order of detection: ErrEmptyCart, validate.ErrInvalidInput
// (both before any transaction opens), ErrWalletNotFound,
// ProductNotFoundError, InsufficientFundsError, InsufficientStockError. Any of
// them rolls back the entire transaction; partial fulfillment never happens.
// No automatic retry: the caller may resubmit.
func (e *Engine) Checkout(ctx context.Context, userID uint, lines []CartLine) (uint, error) {
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}
	for _, l := range lines {
		if err := validate.ID(l.ProductID); err != nil {
			return 0, err
		}
		if err := validate.Quantity(l.Quantity); err != nil {
			return 0, err
		}
	}

	var saleID uint
	err := e.gw.InTransaction(ctx, func(tx store.Tx) error {
		// Lock the wallet first: concurrent checkouts by the same user
		// serialize here and re-read the post-commit balance.
		wallet, err := tx.WalletForUpdate(userID)
		if err != nil {
			if err == store.ErrNotFound {
				return ErrWalletNotFound
			}
			return err
		}

		// Lock each distinct product row once and price the cart from the
		// locked rows. Demand is aggregated per product so a cart that
		// repeats a product is checked against its total quantity.
		products := make(map[uint]*domain.Product, len(lines))
		demand := make(map[uint]int, len(lines))
		order := make([]uint, 0, len(lines)) // Distinct ids, cart order
		total := decimal.Zero
		for _, l := range lines {
			product, ok := products[l.ProductID]
			if !ok {
				product, err = tx.ProductForUpdate(l.ProductID)
				if err != nil {
					if err == store.ErrNotFound {
						return &ProductNotFoundError{ProductID: l.ProductID}
					}
					return err
				}
				products[l.ProductID] = product
				order = append(order, l.ProductID)
			}
			demand[l.ProductID] += l.Quantity
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		if wallet.Balance.LessThan(total) {
			return &InsufficientFundsError{Shortfall: total.Sub(wallet.Balance)}
		}
		for _, id := range order {
			if p := products[id]; p.Stock < demand[id] {
				return &InsufficientStockError{Name: p.Name, Available: p.Stock}
			}
		}

		// All checks passed against locked rows; now write.
		sale := domain.Sale{UserID: userID, Total: total}
		if err := tx.CreateSale(&sale); err != nil {
			return err
		}
		for _, l := range lines {
			product := products[l.ProductID]
			qty := decimal.NewFromInt(int64(l.Quantity))
			line := domain.SaleLine{
				SaleID:    sale.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: product.Price,
				Subtotal:  product.Price.Mul(qty),
			}
			if err := tx.CreateSaleLine(&line); err != nil {
				return err
			}
		}
		// One decrement per product, by its aggregated demand.
		for _, id := range order {
			if err := tx.DecrementStock(id, demand[id]); err != nil {
				return err
			}
		}
		if err := tx.DebitWallet(wallet.ID, total); err != nil {
			return err
		}
		saleID = sale.ID

		logrus.WithFields(logrus.Fields{
			"user_id": userID,     // Buyer
			"sale_id": sale.ID,    // New sale
			"total":   total,      // Amount debited
			"lines":   len(lines), // Cart size
		}).Info("Checkout committed")
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saleID, nil
}
