// Package wallet credits customer wallets. A credit never fails for being too
// large: the balance saturates at the configured cap.
package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"bakeshop/internal/domain"
	"bakeshop/internal/store"
)

// Service funds wallets through the persistence gateway.
type Service struct {
	gw  store.Gateway
	cap decimal.Decimal
}

// NewService builds a funding service with the given balance ceiling.
func NewService(gw store.Gateway, balanceCap decimal.Decimal) *Service {
	return &Service{gw: gw, cap: balanceCap}
}

// Fund credits amount to the user's wallet and returns the wallet with its
// post-credit balance. The row is read under lock, so overlapping credits
// serialize; the new balance is min(balance + amount, cap).
// Returns store.ErrNotFound when the user has no wallet.
func (s *Service) Fund(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wallet, error) {
	var funded *domain.Wallet
	err := s.gw.InTransaction(ctx, func(tx store.Tx) error {
		wallet, err := tx.WalletForUpdate(userID)
		if err != nil {
			return err
		}
		next := wallet.Balance.Add(amount)
		if next.GreaterThan(s.cap) {
			next = s.cap
		}
		if err := tx.UpdateWalletBalance(wallet.ID, next); err != nil {
			return err
		}
		wallet.Balance = next
		funded = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return funded, nil
}
