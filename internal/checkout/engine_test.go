package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakeshop/internal/domain"
	"bakeshop/internal/store"
	"bakeshop/internal/validate"
)

// fakeGateway is an in-memory Gateway. A store-wide mutex stands in for row
// locking: transactions run one at a time, and a failed transaction restores
// the snapshot taken when it began, so writes are all-or-nothing.
type fakeGateway struct {
	mu       sync.Mutex
	wallets  map[uint]*domain.Wallet // keyed by user id
	products map[uint]*domain.Product
	sales    []domain.Sale
	lines    []domain.SaleLine
	nextSale uint
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		wallets:  make(map[uint]*domain.Wallet),
		products: make(map[uint]*domain.Product),
		nextSale: 1,
	}
}

func (g *fakeGateway) addWallet(userID uint, balance string) {
	g.wallets[userID] = &domain.Wallet{ID: userID + 100, UserID: userID, Balance: dec(balance)}
}

func (g *fakeGateway) addProduct(id uint, name, price string, stock int) {
	g.products[id] = &domain.Product{ID: id, Name: name, Price: dec(price), Stock: stock}
}

func (g *fakeGateway) snapshot() (map[uint]*domain.Wallet, map[uint]*domain.Product, []domain.Sale, []domain.SaleLine, uint) {
	wallets := make(map[uint]*domain.Wallet, len(g.wallets))
	for k, v := range g.wallets {
		w := *v
		wallets[k] = &w
	}
	products := make(map[uint]*domain.Product, len(g.products))
	for k, v := range g.products {
		p := *v
		products[k] = &p
	}
	return wallets, products, append([]domain.Sale(nil), g.sales...), append([]domain.SaleLine(nil), g.lines...), g.nextSale
}

func (g *fakeGateway) InTransaction(_ context.Context, fn func(store.Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	wallets, products, sales, lines, nextSale := g.snapshot()
	if err := fn(&fakeTx{g: g}); err != nil {
		g.wallets, g.products, g.sales, g.lines, g.nextSale = wallets, products, sales, lines, nextSale
		return err
	}
	return nil
}

type fakeTx struct {
	g *fakeGateway
}

func (t *fakeTx) WalletForUpdate(userID uint) (*domain.Wallet, error) {
	w, ok := t.g.wallets[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (t *fakeTx) ProductForUpdate(productID uint) (*domain.Product, error) {
	p, ok := t.g.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (t *fakeTx) CreateSale(sale *domain.Sale) error {
	sale.ID = t.g.nextSale
	t.g.nextSale++
	t.g.sales = append(t.g.sales, *sale)
	return nil
}

func (t *fakeTx) CreateSaleLine(line *domain.SaleLine) error {
	line.ID = uint(len(t.g.lines) + 1)
	t.g.lines = append(t.g.lines, *line)
	return nil
}

func (t *fakeTx) DecrementStock(productID uint, qty int) error {
	t.g.products[productID].Stock -= qty
	return nil
}

func (t *fakeTx) DebitWallet(walletID uint, amount decimal.Decimal) error {
	for _, w := range t.g.wallets {
		if w.ID == walletID {
			w.Balance = w.Balance.Sub(amount)
			return nil
		}
	}
	return store.ErrNotFound
}

func (t *fakeTx) UpdateWalletBalance(walletID uint, balance decimal.Decimal) error {
	for _, w := range t.g.wallets {
		if w.ID == walletID {
			w.Balance = balance
			return nil
		}
	}
	return store.ErrNotFound
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCheckoutEmptyCart(t *testing.T) {
	engine := NewEngine(newFakeGateway())
	_, err := engine.Checkout(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutInvalidLines(t *testing.T) {
	engine := NewEngine(newFakeGateway())

	_, err := engine.Checkout(context.Background(), 1, []CartLine{{ProductID: 0, Quantity: 1}})
	assert.ErrorIs(t, err, validate.ErrInvalidInput)

	_, err = engine.Checkout(context.Background(), 1, []CartLine{{ProductID: 5, Quantity: -2}})
	assert.ErrorIs(t, err, validate.ErrInvalidInput)
}

func TestCheckoutWalletNotFound(t *testing.T) {
	gw := newFakeGateway()
	gw.addProduct(1, "Baguette", "2.50", 10)
	engine := NewEngine(gw)

	_, err := engine.Checkout(context.Background(), 42, []CartLine{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrWalletNotFound)
	assert.Empty(t, gw.sales)
}

func TestCheckoutProductNotFound(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "100.00")
	gw.addProduct(1, "Baguette", "2.50", 10)
	engine := NewEngine(gw)

	_, err := engine.Checkout(context.Background(), 1, []CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 99, Quantity: 1},
	})
	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(99), notFound.ProductID)

	// Nothing committed, the existing product and wallet are untouched.
	assert.Empty(t, gw.sales)
	assert.Empty(t, gw.lines)
	assert.Equal(t, 10, gw.products[1].Stock)
	assert.True(t, gw.wallets[1].Balance.Equal(dec("100.00")))
}

func TestCheckoutInsufficientFunds(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "10.00")
	gw.addProduct(1, "Cake", "30.00", 5)
	engine := NewEngine(gw)

	_, err := engine.Checkout(context.Background(), 1, []CartLine{{ProductID: 1, Quantity: 2}})
	var short *InsufficientFundsError
	require.ErrorAs(t, err, &short)
	assert.True(t, short.Shortfall.Equal(dec("50.00")), "shortfall = %s", short.Shortfall)

	assert.Empty(t, gw.sales)
	assert.Empty(t, gw.lines)
	assert.Equal(t, 5, gw.products[1].Stock)
	assert.True(t, gw.wallets[1].Balance.Equal(dec("10.00")))
}

func TestCheckoutInsufficientStock(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "500.00") // Funds are plenty; stock is the problem.
	gw.addProduct(2, "Croissant", "4.00", 1)
	engine := NewEngine(gw)

	_, err := engine.Checkout(context.Background(), 1, []CartLine{{ProductID: 2, Quantity: 2}})
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "Croissant", stock.Name)
	assert.Equal(t, 1, stock.Available)

	assert.Empty(t, gw.sales)
	assert.Equal(t, 1, gw.products[2].Stock)
	assert.True(t, gw.wallets[1].Balance.Equal(dec("500.00")))
}

func TestCheckoutDuplicateLinesOverStock(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "1000.00")
	gw.addProduct(1, "Scone", "3.00", 3)
	engine := NewEngine(gw)

	// Two lines for the same product, each within stock on its own but
	// 4 in total against 3 available. Must fail, not drive stock to -1.
	_, err := engine.Checkout(context.Background(), 1, []CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 1, Quantity: 2},
	})
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "Scone", stock.Name)
	assert.Equal(t, 3, stock.Available)

	assert.Empty(t, gw.sales)
	assert.Empty(t, gw.lines)
	assert.Equal(t, 3, gw.products[1].Stock)
	assert.True(t, gw.wallets[1].Balance.Equal(dec("1000.00")))
}

func TestCheckoutDuplicateLinesWithinStock(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "100.00")
	gw.addProduct(1, "Scone", "3.00", 5)
	engine := NewEngine(gw)

	saleID, err := engine.Checkout(context.Background(), 1, []CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 1, Quantity: 3},
	})
	require.NoError(t, err)

	// Each cart line keeps its own sale line; stock drops by the sum.
	require.Len(t, gw.lines, 2)
	assert.Equal(t, 2, gw.lines[0].Quantity)
	assert.Equal(t, 3, gw.lines[1].Quantity)
	require.Len(t, gw.sales, 1)
	assert.Equal(t, saleID, gw.sales[0].ID)
	assert.True(t, gw.sales[0].Total.Equal(dec("15.00")))
	assert.Equal(t, 0, gw.products[1].Stock)
	assert.True(t, gw.wallets[1].Balance.Equal(dec("85.00")))
}

func TestCheckoutSuccess(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "100.00")
	gw.addProduct(1, "Cake", "30.00", 5)
	engine := NewEngine(gw)

	saleID, err := engine.Checkout(context.Background(), 1, []CartLine{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, uint(1), saleID)

	require.Len(t, gw.sales, 1)
	require.Len(t, gw.lines, 1)
	sale, line := gw.sales[0], gw.lines[0]
	assert.Equal(t, uint(1), sale.UserID)
	assert.True(t, sale.Total.Equal(dec("60.00")))
	assert.Equal(t, saleID, line.SaleID)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(dec("30.00")))
	assert.True(t, line.Subtotal.Equal(dec("60.00")))

	assert.Equal(t, 3, gw.products[1].Stock)
	assert.True(t, gw.wallets[1].Balance.Equal(dec("40.00")))
}

func TestCheckoutMultiLineTotals(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(7, "50.00")
	gw.addProduct(1, "Roll", "1.25", 20)
	gw.addProduct(2, "Pie", "12.50", 3)
	engine := NewEngine(gw)

	saleID, err := engine.Checkout(context.Background(), 7, []CartLine{
		{ProductID: 1, Quantity: 4}, // 5.00
		{ProductID: 2, Quantity: 2}, // 25.00
	})
	require.NoError(t, err)

	require.Len(t, gw.sales, 1)
	require.Len(t, gw.lines, 2)

	// The sale total equals the sum of its line subtotals.
	sum := decimal.Zero
	for _, l := range gw.lines {
		assert.Equal(t, saleID, l.SaleID)
		sum = sum.Add(l.Subtotal)
	}
	assert.True(t, gw.sales[0].Total.Equal(sum))
	assert.True(t, gw.sales[0].Total.Equal(dec("30.00")))

	assert.Equal(t, 16, gw.products[1].Stock)
	assert.Equal(t, 1, gw.products[2].Stock)
	assert.True(t, gw.wallets[7].Balance.Equal(dec("20.00")))
}

func TestCheckoutConcurrentSameWallet(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "100.00")
	gw.addProduct(1, "Cake", "60.00", 10)
	engine := NewEngine(gw)

	// Two checkouts of 60.00 against a balance of 100.00: exactly one may
	// commit, the other observes the post-debit balance.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Checkout(context.Background(), 1, []CartLine{{ProductID: 1, Quantity: 1}})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var f *InsufficientFundsError
		require.ErrorAs(t, err, &f)
		assert.True(t, f.Shortfall.Equal(dec("20.00")))
		short++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.True(t, gw.wallets[1].Balance.Equal(dec("40.00")))
	assert.Equal(t, 9, gw.products[1].Stock)
}

func TestCheckoutConcurrentLastUnit(t *testing.T) {
	gw := newFakeGateway()
	gw.addWallet(1, "100.00")
	gw.addWallet(2, "100.00")
	gw.addProduct(1, "Tart", "5.00", 1)
	engine := NewEngine(gw)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Checkout(context.Background(), uint(i+1), []CartLine{{ProductID: 1, Quantity: 1}})
		}(i)
	}
	wg.Wait()

	var ok, outOfStock int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var s *InsufficientStockError
		require.ErrorAs(t, err, &s)
		assert.Equal(t, 0, s.Available)
		outOfStock++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, 0, gw.products[1].Stock)
}
