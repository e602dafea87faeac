package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	sale := Sale{
		ID:        12,
		UserID:    3,
		CreatedAt: time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC),
		Total:     decimal.RequireFromString("60.00"),
		Lines: []Line{
			{Name: "Cake", Quantity: 2, UnitPrice: decimal.RequireFromString("30.00"), Subtotal: decimal.RequireFromString("60.00")},
		},
	}

	data, err := Render("Test Bakery", sale)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// A PDF stream starts with the %PDF magic.
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderNoLines(t *testing.T) {
	data, err := Render("Test Bakery", Sale{ID: 1, CreatedAt: time.Now(), Total: decimal.Zero})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
