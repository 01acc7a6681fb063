package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	product, err := NewProduct(uuid.New(), "7891000100103", "Leite Integral 1L")
	require.NoError(t, err)
	return product
}

func TestNewProduct(t *testing.T) {
	t.Run("creates active product with normalized barcode", func(t *testing.T) {
		tenantID := uuid.New()
		product, err := NewProduct(tenantID, "789.1000.100-103", "Leite Integral 1L")

		require.NoError(t, err)
		assert.Equal(t, tenantID, product.TenantID)
		assert.Equal(t, "7891000100103", product.Barcode)
		assert.Equal(t, ProductStatusActive, product.Status)
		assert.True(t, product.StockQuantity.IsZero())
	})

	t.Run("rejects short barcode", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "123", "Produto")
		assert.ErrorIs(t, err, ErrBarcodeTooShort)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "7891000100103", "  ")
		assert.Error(t, err)
	})
}

func TestProduct_ReplaceStock(t *testing.T) {
	product := newTestProduct(t)

	require.NoError(t, product.ReplaceStock(decimal.NewFromInt(10)))
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(10)))

	// Replacing with the same value again yields the same stock.
	require.NoError(t, product.ReplaceStock(decimal.NewFromInt(10)))
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(10)))

	assert.Error(t, product.ReplaceStock(decimal.NewFromInt(-1)))
}

func TestProduct_AddStock(t *testing.T) {
	product := newTestProduct(t)

	require.NoError(t, product.AddStock(decimal.NewFromInt(3)))
	require.NoError(t, product.AddStock(decimal.NewFromInt(4)))
	assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(7)))
}

func TestProduct_SubtractStock(t *testing.T) {
	t.Run("subtracts within available stock", func(t *testing.T) {
		product := newTestProduct(t)
		require.NoError(t, product.ReplaceStock(decimal.NewFromInt(10)))

		require.NoError(t, product.SubtractStock(decimal.NewFromInt(4)))
		assert.True(t, product.StockQuantity.Equal(decimal.NewFromInt(6)))
	})

	t.Run("never drives stock below zero", func(t *testing.T) {
		product := newTestProduct(t)
		require.NoError(t, product.ReplaceStock(decimal.NewFromInt(2)))

		require.NoError(t, product.SubtractStock(decimal.NewFromInt(100)))
		assert.True(t, product.StockQuantity.IsZero())
	})
}

func TestProduct_StatusTransitions(t *testing.T) {
	product := newTestProduct(t)
	assert.True(t, product.IsActive())

	product.Deactivate()
	assert.False(t, product.IsActive())

	product.Activate()
	assert.True(t, product.IsActive())
}
