package export

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationWeights_Proportional(t *testing.T) {
	addresses := []ShippingAddress{{ID: 1}, {ID: 2}}
	products := []Product{
		{ID: 10, AddressID: 1, TotalIncTax: decimal.RequireFromString("30")},
		{ID: 11, AddressID: 2, TotalIncTax: decimal.RequireFromString("70")},
	}

	weights := AllocationWeights(addresses, products)
	require.Len(t, weights, 2)
	assert.True(t, weights[0].Equal(decimal.RequireFromString("0.3")), "got %s", weights[0])
	assert.True(t, weights[1].Equal(decimal.RequireFromString("0.7")), "got %s", weights[1])
}

func TestAllocationWeights_SumToOne(t *testing.T) {
	addresses := []ShippingAddress{{ID: 1}, {ID: 2}, {ID: 3}}
	products := []Product{
		{ID: 10, AddressID: 1, TotalIncTax: decimal.RequireFromString("19.99")},
		{ID: 11, AddressID: 2, TotalIncTax: decimal.RequireFromString("35.01")},
		{ID: 12, AddressID: 3, TotalIncTax: decimal.RequireFromString("45.00")},
	}

	weights := AllocationWeights(addresses, products)
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(1)), "weights sum to %s", sum)
}

func TestAllocationWeights_ZeroGoodsValue(t *testing.T) {
	// Degenerate case: each zero-cost address independently bears the full
	// order amounts.
	addresses := []ShippingAddress{{ID: 1}, {ID: 2}}
	products := []Product{
		{ID: 10, AddressID: 1, TotalIncTax: decimal.Zero},
		{ID: 11, AddressID: 2, TotalIncTax: decimal.Zero},
	}

	weights := AllocationWeights(addresses, products)
	require.Len(t, weights, 2)
	assert.True(t, weights[0].Equal(decimal.NewFromInt(1)))
	assert.True(t, weights[1].Equal(decimal.NewFromInt(1)))
}

func TestAllocationWeights_AddressWithoutProducts(t *testing.T) {
	addresses := []ShippingAddress{{ID: 1}, {ID: 2}}
	products := []Product{
		{ID: 10, AddressID: 1, TotalIncTax: decimal.RequireFromString("50")},
	}

	weights := AllocationWeights(addresses, products)
	require.Len(t, weights, 2)
	assert.True(t, weights[0].Equal(decimal.NewFromInt(1)))
	assert.True(t, weights[1].IsZero())
}
