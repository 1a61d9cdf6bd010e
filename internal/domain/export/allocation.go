package export

import "github.com/shopspring/decimal"

// AllocationWeights computes, per shipping address, the fraction of the
// order's total goods value (sum of product total_inc_tax) carried by that
// address. The result is index-aligned with addresses. Weights sum to 1
// except when the order's goods value is zero, in which case every address
// receives weight 1 and bears the full order amounts; this degenerate case
// matches the historical behavior for zero-cost orders.
func AllocationWeights(addresses []ShippingAddress, products []Product) []decimal.Decimal {
	totalsByAddress := make(map[int]decimal.Decimal)
	for _, product := range products {
		totalsByAddress[product.AddressID] = totalsByAddress[product.AddressID].Add(product.TotalIncTax)
	}

	// Addresses can legitimately have no products in a shipment.
	totals := make([]decimal.Decimal, len(addresses))
	totalGoodsValue := decimal.Zero
	for i, address := range addresses {
		totals[i] = totalsByAddress[address.ID]
		totalGoodsValue = totalGoodsValue.Add(totals[i])
	}

	weights := make([]decimal.Decimal, len(addresses))
	for i, total := range totals {
		if totalGoodsValue.IsPositive() {
			weights[i] = total.Div(totalGoodsValue)
		} else {
			weights[i] = decimal.NewFromInt(1)
		}
	}
	return weights
}
