package export

import (
	"fmt"
	"strings"

	"github.com/malnatis/order-export/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BundleItem is one warehouse bin line of a bundle.
type BundleItem struct {
	Product  Product
	Bin      string
	Quantity int
}

// Bundle is the bin-level decomposition of one parent product and all of its
// children. TotalQuantity is the pricing denominator and excludes ghost bins.
type Bundle struct {
	ParentID      int
	Items         []BundleItem
	TotalQuantity int
}

// BundleSet holds the bundles of a single shipping address keyed by parent
// product id.
type BundleSet struct {
	byParent map[int]*Bundle
}

// AggregateBundles groups one shipping address's products into parent
// bundles. Every product is treated as (part of) a bundle: a product without
// a parent is its own parent. The bin picking number is split on commas and
// duplicate bin codes inside one product are combined, so
// "HOME-CHEESE, HOME-CHEESE,HOME-RONI" yields two HOME-CHEESE and one
// HOME-RONI. Ghost bins are excluded from both the item list and the total.
func AggregateBundles(products []Product, settings Settings) *BundleSet {
	set := &BundleSet{byParent: make(map[int]*Bundle)}

	for _, product := range products {
		parentID := product.ParentID
		if parentID == 0 {
			parentID = product.ID
		}
		bundle := set.byParent[parentID]
		if bundle == nil {
			bundle = &Bundle{ParentID: parentID}
			set.byParent[parentID] = bundle
		}

		for _, combined := range combineBins(product.BinPickingNumber) {
			if settings.IsGhostBin(combined.bin) {
				continue
			}
			quantity := product.Quantity * combined.count
			bundle.Items = append(bundle.Items, BundleItem{
				Product:  product,
				Bin:      combined.bin,
				Quantity: quantity,
			})
			bundle.TotalQuantity += quantity
		}
	}

	return set
}

// ForParent returns the bundle keyed by the given parent product id.
func (bs *BundleSet) ForParent(parentID int) (*Bundle, bool) {
	bundle, ok := bs.byParent[parentID]
	return bundle, ok
}

// UnitPrice divides the parent's goods value by the bundle's non-ghost
// quantity. A bundle whose every bin is a ghost bin has no denominator and
// cannot be priced; that is surfaced as a data error instead of producing an
// infinite price.
func (b *Bundle) UnitPrice(parentTotalExTax decimal.Decimal) (decimal.Decimal, error) {
	if b.TotalQuantity == 0 {
		return decimal.Zero, fmt.Errorf("bundle %d has no non-ghost quantity: %w",
			b.ParentID, shared.ErrInvalidData)
	}
	return parentTotalExTax.Div(decimal.NewFromInt(int64(b.TotalQuantity))), nil
}

type combinedBin struct {
	bin   string
	count int
}

// combineBins splits a comma-separated bin list and merges repeats,
// preserving first-appearance order.
func combineBins(binPickingNumber string) []combinedBin {
	var combined []combinedBin
	index := make(map[string]int)
	for _, raw := range strings.Split(binPickingNumber, ",") {
		bin := strings.TrimSpace(raw)
		if i, ok := index[bin]; ok {
			combined[i].count++
			continue
		}
		index[bin] = len(combined)
		combined = append(combined, combinedBin{bin: bin, count: 1})
	}
	return combined
}
