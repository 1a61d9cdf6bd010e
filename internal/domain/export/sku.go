package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/malnatis/order-export/internal/domain/shared"
)

// SKUKind tags the role a raw SKU plays in the composition grammar.
type SKUKind int

const (
	// KindStandalone is a plain product; the SKU is the warehouse SKU.
	KindStandalone SKUKind = iota
	// KindBundleParent is a composite product whose final warehouse SKU is
	// assembled from its prefix plus resolved modifiers or parts.
	KindBundleParent
	// KindComboModifier is a child line that mutates its parent's record.
	KindComboModifier
)

// ProductClassification is the classification record of one product.
// Exactly one of the comboSKU and skuParts accumulators is active for a
// bundle parent; standalone products carry neither.
type ProductClassification struct {
	Product      Product
	Kind         SKUKind
	WarehouseSKU string

	ComboSKU    string
	HasComboSKU bool

	SKUParts    []string
	HasSKUParts bool
}

// ClassificationIndex holds classification records keyed by shipping address
// and product id. Combo modifiers update their target's record through this
// index rather than through shared object identity.
type ClassificationIndex struct {
	byAddress map[int]map[int]*ProductClassification
}

// ClassifyOrderProducts applies the SKU grammar to every product, in input
// order. Rules are evaluated in strict precedence; the first match wins:
//
//  1. "LS*..."        -> bundle parent, warehouse SKU "LS", part list
//  2. "<prefix>*..."  -> bundle parent, warehouse SKU <prefix>, combo string
//  3. "$<value>"      -> combo modifier targeting the parent product
//  4. anything else   -> standalone, SKU verbatim
//
// A modifier whose parent has not been classified is a data error.
func ClassifyOrderProducts(products []Product) (*ClassificationIndex, error) {
	ix := &ClassificationIndex{byAddress: make(map[int]map[int]*ProductClassification)}

	for _, product := range products {
		records := ix.byAddress[product.AddressID]
		if records == nil {
			records = make(map[int]*ProductClassification)
			ix.byAddress[product.AddressID] = records
		}

		sku := product.SKU
		switch {
		case strings.HasPrefix(sku, "LS*"):
			records[product.ID] = &ProductClassification{
				Product:      product,
				Kind:         KindBundleParent,
				WarehouseSKU: "LS",
				SKUParts:     []string{},
				HasSKUParts:  true,
			}

		case strings.Contains(sku, "*"):
			prefix := sku[:strings.LastIndex(sku, "*")]
			if product.HasOptions {
				prefix += "-"
			}
			records[product.ID] = &ProductClassification{
				Product:      product,
				Kind:         KindBundleParent,
				WarehouseSKU: prefix,
				HasComboSKU:  true,
			}

		case strings.HasPrefix(sku, "$"):
			value := sku[1:]
			parent, ok := records[product.ParentID]
			if !ok {
				return nil, fmt.Errorf("product %d: modifier %q has no classified parent %d: %w",
					product.ID, sku, product.ParentID, shared.ErrInvalidData)
			}
			applyModifier(parent, value, product.Quantity)

		default:
			records[product.ID] = &ProductClassification{
				Product:      product,
				Kind:         KindStandalone,
				WarehouseSKU: sku,
			}
		}
	}

	return ix, nil
}

// applyModifier folds a combo-modifier value into the parent's accumulator.
// qtyDifference is the child quantity normalized by the parent quantity; a
// zero difference still contributes the value once.
func applyModifier(parent *ProductClassification, value string, childQty int) {
	qtyDifference := childQty
	if parent.Product.Quantity > 1 {
		qtyDifference = childQty / parent.Product.Quantity
	}

	if parent.HasComboSKU {
		repeats := qtyDifference
		if repeats == 0 {
			repeats = 1
		}
		parent.ComboSKU += strings.Repeat(value, repeats)
		return
	}

	qty := qtyDifference
	if qty == 0 {
		qty = 1
	}
	parent.SKUParts = append(parent.SKUParts, fmt.Sprintf("%s%d", value, qty))
}

// Record returns the classification record of one product.
func (ix *ClassificationIndex) Record(addressID, productID int) (*ProductClassification, bool) {
	record, ok := ix.byAddress[addressID][productID]
	return record, ok
}

// ForAddress returns the records of one shipping address sorted by product
// id ascending, which is the ordering downstream line items rely on.
func (ix *ClassificationIndex) ForAddress(addressID int) []*ProductClassification {
	records := ix.byAddress[addressID]
	out := make([]*ProductClassification, 0, len(records))
	for _, record := range records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.ID < out[j].Product.ID })
	return out
}

// ResolveWarehouseSKU produces the final warehouse SKU for the record. Combo
// strings are looked up in the combo table, falling back to the
// character-reversed form; a miss in both is a data error. Part lists are
// sorted by the canonical letter order before concatenation.
func (pc *ProductClassification) ResolveWarehouseSKU(settings Settings) (string, error) {
	warehouseSKU := pc.WarehouseSKU

	switch {
	case pc.ComboSKU != "":
		suffix, ok := settings.ComboSKUs[pc.ComboSKU]
		if !ok {
			suffix, ok = settings.ComboSKUs[reverseString(pc.ComboSKU)]
		}
		if !ok {
			return "", fmt.Errorf("product %d: combo sku %q not in lookup table: %w",
				pc.Product.ID, pc.ComboSKU, shared.ErrInvalidData)
		}
		warehouseSKU += suffix

	case pc.HasSKUParts:
		parts := make([]string, len(pc.SKUParts))
		copy(parts, pc.SKUParts)
		sort.SliceStable(parts, func(i, j int) bool {
			return settings.letterIndex(parts[i]) < settings.letterIndex(parts[j])
		})
		warehouseSKU += strings.Join(parts, "")
	}

	return warehouseSKU, nil
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
