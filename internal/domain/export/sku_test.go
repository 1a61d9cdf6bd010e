package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malnatis/order-export/internal/domain/shared"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.ComboSKUs = map[string]string{
		"GH": "-GH",
		"CC": "-2C",
		"CS": "-1C1S",
	}
	return s
}

func TestClassifyOrderProducts_Rules(t *testing.T) {
	tests := []struct {
		name         string
		product      Product
		wantKind     SKUKind
		wantSKU      string
		wantCombo    bool
		wantParts    bool
	}{
		{
			name:     "LS prefix always yields LS irrespective of suffix",
			product:  Product{ID: 1, SKU: "LS*ANYTHING-AT-ALL", AddressID: 10},
			wantKind: KindBundleParent,
			wantSKU:  "LS",
			wantParts: true,
		},
		{
			name:      "star-delimited prefix",
			product:   Product{ID: 2, SKU: "DEF*", AddressID: 10},
			wantKind:  KindBundleParent,
			wantSKU:   "DEF",
			wantCombo: true,
		},
		{
			name:      "star-delimited prefix with options gets a dash",
			product:   Product{ID: 3, SKU: "DEF*", AddressID: 10, HasOptions: true},
			wantKind:  KindBundleParent,
			wantSKU:   "DEF-",
			wantCombo: true,
		},
		{
			name:     "plain sku is standalone verbatim",
			product:  Product{ID: 4, SKU: "ABC", AddressID: 10},
			wantKind: KindStandalone,
			wantSKU:  "ABC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := ClassifyOrderProducts([]Product{tt.product})
			require.NoError(t, err)

			record, ok := ix.Record(10, tt.product.ID)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, record.Kind)
			assert.Equal(t, tt.wantSKU, record.WarehouseSKU)
			assert.Equal(t, tt.wantCombo, record.HasComboSKU)
			assert.Equal(t, tt.wantParts, record.HasSKUParts)
		})
	}
}

func TestClassifyOrderProducts_ComboModifierArithmetic(t *testing.T) {
	t.Run("combo parent repeats the value qtyDifference times", func(t *testing.T) {
		// parent quantity 2, child quantity 4 -> qtyDifference 2
		ix, err := ClassifyOrderProducts([]Product{
			{ID: 1, SKU: "DEF*", Quantity: 2, AddressID: 10},
			{ID: 2, SKU: "$G", Quantity: 4, ParentID: 1, AddressID: 10},
		})
		require.NoError(t, err)

		record, ok := ix.Record(10, 1)
		require.True(t, ok)
		assert.Equal(t, "GG", record.ComboSKU)
	})

	t.Run("parts parent pushes value with qty suffix once", func(t *testing.T) {
		ix, err := ClassifyOrderProducts([]Product{
			{ID: 1, SKU: "LS*PACK", Quantity: 2, AddressID: 10},
			{ID: 2, SKU: "$C", Quantity: 4, ParentID: 1, AddressID: 10},
		})
		require.NoError(t, err)

		record, ok := ix.Record(10, 1)
		require.True(t, ok)
		assert.Equal(t, []string{"C2"}, record.SKUParts)
	})

	t.Run("zero qty difference still contributes once", func(t *testing.T) {
		ix, err := ClassifyOrderProducts([]Product{
			{ID: 1, SKU: "DEF*", Quantity: 4, AddressID: 10},
			{ID: 2, SKU: "$G", Quantity: 1, ParentID: 1, AddressID: 10},
		})
		require.NoError(t, err)

		record, _ := ix.Record(10, 1)
		assert.Equal(t, "G", record.ComboSKU)
	})

	t.Run("modifier without classified parent is a data error", func(t *testing.T) {
		_, err := ClassifyOrderProducts([]Product{
			{ID: 2, SKU: "$G", Quantity: 1, ParentID: 99, AddressID: 10},
		})
		assert.ErrorIs(t, err, shared.ErrInvalidData)
	})
}

func TestResolveWarehouseSKU(t *testing.T) {
	settings := testSettings()

	t.Run("combo lookup forward", func(t *testing.T) {
		record := &ProductClassification{WarehouseSKU: "DEF", ComboSKU: "GH", HasComboSKU: true}
		sku, err := record.ResolveWarehouseSKU(settings)
		require.NoError(t, err)
		assert.Equal(t, "DEF-GH", sku)
	})

	t.Run("combo lookup falls back to reversed form", func(t *testing.T) {
		record := &ProductClassification{WarehouseSKU: "DEF", ComboSKU: "HG", HasComboSKU: true}
		sku, err := record.ResolveWarehouseSKU(settings)
		require.NoError(t, err)
		assert.Equal(t, "DEF-GH", sku)
	})

	t.Run("combo lookup miss is a data error", func(t *testing.T) {
		record := &ProductClassification{WarehouseSKU: "DEF", ComboSKU: "ZZ", HasComboSKU: true}
		_, err := record.ResolveWarehouseSKU(settings)
		assert.ErrorIs(t, err, shared.ErrInvalidData)
	})

	t.Run("parts sorted by canonical letter order", func(t *testing.T) {
		record := &ProductClassification{
			WarehouseSKU: "LS",
			SKUParts:     []string{"S1", "C2", "E1"},
			HasSKUParts:  true,
		}
		sku, err := record.ResolveWarehouseSKU(settings)
		require.NoError(t, err)
		// canonical order starts C, E, S
		assert.Equal(t, "LSC2E1S1", sku)
	})

	t.Run("unknown letters sort before known ones", func(t *testing.T) {
		record := &ProductClassification{
			WarehouseSKU: "LS",
			SKUParts:     []string{"C1", "?1"},
			HasSKUParts:  true,
		}
		sku, err := record.ResolveWarehouseSKU(settings)
		require.NoError(t, err)
		assert.Equal(t, "LS?1C1", sku)
	})

	t.Run("empty combo string leaves the prefix untouched", func(t *testing.T) {
		record := &ProductClassification{WarehouseSKU: "DEF", HasComboSKU: true}
		sku, err := record.ResolveWarehouseSKU(settings)
		require.NoError(t, err)
		assert.Equal(t, "DEF", sku)
	})
}

func TestClassificationIndex_ForAddress(t *testing.T) {
	ix, err := ClassifyOrderProducts([]Product{
		{ID: 7, SKU: "B", AddressID: 10},
		{ID: 3, SKU: "A", AddressID: 10},
		{ID: 5, SKU: "C", AddressID: 20},
	})
	require.NoError(t, err)

	records := ix.ForAddress(10)
	require.Len(t, records, 2)
	assert.Equal(t, 3, records[0].Product.ID)
	assert.Equal(t, 7, records[1].Product.ID)

	assert.Empty(t, ix.ForAddress(999))
}
