package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func cmsFixture() Snapshot {
	amount := dec("54.21")
	return Snapshot{
		Order: Order{
			ID:                123,
			DateCreated:       time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC),
			SubtotalExTax:     dec("40.0000"),
			TotalExTax:        dec("48.5000"),
			TotalIncTax:       dec("54.2100"),
			TotalTax:          dec("5.7100"),
			ShippingCostExTax: dec("8.5000"),
			DiscountAmount:    dec("2.0000"),
			CouponDiscount:    dec("1.0000"),
			PaymentMethod:     "creditcard",
			CustomerID:        77,
			StaffNotes:        "leave at door",
			BillingAddress: Address{
				FirstName: "Lou", LastName: "Malnati", Street1: "6649 N Lincoln Ave",
				City: "Lincolnwood", State: "Illinois", Zip: "60712",
				CountryISO2: "US", Phone: "(847) 673-0800", Email: "lou@example.com",
			},
		},
		ShippingAddresses: []ShippingAddress{
			{
				ID: 555,
				Address: Address{
					FirstName: "Jane", LastName: "Doe", Street1: "1 Main St",
					City: "Chicago", State: "Illinois", Zip: "60601",
					CountryISO2: "US", Email: "jane@example.com",
				},
				CostExTax: dec("8.5000"),
				FormFields: []FormField{
					{Name: "shipCode", Value: "2DC"},
					{Name: "shipDate", Value: "2024-03-15"},
					{Name: "Gift Message", Value: "Enjoy the pizza!"},
				},
			},
		},
		Products: []Product{
			{
				ID: 1000, SKU: "ABC", BinPickingNumber: "HOME-CHEESE", Quantity: 2,
				PriceExTax: dec("10.5000"), TotalExTax: dec("21.0000"),
				TotalIncTax: dec("23.1000"), AddressID: 555,
			},
		},
		Transactions: []Transaction{{Amount: &amount}},
	}
}

func TestBuildCMSDocument(t *testing.T) {
	doc, err := BuildCMSDocument([]Snapshot{cmsFixture()}, testSettings())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, "<CMSData>")
	assert.Contains(t, doc, `<DefaultShipMethod IndexBy="Code" ThirdPartyBillingID="">U1D</DefaultShipMethod>`)
	assert.Contains(t, doc, "<OrderDate>2024-03-10T15:30:00.000Z</OrderDate>")
	assert.Contains(t, doc, "<OrderTotal>48.5</OrderTotal>")
	assert.Contains(t, doc, "<ItemTotal>40</ItemTotal>")
	assert.Contains(t, doc, "<StateTaxes>5.71</StateTaxes>")
	assert.Contains(t, doc, "<ShippingCharges>8.5</ShippingCharges>")
	assert.Contains(t, doc, "<Discount>3</Discount>")
	assert.Contains(t, doc, "<RefOrderID>BC123</RefOrderID>")
	assert.Contains(t, doc, "<Notes>leave at door</Notes>")
	assert.Contains(t, doc, "<State>IL</State>")
	assert.Contains(t, doc, "<PhoneNumDigits>(847) 673-0800</PhoneNumDigits>")

	// one Item entry per unit of quantity
	assert.Equal(t, 2, strings.Count(doc, "<ProductCode>ABC</ProductCode>"))
	assert.Equal(t, 2, strings.Count(doc, "<RefItemID>555-1000</RefItemID>"))
	assert.Contains(t, doc, "<OrderQuantity>1</OrderQuantity>")
	assert.Contains(t, doc, "<UnitPrice>10.5</UnitPrice>")
	assert.Contains(t, doc, "<DateToMoveInventory>2024-03-15T00:00:00.000Z</DateToMoveInventory>")

	assert.Contains(t, doc, `<ShipMethod IndexBy="Code">2DC</ShipMethod>`)
	assert.Contains(t, doc, "<GiftMessage>Enjoy the pizza!</GiftMessage>")
	assert.Contains(t, doc, `<Recipient IsPurchaser="false">`)

	assert.Contains(t, doc, "<PaymentAmount>54.21</PaymentAmount>")
	assert.Contains(t, doc, "<PaymentType>Bill Direct Customer</PaymentType>")
}

func TestBuildCMSDocument_NoPaymentWithoutAmount(t *testing.T) {
	snap := cmsFixture()
	snap.Transactions = []Transaction{{Amount: nil}}

	doc, err := BuildCMSDocument([]Snapshot{snap}, testSettings())
	require.NoError(t, err)
	assert.NotContains(t, doc, "<Payment>")
}

func TestBuildCMSDocument_BundleSKUResolution(t *testing.T) {
	snap := cmsFixture()
	snap.Products = []Product{
		{ID: 1, SKU: "DEF*", Quantity: 1, PriceExTax: dec("20"), AddressID: 555},
		{ID: 2, SKU: "$GH", Quantity: 1, ParentID: 1, AddressID: 555},
	}

	doc, err := BuildCMSDocument([]Snapshot{snap}, testSettings())
	require.NoError(t, err)
	assert.Contains(t, doc, "<ProductCode>DEF-GH</ProductCode>")
}

func TestBuildCMSDocument_MultipleOrders(t *testing.T) {
	a := cmsFixture()
	b := cmsFixture()
	b.Order.ID = 124

	doc, err := BuildCMSDocument([]Snapshot{a, b}, testSettings())
	require.NoError(t, err)
	assert.Contains(t, doc, "<RefOrderID>BC123</RefOrderID>")
	assert.Contains(t, doc, "<RefOrderID>BC124</RefOrderID>")
}
