// Package export holds the pure core of the order-fulfillment export
// pipeline: the order snapshot model, the SKU composition grammar, bundle
// aggregation, charge allocation and the two downstream document builders.
package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatusFulfillmentReady is the BigCommerce status id that triggers an export.
const StatusFulfillmentReady = 11

// OrderEvent is an inbound order-change notification.
type OrderEvent struct {
	Producer    string
	Scope       string
	OrderID     int
	NewStatusID *int
}

// EventType returns the third segment of the event scope
// (e.g. "store/order/statusUpdated" -> "statusUpdated").
func (e OrderEvent) EventType() string {
	parts := strings.Split(e.Scope, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// Address holds the contact fields shared by billing and shipping addresses.
type Address struct {
	FirstName   string
	LastName    string
	Company     string
	Street1     string
	Street2     string
	City        string
	State       string
	Zip         string
	CountryISO2 string
	Phone       string
	Email       string
}

// Order is the order header fetched from the commerce API.
type Order struct {
	ID                int
	DateCreated       time.Time
	SubtotalExTax     decimal.Decimal
	TotalExTax        decimal.Decimal
	TotalIncTax       decimal.Decimal
	TotalTax          decimal.Decimal
	ShippingCostExTax decimal.Decimal
	DiscountAmount    decimal.Decimal
	CouponDiscount    decimal.Decimal
	PaymentMethod     string
	CustomerID        int
	StaffNotes        string
	StatusID          int
	BillingAddress    Address
}

// FormField is a free-form name/value pair attached to a shipping address.
type FormField struct {
	Name  string
	Value string
}

// ShippingAddress is one shipment destination of an order.
type ShippingAddress struct {
	ID int
	Address
	CostExTax  decimal.Decimal
	FormFields []FormField
}

// Product is one purchased line of an order. ParentID is zero for top-level
// products and points at the owning bundle parent for combo children.
type Product struct {
	ID               int
	ParentID         int
	SKU              string
	BinPickingNumber string
	Quantity         int
	PriceExTax       decimal.Decimal
	TotalExTax       decimal.Decimal
	TotalIncTax      decimal.Decimal
	AddressID        int
	HasOptions       bool
}

// Coupon is a coupon applied to an order.
type Coupon struct {
	Code string
}

// Transaction is a payment transaction. Amount is nil when the gateway did
// not report one.
type Transaction struct {
	Amount *decimal.Decimal
}

// Snapshot is everything fetched for one order, in upstream ordering.
type Snapshot struct {
	Order             Order
	Products          []Product
	ShippingAddresses []ShippingAddress
	Coupons           []Coupon
	Transactions      []Transaction
}

// ShipmentOptions are the optional values carried in a shipping address's
// form fields. HasShipDate reports whether a parseable shipDate was present;
// defaults (UGD / order date / WEB) are applied by the eBridge builder only.
type ShipmentOptions struct {
	ShipCode    string
	ShipDate    time.Time
	HasShipDate bool
	GiftMessage string
	OrderType   string
}

// ShipmentOptions extracts the recognized form fields of the address.
func (sa ShippingAddress) ShipmentOptions() ShipmentOptions {
	var opts ShipmentOptions
	for _, field := range sa.FormFields {
		if field.Value == "" {
			continue
		}
		switch field.Name {
		case "shipCode":
			opts.ShipCode = field.Value
		case "shipDate":
			if t, ok := ParseDate(field.Value); ok {
				opts.ShipDate = t
				opts.HasShipDate = true
			}
		case "Gift Message":
			opts.GiftMessage = field.Value
		case "orderType":
			opts.OrderType = strings.ToUpper(field.Value)
		}
	}
	return opts
}

// dateLayouts are the formats accepted for form-field and header dates.
// BigCommerce v2 reports header dates in RFC1123 form.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate parses a date string in any of the accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
