package commerce

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/malnatis/order-export/internal/domain/export"
)

// ---------------------------------------------------------------------------
// BigCommerce v2/v3 wire types
// ---------------------------------------------------------------------------

// bcAddress carries the contact fields of a billing or shipping address.
type bcAddress struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company"`
	Street1     string `json:"street_1"`
	Street2     string `json:"street_2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	CountryISO2 string `json:"country_iso2"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func (a bcAddress) toDomain() export.Address {
	return export.Address{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Company:     a.Company,
		Street1:     a.Street1,
		Street2:     a.Street2,
		City:        a.City,
		State:       a.State,
		Zip:         a.Zip,
		CountryISO2: a.CountryISO2,
		Phone:       a.Phone,
		Email:       a.Email,
	}
}

// bcOrder is the v2 order header. Money fields arrive as decimal strings.
type bcOrder struct {
	ID                int       `json:"id"`
	DateCreated       string    `json:"date_created"`
	SubtotalExTax     string    `json:"subtotal_ex_tax"`
	TotalExTax        string    `json:"total_ex_tax"`
	TotalIncTax       string    `json:"total_inc_tax"`
	TotalTax          string    `json:"total_tax"`
	ShippingCostExTax string    `json:"shipping_cost_ex_tax"`
	DiscountAmount    string    `json:"discount_amount"`
	CouponDiscount    string    `json:"coupon_discount"`
	PaymentMethod     string    `json:"payment_method"`
	CustomerID        int       `json:"customer_id"`
	StaffNotes        string    `json:"staff_notes"`
	StatusID          int       `json:"status_id"`
	BillingAddress    bcAddress `json:"billing_address"`
}

func (o bcOrder) toDomain() export.Order {
	order := export.Order{
		ID:                o.ID,
		SubtotalExTax:     ParseDecimal(o.SubtotalExTax),
		TotalExTax:        ParseDecimal(o.TotalExTax),
		TotalIncTax:       ParseDecimal(o.TotalIncTax),
		TotalTax:          ParseDecimal(o.TotalTax),
		ShippingCostExTax: ParseDecimal(o.ShippingCostExTax),
		DiscountAmount:    ParseDecimal(o.DiscountAmount),
		CouponDiscount:    ParseDecimal(o.CouponDiscount),
		PaymentMethod:     o.PaymentMethod,
		CustomerID:        o.CustomerID,
		StaffNotes:        o.StaffNotes,
		StatusID:          o.StatusID,
		BillingAddress:    o.BillingAddress.toDomain(),
	}
	if t, ok := export.ParseDate(o.DateCreated); ok {
		order.DateCreated = t
	}
	return order
}

// bcProduct is one v2 order product line. ParentID is null for top-level
// lines and points at the owning bundle parent for combo children.
type bcProduct struct {
	ID               int               `json:"id"`
	ParentID         *int              `json:"parent_order_product_id"`
	SKU              string            `json:"sku"`
	BinPickingNumber string            `json:"bin_picking_number"`
	Quantity         int               `json:"quantity"`
	PriceExTax       string            `json:"price_ex_tax"`
	TotalExTax       string            `json:"total_ex_tax"`
	TotalIncTax      string            `json:"total_inc_tax"`
	AddressID        int               `json:"order_address_id"`
	ProductOptions   []json.RawMessage `json:"product_options"`
}

func (p bcProduct) toDomain() export.Product {
	product := export.Product{
		ID:               p.ID,
		SKU:              p.SKU,
		BinPickingNumber: p.BinPickingNumber,
		Quantity:         p.Quantity,
		PriceExTax:       ParseDecimal(p.PriceExTax),
		TotalExTax:       ParseDecimal(p.TotalExTax),
		TotalIncTax:      ParseDecimal(p.TotalIncTax),
		AddressID:        p.AddressID,
		HasOptions:       len(p.ProductOptions) > 0,
	}
	if p.ParentID != nil {
		product.ParentID = *p.ParentID
	}
	return product
}

// bcFormField is a free-form name/value pair on a shipping address.
type bcFormField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// bcShippingAddress is one v2 shipment destination.
type bcShippingAddress struct {
	ID int `json:"id"`
	bcAddress
	CostExTax  string        `json:"cost_ex_tax"`
	FormFields []bcFormField `json:"form_fields"`
}

func (a bcShippingAddress) toDomain() export.ShippingAddress {
	address := export.ShippingAddress{
		ID:        a.ID,
		Address:   a.bcAddress.toDomain(),
		CostExTax: ParseDecimal(a.CostExTax),
	}
	for _, field := range a.FormFields {
		address.FormFields = append(address.FormFields, export.FormField{
			Name:  field.Name,
			Value: field.Value,
		})
	}
	return address
}

// bcCoupon is one v2 applied coupon.
type bcCoupon struct {
	Code string `json:"code"`
}

// bcCountResponse is the v2 products/count payload.
type bcCountResponse struct {
	Count int `json:"count"`
}

// bcTransaction is one v3 payment transaction. The gateway reports the
// amount as a JSON number; it is absent for some capture events.
type bcTransaction struct {
	Amount *decimal.Decimal `json:"amount"`
}

// bcTransactionsResponse is the v3 envelope around the transaction list.
type bcTransactionsResponse struct {
	Data []bcTransaction `json:"data"`
}

// ParseDecimal parses a decimal string, returning zero on failure or empty
// input.
func ParseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
