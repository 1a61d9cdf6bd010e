package export

import "fmt"

// BuildCMSDocument renders the CMS export document for one or more order
// snapshots. The document aggregates by order: one Order entry per snapshot,
// recipients per shipping address, line items expanded to one entry per unit
// of quantity. Monetary totals are whole-order values; no per-address
// allocation happens here.
func BuildCMSDocument(snapshots []Snapshot, settings Settings) (string, error) {
	ordersElem := Elem("Orders")

	for _, snap := range snapshots {
		orderElem, err := buildCMSOrder(snap, settings)
		if err != nil {
			return "", err
		}
		ordersElem.Add(orderElem)
	}

	doc := Document{Root: Elem("CMSData", ordersElem)}
	return doc.String(), nil
}

func buildCMSOrder(snap Snapshot, settings Settings) (*Element, error) {
	order := snap.Order

	index, err := ClassifyOrderProducts(snap.Products)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", order.ID, err)
	}

	orderElem := Elem("Order",
		TextElem("DefaultShipMethod", "U1D").
			WithAttr("IndexBy", "Code").
			WithAttr("ThirdPartyBillingID", ""),
	)

	if !order.DateCreated.IsZero() {
		orderElem.Add(TextElem("OrderDate", isoTimestamp(order.DateCreated)))
	}
	orderElem.Add(
		TextElem("OrderTotal", floatString(order.TotalExTax)),
		TextElem("ItemTotal", floatString(order.SubtotalExTax)),
		TextElem("StateTaxes", floatString(order.TotalTax)),
		TextElem("ShippingCharges", floatString(order.ShippingCostExTax)),
		TextElem("Discount", floatString(order.DiscountAmount.Add(order.CouponDiscount))),
		TextElem("RefOrderID", fmt.Sprintf("BC%d", order.ID)),
	)
	if order.StaffNotes != "" {
		orderElem.Add(TextElem("Notes", order.StaffNotes))
	}
	orderElem.Add(Elem("Customer", buildCMSContactAddress(order.BillingAddress)))

	for _, sa := range snap.ShippingAddresses {
		recipient, err := buildCMSRecipient(sa, index, settings)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", order.ID, err)
		}
		orderElem.Add(recipient)
	}

	if payment := buildCMSPayment(snap.Transactions); payment != nil {
		orderElem.Add(payment)
	}

	return orderElem, nil
}

func buildCMSContactAddress(addr Address) *Element {
	contactName := Elem("ContactName",
		TextElem("FirstName", addr.FirstName),
		TextElem("LastName", addr.LastName),
	)
	if addr.Company != "" {
		contactName.Add(TextElem("Company", addr.Company))
	}

	address := Elem("Address", TextElem("AddressLine3", addr.Street1))
	if addr.Street2 != "" {
		address.Add(TextElem("AddressLine2", addr.Street2))
	}
	address.Add(TextElem("City", addr.City))
	if code := StateCode(addr.State); code != "" {
		address.Add(TextElem("State", code))
	}
	address.Add(
		TextElem("PostalCode", addr.Zip),
		TextElem("Email", addr.Email),
	)

	contactAddress := Elem("ContactAddress", contactName, address)
	if addr.Phone != "" {
		contactAddress.Add(Elem("PhoneNumber", TextElem("PhoneNumDigits", addr.Phone)))
	}
	return contactAddress
}

func buildCMSRecipient(sa ShippingAddress, index *ClassificationIndex, settings Settings) (*Element, error) {
	opts := sa.ShipmentOptions()

	recipient := Elem("Recipient").WithAttr("IsPurchaser", "false")

	contactName := Elem("ContactName",
		TextElem("FirstName", sa.FirstName),
		TextElem("LastName", sa.LastName),
	)
	if sa.Company != "" {
		contactName.Add(TextElem("Company", sa.Company))
	}
	address := Elem("Address", TextElem("AddressLine3", sa.Street1))
	if sa.Street2 != "" {
		address.Add(TextElem("AddressLine2", sa.Street2))
	}
	address.Add(TextElem("City", sa.City))
	if code := StateCode(sa.State); code != "" {
		address.Add(TextElem("State", code))
	}
	address.Add(
		TextElem("PostalCode", sa.Zip),
		TextElem("Email", sa.Email),
	)
	recipient.Add(Elem("ShipToAddress", contactName, address))

	for _, record := range index.ForAddress(sa.ID) {
		warehouseSKU, err := record.ResolveWarehouseSKU(settings)
		if err != nil {
			return nil, err
		}
		unitPrice := floatString(record.Product.PriceExTax)
		refItemID := fmt.Sprintf("%d-%d", sa.ID, record.Product.ID)

		// One document entry per unit of quantity.
		for n := 0; n < record.Product.Quantity; n++ {
			item := Elem("Item",
				TextElem("ProductCode", warehouseSKU),
				TextElem("OrderQuantity", "1"),
				TextElem("UnitPrice", unitPrice),
				TextElem("TotalPrice", unitPrice),
				TextElem("RefItemID", refItemID),
			)
			if opts.HasShipDate {
				shipDate := isoTimestamp(opts.ShipDate)
				item.Add(
					TextElem("DateToMoveInventory", shipDate),
					TextElem("DateToFulfill", shipDate),
				)
			}
			recipient.Add(item)
		}
	}

	recipient.Add(Elem("Package",
		TextElem("ShipMethod", opts.ShipCode).WithAttr("IndexBy", "Code"),
		TextElem("ShippingCost", floatString(sa.CostExTax)),
	))
	if opts.GiftMessage != "" {
		recipient.Add(TextElem("GiftMessage", opts.GiftMessage))
	}
	return recipient, nil
}

func buildCMSPayment(transactions []Transaction) *Element {
	if len(transactions) == 0 || transactions[0].Amount == nil {
		return nil
	}
	return Elem("Payment",
		TextElem("PaymentAmount", floatString(*transactions[0].Amount)),
		TextElem("PaymentType", "Bill Direct Customer"),
	)
}
