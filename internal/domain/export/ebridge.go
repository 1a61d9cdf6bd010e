package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/malnatis/order-export/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// xCBL namespaces expected by the receiving ERP. These spellings are part of
// the wire contract.
const (
	ebridgeOrderNS = "rrn:org.xcbl:schemas/xcbl/v4_0/ordermanagement/v1_0/ordermanagement.xsd"
	ebridgeCoreNS  = "rrn:org.xcbl:schemas/xcbl/v4_0/core/core.xsd"
	ebridgeDgsNS   = "http://www.w3.org/2000/09/xmldsig#"
	ebridgeXsiNS   = "http://www.w3.org/2001/XMLSchema-instance"
)

// EBridgeOptions identifies the trading parties on the eBridge documents.
type EBridgeOptions struct {
	BuyerIdent  string
	SellerIdent string
}

// DefaultEBridgeOptions returns the production party identifiers.
func DefaultEBridgeOptions() EBridgeOptions {
	return EBridgeOptions{
		BuyerIdent:  "Lou Malnatis Pizzeria Big Commerce",
		SellerIdent: "8475621814",
	}
}

// BuildEBridgeDocuments renders one eBridge document per shipping address of
// the order. Order-level charges (tax, discount, freight, payment) are split
// across addresses by their share of goods value.
func BuildEBridgeDocuments(snap Snapshot, settings Settings, opts EBridgeOptions) ([]string, error) {
	weights := AllocationWeights(snap.ShippingAddresses, snap.Products)

	docs := make([]string, 0, len(snap.ShippingAddresses))
	for i, sa := range snap.ShippingAddresses {
		doc, err := buildEBridgeDocument(snap, sa, i, weights[i], settings, opts)
		if err != nil {
			return nil, fmt.Errorf("order %d address %d: %w", snap.Order.ID, sa.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func buildEBridgeDocument(snap Snapshot, sa ShippingAddress, addressIndex int, weight decimal.Decimal, settings Settings, opts EBridgeOptions) (string, error) {
	order := snap.Order

	shipment := sa.ShipmentOptions()
	if !shipment.HasShipDate {
		shipment.ShipDate = order.DateCreated
	}
	if shipment.ShipCode == "" {
		shipment.ShipCode = "UGD"
	}
	orderType := shipment.OrderType
	if orderType == "" {
		orderType = "WEB"
	}

	var addressProducts []Product
	for _, p := range snap.Products {
		if p.AddressID == sa.ID {
			addressProducts = append(addressProducts, p)
		}
	}

	itemDetails, err := buildItemDetails(addressProducts, settings)
	if err != nil {
		return "", err
	}

	// Classification rules evaluated after bundling override order metadata.
	isSubscription := false
	for _, p := range addressProducts {
		if strings.HasPrefix(p.BinPickingNumber, "POM") || strings.HasPrefix(p.BinPickingNumber, "PBM") {
			isSubscription = true
		}
	}
	isGiftCard := allBinsIn(addressProducts, "PGC", "PGC-LM")
	isVirtualGiftCard := allBinsIn(addressProducts, "VGC", "VGC-LM")

	batchNumber := "WEB_" + shipment.ShipDate.UTC().Format("01022006")
	paymentAmount := order.TotalIncTax.Mul(weight).StringFixed(3)
	userDefined5 := paymentAmount
	if orderType != "WEB" {
		batchNumber = orderType
	}
	if isSubscription {
		orderType = "SUBSCRIPTION"
		batchNumber = "SUBSCRIPTION"
		paymentAmount = "0.000"
	}
	if isGiftCard {
		orderType = "GIFTCARD"
		batchNumber = "GIFTCARD"
	}
	if isVirtualGiftCard {
		orderType = "EGIFTCARD"
		batchNumber = "EGIFTCARD"
	}

	sellerOrderNumber := strconv.Itoa(order.ID)
	if len(snap.ShippingAddresses) > 1 {
		sellerOrderNumber = fmt.Sprintf("%d-%d", order.ID, addressIndex+1)
	}

	headerReferences := Elem("core:NameValueSet",
		TextElem("core:SetName", "HeaderReferences"),
	)
	headerPairs := Elem("core:ListOfNameValuePair",
		nameValuePair("SOPType", "2"),
		nameValuePair("DocumentTypeId", orderType),
		nameValuePair("BatchNumber", batchNumber),
		nameValuePair("ShipToPrintPhone", "1"),
		nameValuePair("CustomerId", strconv.Itoa(order.CustomerID)),
		nameValuePair("UserDefinedText3", strconv.Itoa(sa.ID)),
	)
	headerReferences.Add(headerPairs)

	if msg := strings.TrimSpace(shipment.GiftMessage); msg != "" {
		chunks := chunkRunes(msg, 50)
		if len(chunks) > 3 {
			chunks = chunks[:3]
		}
		for i, chunk := range chunks {
			headerPairs.Add(nameValuePair(fmt.Sprintf("Comment%d", i+1), chunk))
		}
	}
	if len(snap.Coupons) > 0 {
		codes := make([]string, len(snap.Coupons))
		for i, c := range snap.Coupons {
			codes[i] = c.Code
		}
		headerPairs.Add(nameValuePair("UserDefinedText1", strings.Join(codes, ",")))
	}
	if isSubscription {
		headerPairs.Add(nameValuePair("UserDefinedText5", userDefined5))
	}

	taxReferences := Elem("core:NameValueSet",
		TextElem("core:SetName", "TaxReferences"),
		Elem("core:ListOfNameValuePair",
			nameValuePair("TaxAmount", order.TotalTax.Mul(weight).StringFixed(3)),
		),
	)

	nameValueSets := Elem("ListOfNameValueSet", headerReferences, taxReferences)

	if amount, err := decimal.NewFromString(paymentAmount); err == nil && !amount.IsZero() {
		checkBookID := "TOCCHASE"
		if order.PaymentMethod == "giftcertificate" {
			checkBookID = "GIFTCARD"
		}
		nameValueSets.Add(Elem("core:NameValueSet",
			TextElem("core:SetName", "PaymentReferences"),
			Elem("core:ListOfNameValuePair",
				nameValuePair("PaymentAmount", paymentAmount),
				nameValuePair("CheckBookID", checkBookID),
				nameValuePair("PaymentType", "1"),
				nameValuePair("PaymentDate", isoTimestamp(order.DateCreated)),
			),
		))
	}

	orderHeader := Elem("OrderHeader",
		Elem("OrderNumber",
			TextElem("BuyerOrderNumber", strconv.Itoa(order.ID)),
			TextElem("SellerOrderNumber", sellerOrderNumber),
		),
		TextElem("OrderIssueDate", isoTimestamp(order.DateCreated)),
		Elem("OrderDates",
			TextElem("RequestedShipByDate", shipment.ShipDate.UTC().Format("2006-01-02")),
		),
		Elem("OrderParty",
			buildParty("ShipToParty", sa.Address, "PRIMARY", true),
			buildParty("BillToParty", order.BillingAddress, "PRIMARY", true),
			Elem("WarehouseParty",
				Elem("core:ListOfIdentifier",
					Elem("core:Identifier", TextElem("core:Ident", "MAIN")),
				),
			),
			buildTradingParty("BuyerParty", opts.BuyerIdent),
			buildTradingParty("SellerParty", opts.SellerIdent),
		),
		nameValueSets,
		Elem("ListOfTransportRouting",
			Elem("core:TransportRouting",
				Elem("core:CarrierID", TextElem("core:Ident", shipment.ShipCode)),
			),
		),
		Elem("OrderAllowancesOrCharges",
			allowOrCharge("Discount", order.DiscountAmount.Add(order.CouponDiscount).Mul(weight)),
			allowOrCharge("Freight", order.ShippingCostExTax.Mul(weight)),
		),
	)

	root := Elem("Order",
		orderHeader,
		Elem("OrderDetail",
			Elem("ListOfItemDetail").Add(itemDetails...),
		),
	).
		WithAttr("xmlns", ebridgeOrderNS).
		WithAttr("xmlns:core", ebridgeCoreNS).
		WithAttr("xmlns:dgs", ebridgeDgsNS).
		WithAttr("xmlns:xsi", ebridgeXsiNS)

	return Document{Root: root}.String(), nil
}

// buildItemDetails emits one ItemDetail per non-ghost bundle bin, in the
// product order the upstream API returned, numbering lines sequentially.
// Warehouses pick by bin code; a product without a bin is identified by its
// resolved warehouse SKU instead.
func buildItemDetails(addressProducts []Product, settings Settings) ([]*Element, error) {
	bundles := AggregateBundles(addressProducts, settings)

	index, err := ClassifyOrderProducts(addressProducts)
	if err != nil {
		return nil, err
	}

	productByID := make(map[int]Product, len(addressProducts))
	for _, p := range addressProducts {
		productByID[p.ID] = p
	}

	var details []*Element
	for _, product := range addressProducts {
		bundle, ok := bundles.ForParent(product.ID)
		if !ok {
			// Combo children roll up into their parent's bundle.
			continue
		}
		parent := productByID[product.ID]

		for _, item := range bundle.Items {
			unitPrice, err := bundle.UnitPrice(parent.TotalExTax)
			if err != nil {
				return nil, err
			}

			partID := item.Bin
			if partID == "" {
				record, ok := index.Record(parent.AddressID, parent.ID)
				if !ok {
					return nil, fmt.Errorf("product %d has neither a bin nor a classification: %w",
						parent.ID, shared.ErrInvalidData)
				}
				partID, err = record.ResolveWarehouseSKU(settings)
				if err != nil {
					return nil, err
				}
			}

			detail := Elem("ItemDetail",
				Elem("BaseItemDetail",
					Elem("LineItemNum",
						TextElem("core:BuyerLineItemNum", strconv.Itoa(len(details)+1)),
					),
					Elem("ItemIdentifiers",
						Elem("core:PartNumbers",
							Elem("core:SellerPartNumber",
								TextElem("core:PartID", partID),
							),
						),
					),
					Elem("TotalQuantity",
						TextElem("core:QuantityValue", strconv.Itoa(item.Quantity)),
					).WithAttr("xsi:type", "core:QuantityType"),
				),
				Elem("PricingDetail",
					Elem("core:ListOfPrice",
						Elem("core:Price",
							Elem("core:UnitPrice",
								TextElem("core:UnitPriceValue", unitPrice.StringFixed(3)),
							),
						),
					),
				),
			)

			if len(bundle.Items) > 1 {
				detail.Add(Elem("ListOfNameValueSet",
					Elem("core:NameValueSet",
						TextElem("core:SetName", "DetailReferences"),
						Elem("core:ListOfNameValuePair",
							nameValuePair("DetailComment", parent.BinPickingNumber),
						),
					),
				))
			}

			details = append(details, detail)
		}
	}
	return details, nil
}

// buildParty renders a ship-to or bill-to party block. Names and street
// lines are uppercased for the ERP.
func buildParty(name string, addr Address, ident string, typed bool) *Element {
	nameAddress := Elem("core:NameAddress",
		TextElem("core:Name1", strings.ToUpper(addr.FirstName+" "+addr.LastName)),
		TextElem("core:Street", strings.ToUpper(addr.Street1)),
	)
	if addr.Street2 != "" {
		nameAddress.Add(TextElem("core:StreetSupplement1", strings.ToUpper(addr.Street2)))
	}
	region := Elem("core:Region", TextElem("core:RegionCoded", "Other"))
	if code := StateCode(addr.State); code != "" {
		region.Add(TextElem("core:RegionCodedOther", code))
	}
	nameAddress.Add(
		TextElem("core:PostalCode", addr.Zip),
		TextElem("core:City", strings.ToUpper(addr.City)),
		region,
		Elem("core:Country",
			TextElem("core:CountryCoded", "Other"),
			TextElem("core:CountryCodedOther", addr.CountryISO2),
		),
	)

	contacts := Elem("core:ListOfContactNumber")
	if addr.Phone != "" {
		contacts.Add(Elem("core:ContactNumber",
			TextElem("core:ContactNumberTypeCoded", "TelephoneNumber"),
			TextElem("core:ContactNumberValue", digitsOnly(addr.Phone)),
		))
	}
	if addr.Email != "" {
		contacts.Add(Elem("core:ContactNumber",
			TextElem("core:ContactNumberTypeCoded", "EmailAddress"),
			TextElem("core:ContactNumberValue", addr.Email),
		))
	}

	primaryContact := Elem("core:PrimaryContact")
	if addr.Company != "" {
		primaryContact.Add(TextElem("core:ContactName", strings.ToUpper(addr.Company)))
	}
	primaryContact.Add(contacts)

	party := Elem(name,
		Elem("core:ListOfIdentifier",
			Elem("core:Identifier", TextElem("core:Ident", ident)),
		),
		nameAddress,
		primaryContact,
	)
	if typed {
		party.WithAttr("xsi:type", "core:PartyType")
	}
	return party
}

func buildTradingParty(name, ident string) *Element {
	return Elem(name,
		Elem("core:PartyID", TextElem("core:Ident", ident)),
		Elem("core:ListOfIdentifier",
			Elem("core:Identifier", TextElem("core:Ident", ident)),
		),
	)
}

func nameValuePair(name, value string) *Element {
	return Elem("core:NameValuePair",
		TextElem("core:Name", name),
		TextElem("core:Value", value),
	)
}

func allowOrCharge(service string, amount decimal.Decimal) *Element {
	return Elem("core:AllowOrCharge",
		Elem("core:AllowanceOrChargeDescription",
			TextElem("core:ServiceCodedOther", service),
		),
		Elem("core:TypeOfAllowanceOrCharge",
			Elem("core:MonetaryValue",
				TextElem("core:MonetaryAmount", amount.StringFixed(3)),
			),
		),
	)
}

// allBinsIn reports whether the product set is non-empty and every raw bin
// picking number is one of the given codes.
func allBinsIn(products []Product, codes ...string) bool {
	if len(products) == 0 {
		return false
	}
	for _, p := range products {
		found := false
		for _, code := range codes {
			if p.BinPickingNumber == code {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
