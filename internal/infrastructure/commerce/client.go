// Package commerce implements the BigCommerce store API client used to
// fetch order snapshots.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/malnatis/order-export/internal/domain/export"
)

// maxResponseSize is the maximum allowed response size from the store API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// productPageSize is the v2 maximum page size for order products.
const productPageSize = 200

// Errors returned by the client
var (
	ErrRequestFailed   = errors.New("bigcommerce: request failed")
	ErrInvalidResponse = errors.New("bigcommerce: invalid response")
)

// Client talks to the BigCommerce v2/v3 store APIs for a single store.
type Client struct {
	config     *BigCommerceConfig
	httpClient *http.Client
}

// NewClient creates a BigCommerce client with the given configuration.
func NewClient(config *BigCommerceConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Order retrieves the order header.
func (c *Client) Order(ctx context.Context, orderID int) (export.Order, error) {
	body, status, err := c.doRequest(ctx, fmt.Sprintf("/v2/orders/%d", orderID))
	if err != nil {
		return export.Order{}, err
	}
	if status != http.StatusOK {
		return export.Order{}, fmt.Errorf("%w: HTTP %d for order %d", ErrRequestFailed, status, orderID)
	}

	var order bcOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return export.Order{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return order.toDomain(), nil
}

// Products retrieves every product line of the order. The v2 API caps pages
// at 200 items, so the count endpoint is consulted first and the pages are
// fetched in sequence.
func (c *Client) Products(ctx context.Context, orderID int) ([]export.Product, error) {
	body, status, err := c.doRequest(ctx, fmt.Sprintf("/v2/orders/%d/products/count", orderID))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for order %d product count", ErrRequestFailed, status, orderID)
	}

	var count bcCountResponse
	if err := json.Unmarshal(body, &count); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	pages := (count.Count + productPageSize - 1) / productPageSize
	products := make([]export.Product, 0, count.Count)
	for page := 1; page <= pages; page++ {
		path := fmt.Sprintf("/v2/orders/%d/products?limit=%d&page=%d", orderID, productPageSize, page)
		body, status, err := c.doRequest(ctx, path)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNoContent {
			break
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w: HTTP %d for order %d products page %d", ErrRequestFailed, status, orderID, page)
		}

		var lines []bcProduct
		if err := json.Unmarshal(body, &lines); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		for _, line := range lines {
			products = append(products, line.toDomain())
		}
	}
	return products, nil
}

// ShippingAddresses retrieves the shipment destinations of the order.
func (c *Client) ShippingAddresses(ctx context.Context, orderID int) ([]export.ShippingAddress, error) {
	body, status, err := c.doRequest(ctx, fmt.Sprintf("/v2/orders/%d/shipping_addresses", orderID))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for order %d shipping addresses", ErrRequestFailed, status, orderID)
	}

	var wire []bcShippingAddress
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	addresses := make([]export.ShippingAddress, 0, len(wire))
	for _, address := range wire {
		addresses = append(addresses, address.toDomain())
	}
	return addresses, nil
}

// Coupons retrieves the coupons applied to the order. The v2 API answers
// 204 when none were used.
func (c *Client) Coupons(ctx context.Context, orderID int) ([]export.Coupon, error) {
	body, status, err := c.doRequest(ctx, fmt.Sprintf("/v2/orders/%d/coupons", orderID))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for order %d coupons", ErrRequestFailed, status, orderID)
	}

	var wire []bcCoupon
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	coupons := make([]export.Coupon, 0, len(wire))
	for _, coupon := range wire {
		coupons = append(coupons, export.Coupon{Code: coupon.Code})
	}
	return coupons, nil
}

// Transactions retrieves the payment transactions of the order from the v3
// API.
func (c *Client) Transactions(ctx context.Context, orderID int) ([]export.Transaction, error) {
	body, status, err := c.doRequest(ctx, fmt.Sprintf("/v3/orders/%d/transactions", orderID))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for order %d transactions", ErrRequestFailed, status, orderID)
	}

	var wire bcTransactionsResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	transactions := make([]export.Transaction, 0, len(wire.Data))
	for _, tx := range wire.Data {
		transactions = append(transactions, export.Transaction{Amount: tx.Amount})
	}
	return transactions, nil
}

// doRequest performs a GET against the store API and returns the body and
// status code. Non-2xx statuses are left to the caller so that endpoints
// with meaningful 204s can handle them.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, int, error) {
	url := fmt.Sprintf("%s/stores/%s%s", c.config.APIBaseURL, c.config.StoreHash, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("bigcommerce: failed to create request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.config.AccessToken)
	req.Header.Set("X-Auth-Client", c.config.ClientID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("bigcommerce: failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
