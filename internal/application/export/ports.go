// Package export orchestrates the order-fulfillment export pipeline:
// duplicate-event suppression, order retrieval, document building and
// delivery to the downstream sinks.
package export

import (
	"context"
	"errors"

	"github.com/malnatis/order-export/internal/domain/export"
)

// CommerceClient retrieves order data from the upstream commerce platform.
// Implementations paginate product retrieval internally and preserve the
// upstream ordering, which feeds line-item numbering downstream.
type CommerceClient interface {
	Order(ctx context.Context, orderID int) (export.Order, error)
	Products(ctx context.Context, orderID int) ([]export.Product, error)
	ShippingAddresses(ctx context.Context, orderID int) ([]export.ShippingAddress, error)
	Coupons(ctx context.Context, orderID int) ([]export.Coupon, error)
	Transactions(ctx context.Context, orderID int) ([]export.Transaction, error)
}

// ErrSettingNotFound is returned by SettingsSource when no value is stored
// under the requested key.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsSource is a get-by-key store of JSON-encoded export settings.
type SettingsSource interface {
	// Value decodes the JSON value stored under key into out.
	Value(ctx context.Context, key string, out any) error
}

// DocumentStore persists rendered documents to object storage.
type DocumentStore interface {
	UploadDocument(ctx context.Context, key string, content []byte) error
}

// FileTransfer pushes rendered documents to the ERP's file-transfer
// endpoint.
type FileTransfer interface {
	SendFile(ctx context.Context, filename string, content []byte) error
}
