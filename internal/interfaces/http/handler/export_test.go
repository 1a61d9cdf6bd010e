package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appexport "github.com/malnatis/order-export/internal/application/export"
	"github.com/malnatis/order-export/internal/domain/export"
	"github.com/malnatis/order-export/internal/infrastructure/cache"
	"github.com/malnatis/order-export/internal/infrastructure/storage"
	"github.com/malnatis/order-export/internal/interfaces/http/dto"
)

type stubCommerce struct {
	order        export.Order
	orderErr     error
	products     []export.Product
	addresses    []export.ShippingAddress
	coupons      []export.Coupon
	transactions []export.Transaction
}

func (s *stubCommerce) Order(ctx context.Context, orderID int) (export.Order, error) {
	return s.order, s.orderErr
}

func (s *stubCommerce) Products(ctx context.Context, orderID int) ([]export.Product, error) {
	return s.products, nil
}

func (s *stubCommerce) ShippingAddresses(ctx context.Context, orderID int) ([]export.ShippingAddress, error) {
	return s.addresses, nil
}

func (s *stubCommerce) Coupons(ctx context.Context, orderID int) ([]export.Coupon, error) {
	return s.coupons, nil
}

func (s *stubCommerce) Transactions(ctx context.Context, orderID int) ([]export.Transaction, error) {
	return s.transactions, nil
}

type stubSettings struct{}

func (stubSettings) Value(ctx context.Context, key string, out any) error {
	return appexport.ErrSettingNotFound
}

type stubTransfer struct{ sent int }

func (s *stubTransfer) SendFile(ctx context.Context, filename string, content []byte) error {
	s.sent++
	return nil
}

func newTestRouter(t *testing.T, commerce *stubCommerce) (*gin.Engine, *storage.StubDocumentStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	processed := cache.NewInMemoryProcessedStore(time.Hour)
	t.Cleanup(func() { processed.Close() })
	documents := storage.NewStubDocumentStorage()

	svc := appexport.NewService(commerce, stubSettings{}, processed, documents,
		&stubTransfer{}, appexport.Config{}, nil)

	engine := gin.New()
	api := engine.Group("/api/v1")
	h := NewExportHandler(svc, "abc123")
	h.RegisterRoutes(api)
	h.RegisterWebhookRoutes(api)
	return engine, documents
}

func testOrderCommerce() *stubCommerce {
	return &stubCommerce{
		order: export.Order{
			ID:          42,
			StatusID:    export.StatusFulfillmentReady,
			DateCreated: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			TotalIncTax: decimal.RequireFromString("25.00"),
		},
		addresses: []export.ShippingAddress{
			{ID: 9, Address: export.Address{FirstName: "Jane", LastName: "Doe",
				Street1: "1 Main St", City: "Chicago", State: "Illinois",
				Zip: "60601", CountryISO2: "US"}},
		},
		products: []export.Product{
			{ID: 1, SKU: "ABC", BinPickingNumber: "HOME-CHEESE", Quantity: 1,
				TotalExTax:  decimal.RequireFromString("20.00"),
				TotalIncTax: decimal.RequireFromString("25.00"), AddressID: 9},
		},
	}
}

func TestHandleOrderEvent_Webhook(t *testing.T) {
	engine, documents := newTestRouter(t, testOrderCommerce())

	body := `{"producer":"stores/abc123","scope":"store/order/statusUpdated",` +
		`"data":{"id":42,"status":{"new_status_id":11}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "processed", data["result"])
	assert.Equal(t, 1, documents.Size())
}

func TestHandleOrderEvent_IgnoredStatus(t *testing.T) {
	engine, documents := newTestRouter(t, testOrderCommerce())

	body := `{"scope":"store/order/statusUpdated","data":{"id":42,"status":{"new_status_id":3}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ignored", data["result"])
	assert.Equal(t, 0, documents.Size())
}

func TestHandleOrderEvent_InvalidPayload(t *testing.T) {
	engine, _ := newTestRouter(t, testOrderCommerce())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/orders", strings.NewReader(`{"scope":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleOrderEvent_UpstreamFailure(t *testing.T) {
	commerce := testOrderCommerce()
	commerce.orderErr = assert.AnError
	engine, _ := newTestRouter(t, commerce)

	body := `{"scope":"store/order/statusUpdated","data":{"id":42,"status":{"new_status_id":11}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUpstreamFailure, resp.Error.Code)
}

func TestExportCMS(t *testing.T) {
	engine, _ := newTestRouter(t, testOrderCommerce())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/cms?id=42&storeHash=abc123", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<RefOrderID>BC42</RefOrderID>")
}

func TestExportCMS_MissingParams(t *testing.T) {
	engine, _ := newTestRouter(t, testOrderCommerce())

	tests := []struct {
		name string
		path string
	}{
		{"no id", "/api/v1/export/cms?storeHash=abc123"},
		{"no store hash", "/api/v1/export/cms?id=42"},
		{"malformed id list", "/api/v1/export/cms?id=42,&storeHash=abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestExportCMS_UnknownStore(t *testing.T) {
	engine, _ := newTestRouter(t, testOrderCommerce())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/cms?id=42&storeHash=other", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportCMS_UpstreamFailure(t *testing.T) {
	commerce := testOrderCommerce()
	commerce.orderErr = assert.AnError
	engine, _ := newTestRouter(t, commerce)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/cms?id=42&storeHash=abc123", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestParseOrderIDs(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, dto.ParseOrderIDs("1,2,3"))
	assert.Equal(t, []int{7}, dto.ParseOrderIDs("7"))
	assert.Nil(t, dto.ParseOrderIDs("1,,2"))
	assert.Nil(t, dto.ParseOrderIDs("abc"))
	assert.Nil(t, dto.ParseOrderIDs("-1"))
}
