package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.StorefrontConfig{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "secret",
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestCreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Rania", body["name"])
		assert.Equal(t, float64(2500), body["total"])
		assert.Equal(t, "s1:3", body["checkoutToken"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"7b1c","status":"PENDING_PAYMENT"}`))
	})

	resp, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		CheckoutForm:  domain.CheckoutForm{Name: "Rania"},
		Total:         2500,
		CheckoutToken: "s1:3",
	})
	require.NoError(t, err)
	assert.Equal(t, "7b1c", resp.ID)
	assert.Equal(t, domain.OrderStatusPendingPayment, resp.Status)
}

func TestAPIErrorWithFieldDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"validation failed","details":[{"field":"email","message":"email must be a valid email address"}]}`))
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{CheckoutToken: "s1:0"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "validation failed", apiErr.Message)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "email", apiErr.Details[0].Field)
}

func TestAPIErrorTolerantDecoding(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"string details", `{"error":"bad request","details":"quantity too low"}`, "bad request: quantity too low"},
		{"plain text", "upstream unavailable\n", "upstream unavailable"},
		{"no details", `{"error":"order not found"}`, "order not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := decodeAPIError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Empty(t, apiErr.Details)
		})
	}
}

func TestAPIErrorConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"order already exists for checkout token"}`))
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{CheckoutToken: "s1:0"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsConflict())
}

func TestFlagReconciliation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/o-1/reconcile", r.URL.Path)

		var body ReconcileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"B"}, body.FailedProductIDs)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.FlagReconciliation(context.Background(), "o-1", []string{"B"}))
}

func TestLookupPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/ref-42", r.URL.Path)
		_, _ = w.Write([]byte(`{"reference":"ref-42","orderId":"o-1","status":"PAID","amount":2500}`))
	})

	p, err := client.LookupPayment(context.Background(), "ref-42")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, p.Status)
	assert.Equal(t, "o-1", p.OrderID)
	assert.Equal(t, int64(2500), p.Amount)
}

func TestListOrdersQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "PAID", r.URL.Query().Get("status"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"orders":[{"id":"o-1","status":"PAID","total":100,"items":[]}],"limit":10,"offset":20}`))
	})

	list, err := client.ListOrders(context.Background(), domain.OrderStatusPaid, 10, 20)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "o-1", list.Orders[0].ID)
}

func TestTransportError(t *testing.T) {
	client := NewClient(config.StorefrontConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	}, zaptest.NewLogger(t))

	_, err := client.GetOrder(context.Background(), "o-1")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
