package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new storefront order API client
func NewClient(cfg config.StorefrontConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// APIError is a non-2xx response from the order API
type APIError struct {
	StatusCode int
	Message    string
	Details    []domain.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("storefront API error: status %d: %s", e.StatusCode, e.Message)
}

// IsConflict reports a 409, which the API returns for duplicate orders
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// CreateOrder issues POST /orders
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	var resp CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AttachItem issues POST /order-items
func (c *Client) AttachItem(ctx context.Context, req AttachItemRequest) (*AttachItemResponse, error) {
	var resp AttachItemResponse
	if err := c.do(ctx, http.MethodPost, "/order-items", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FlagReconciliation marks an order whose items could not all be attached
func (c *Client) FlagReconciliation(ctx context.Context, orderID string, failedProductIDs []string) error {
	path := fmt.Sprintf("/orders/%s/reconcile", url.PathEscape(orderID))
	return c.do(ctx, http.MethodPost, path, ReconcileRequest{FailedProductIDs: failedProductIDs}, nil)
}

// LookupPayment fetches the server-side record for a payment reference
func (c *Client) LookupPayment(ctx context.Context, reference string) (*PaymentConfirmation, error) {
	var resp PaymentConfirmation
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(reference), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NotifyPayment posts a payment provider notification
func (c *Client) NotifyPayment(ctx context.Context, n PaymentNotification) error {
	return c.do(ctx, http.MethodPost, "/payments", n, nil)
}

// GetOrder fetches one order with its items
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOrders fetches order history, newest first
func (c *Client) ListOrders(ctx context.Context, status domain.OrderStatus, limit, offset int) (*OrderListResponse, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp OrderListResponse
	if err := c.do(ctx, http.MethodGet, "/orders?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp.StatusCode, respBody)
		c.logger.Debug("Storefront API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// decodeAPIError reads {error, details} when present. Details that are not a
// list of field errors are treated as part of the message.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var raw struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Message = raw.Error

	if len(raw.Details) == 0 {
		return apiErr
	}
	var details []domain.FieldError
	if err := json.Unmarshal(raw.Details, &details); err == nil {
		apiErr.Details = details
		return apiErr
	}
	var text string
	if err := json.Unmarshal(raw.Details, &text); err == nil && text != "" {
		apiErr.Message = strings.TrimSpace(apiErr.Message + ": " + text)
	}
	return apiErr
}
