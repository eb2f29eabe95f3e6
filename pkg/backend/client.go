package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

const (
	defaultTimeout              = 15 * time.Second
	errorBodyReadLimit    int64 = 2048
	idempotencyKeyHeader        = "Idempotency-Key"
)

var errBaseURLRequired = errors.New("order backend base URL is required")

// Client talks to the remote order backend that owns the canonical
// order records. Every write here is authoritative; the local mirror
// is only updated from what this client returns.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds the order backend client.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimSpace(baseURL)
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmedURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return client, nil
}

// CreateOrderRequest is the payload submitted to open a new order.
type CreateOrderRequest struct {
	VendorID         int64              `json:"vendor_id"`
	BuyerUserID      string             `json:"buyer_user_id"`
	BuyerPhone       *string            `json:"buyer_phone,omitempty"`
	Lines            types.CartLines    `json:"lines"`
	DeliveryMode     enums.DeliveryMode `json:"delivery_mode"`
	DeliveryAddress  *string            `json:"delivery_address,omitempty"`
	SubtotalCents    int                `json:"subtotal_cents"`
	DeliveryFeeCents int                `json:"delivery_fee_cents"`
	DiscountCents    int                `json:"discount_cents"`
	TotalCents       int                `json:"total_cents"`
	CouponCode       *string            `json:"coupon_code,omitempty"`
}

// StatusRequest asks the backend to move an order to a new status.
type StatusRequest struct {
	Status          enums.OrderStatus `json:"status"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
}

// Order is the backend's canonical view of an order.
type Order struct {
	ID               string             `json:"id"`
	VendorID         int64              `json:"vendor_id"`
	BuyerUserID      string             `json:"buyer_user_id"`
	BuyerPhone       *string            `json:"buyer_phone,omitempty"`
	Lines            types.CartLines    `json:"lines"`
	DeliveryMode     enums.DeliveryMode `json:"delivery_mode"`
	DeliveryAddress  *string            `json:"delivery_address,omitempty"`
	SubtotalCents    int                `json:"subtotal_cents"`
	DeliveryFeeCents int                `json:"delivery_fee_cents"`
	DiscountCents    int                `json:"discount_cents"`
	TotalCents       int                `json:"total_cents"`
	CouponCode       *string            `json:"coupon_code,omitempty"`
	Status           enums.OrderStatus  `json:"status"`
	EtaMinutes       *int               `json:"eta_minutes,omitempty"`
	RejectionReason  *string            `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// CreateOrder submits a new order. The idempotency key makes retries of
// the same attempt safe: the backend returns the original order instead
// of opening a duplicate.
func (c *Client) CreateOrder(ctx context.Context, idempotencyKey string, req CreateOrderRequest) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	if len(req.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}

	var order Order
	headers := map[string]string{idempotencyKeyHeader: idempotencyKey}
	if err := c.do(ctx, http.MethodPost, "orders", headers, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Confirm is the seller accepting the order with a preparation ETA.
func (c *Client) Confirm(ctx context.Context, orderID string, etaMinutes int) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ID is required")
	}
	if etaMinutes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "eta minutes must be positive")
	}

	var order Order
	path := fmt.Sprintf("orders/%s/confirm", url.PathEscape(orderID))
	body := map[string]int{"eta_minutes": etaMinutes}
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves an order to a new status. The backend enforces its
// own guards; a rejection comes back as a backend error with the remote
// message intact.
func (c *Client) UpdateStatus(ctx context.Context, orderID string, req StatusRequest) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ID is required")
	}
	if !req.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target status is invalid")
	}

	var order Order
	path := fmt.Sprintf("orders/%s/status", url.PathEscape(orderID))
	if err := c.do(ctx, http.MethodPatch, path, nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AckRejection acknowledges a seller rejection. Safe to repeat; the
// backend treats a second acknowledgement as a no-op.
func (c *Client) AckRejection(ctx context.Context, orderID string) (*Order, error) {
	return c.ack(ctx, orderID, "ack-rejection")
}

// AckCancellation acknowledges a buyer cancellation.
func (c *Client) AckCancellation(ctx context.Context, orderID string) (*Order, error) {
	return c.ack(ctx, orderID, "ack-cancellation")
}

// AckDelivery acknowledges a delivery confirmation.
func (c *Client) AckDelivery(ctx context.Context, orderID string) (*Order, error) {
	return c.ack(ctx, orderID, "ack-delivery")
}

func (c *Client) ack(ctx context.Context, orderID, action string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ID is required")
	}

	var order Order
	path := fmt.Sprintf("orders/%s/%s", url.PathEscape(orderID), action)
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListMine fetches the orders placed by a buyer.
func (c *Client) ListMine(ctx context.Context, buyerUserID string) ([]Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	if strings.TrimSpace(buyerUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer user ID is required")
	}
	path := "orders/mine?user_id=" + url.QueryEscape(buyerUserID)
	return c.list(ctx, path)
}

// ListReceived fetches the orders received by a vendor.
func (c *Client) ListReceived(ctx context.Context, vendorID int64) ([]Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	if vendorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor ID is required")
	}
	path := fmt.Sprintf("orders/received?vendor_id=%d", vendorID)
	return c.list(ctx, path)
}

func (c *Client) list(ctx context.Context, path string) ([]Order, error) {
	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Orders, nil
}

// GetOrder fetches the canonical order record.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ID is required")
	}

	var order Order
	path := fmt.Sprintf("orders/%s", url.PathEscape(orderID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Healthz verifies connectivity and credential acceptance without
// touching any order.
func (c *Client) Healthz(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "order backend client not configured")
	}
	return c.do(ctx, http.MethodGet, "healthz", nil, nil, nil)
}

type backendErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order backend request")
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order backend request")
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "order backend unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.rejectionError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode order backend response")
	}
	return nil
}

// rejectionError carries the backend's own message through unchanged so
// callers can surface it verbatim.
func (c *Client) rejectionError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	message := strings.TrimSpace(string(raw))
	var parsed backendErrorBody
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			message = parsed.Message
		} else if parsed.Error != "" {
			message = parsed.Error
		}
	}
	if message == "" {
		message = fmt.Sprintf("order backend returned status %d", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusConflict {
		return pkgerrors.New(pkgerrors.CodeStateConflict, message)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, fmt.Errorf("status %d: %s", resp.StatusCode, message), "order backend request failed")
	}
	return pkgerrors.New(pkgerrors.CodeBackend, message)
}
