package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mercadito-app/mercadito-backend/api/middleware"
	cartsvc "github.com/mercadito-app/mercadito-backend/internal/cart"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type stubCartService struct {
	snapshot  *cartsvc.Snapshot
	err       error
	lastInput cartsvc.AddLineInput
	lastKey   types.LineKey
}

func (s *stubCartService) AddLine(ctx context.Context, actor types.Actor, input cartsvc.AddLineInput) (*cartsvc.Snapshot, error) {
	s.lastInput = input
	return s.snapshot, s.err
}

func (s *stubCartService) RemoveOneUnit(ctx context.Context, actor types.Actor, key types.LineKey) (*cartsvc.Snapshot, error) {
	s.lastKey = key
	return s.snapshot, s.err
}

func (s *stubCartService) DeleteLine(ctx context.Context, actor types.Actor, key types.LineKey) (*cartsvc.Snapshot, error) {
	s.lastKey = key
	return s.snapshot, s.err
}

func (s *stubCartService) Clear(ctx context.Context, actor types.Actor) (*cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) Get(ctx context.Context, actor types.Actor) (*cartsvc.Snapshot, error) {
	return s.snapshot, s.err
}

func buyerRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	actor := types.Actor{SessionID: "sess-1", UserID: "user-1", Role: enums.ActorRoleBuyer}
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func testSnapshot() *cartsvc.Snapshot {
	price := 8990
	return &cartsvc.Snapshot{
		SessionID: "sess-1",
		VendorID:  42,
		Lines: types.CartLines{
			{Key: types.CatalogKey("tomatoes"), DisplayName: "Tomatoes 1kg", UnitPriceCents: &price, Quantity: 2},
		},
		SubtotalCents: 17980,
		ItemCount:     2,
		UpdatedAt:     time.Now(),
	}
}

func TestCartFetchSuccess(t *testing.T) {
	handler := CartFetch(&stubCartService{snapshot: testSnapshot()}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.VendorID != 42 {
		t.Fatalf("unexpected vendor id: %d", envelope.Data.VendorID)
	}
	if envelope.Data.SubtotalCents != 17980 {
		t.Fatalf("unexpected subtotal: %d", envelope.Data.SubtotalCents)
	}
}

func TestCartFetchMissingActor(t *testing.T) {
	handler := CartFetch(&stubCartService{snapshot: testSnapshot()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddLinePassesInputThrough(t *testing.T) {
	service := &stubCartService{snapshot: testSnapshot()}
	handler := CartAddLine(service, nil)

	body := `{
		"vendor_id": 42,
		"key": {"kind": "catalog", "catalog_id": "tomatoes"},
		"display_name": "  Tomatoes 1kg ",
		"unit_price_cents": 8990,
		"quantity": 2
	}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/lines", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastInput.VendorID != 42 {
		t.Fatalf("unexpected vendor id: %d", service.lastInput.VendorID)
	}
	if service.lastInput.Key != types.CatalogKey("tomatoes") {
		t.Fatalf("unexpected key: %+v", service.lastInput.Key)
	}
	if service.lastInput.DisplayName != "Tomatoes 1kg" {
		t.Fatalf("display name not trimmed: %q", service.lastInput.DisplayName)
	}
}

func TestCartAddLineRejectsBadPayload(t *testing.T) {
	handler := CartAddLine(&stubCartService{snapshot: testSnapshot()}, nil)

	body := `{"vendor_id": 42, "key": {"kind": "catalog"}, "display_name": "x"}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/lines", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddLineRejectsUnknownKeyKind(t *testing.T) {
	handler := CartAddLine(&stubCartService{snapshot: testSnapshot()}, nil)

	body := `{
		"vendor_id": 42,
		"key": {"kind": "barcode", "catalog_id": "tomatoes"},
		"display_name": "Tomatoes",
		"quantity": 1
	}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/lines", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartDecrementLineSurfacesNotFound(t *testing.T) {
	service := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "line is not in the cart")}
	handler := CartDecrementLine(service, nil)

	body := `{"key": {"kind": "catalog", "catalog_id": "missing"}}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/lines/decrement", body))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if service.lastKey != types.CatalogKey("missing") {
		t.Fatalf("unexpected key: %+v", service.lastKey)
	}
}

func TestCartDeleteLineSyntheticKey(t *testing.T) {
	service := &stubCartService{snapshot: testSnapshot()}
	handler := CartDeleteLine(service, nil)

	body := `{"key": {"kind": "synthetic", "category": "produce", "position": 3, "name": "Heirloom"}}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/lines/delete", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	want := types.SyntheticKey("produce", 3, "Heirloom")
	if service.lastKey != want {
		t.Fatalf("unexpected key: %+v", service.lastKey)
	}
}

func TestCartClearReturnsEmptySnapshot(t *testing.T) {
	empty := &cartsvc.Snapshot{SessionID: "sess-1"}
	handler := CartClear(&stubCartService{snapshot: empty}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %d items", envelope.Data.ItemCount)
	}
}
