package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	guardsvc "github.com/mercadito-app/mercadito-backend/internal/guard"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type stubGuardService struct {
	outcome      *guardsvc.Outcome
	resolution   *guardsvc.Resolution
	pending      *guardsvc.Intent
	err          error
	lastIntent   guardsvc.Intent
	lastDecision guardsvc.Decision
}

func (s *stubGuardService) Intercept(ctx context.Context, actor types.Actor, intent guardsvc.Intent) (*guardsvc.Outcome, error) {
	s.lastIntent = intent
	return s.outcome, s.err
}

func (s *stubGuardService) Resolve(ctx context.Context, actor types.Actor, decision guardsvc.Decision) (*guardsvc.Resolution, error) {
	s.lastDecision = decision
	return s.resolution, s.err
}

func (s *stubGuardService) Pending(ctx context.Context, actor types.Actor) (*guardsvc.Intent, error) {
	return s.pending, s.err
}

func TestGuardInterceptReportsSuppression(t *testing.T) {
	service := &stubGuardService{outcome: &guardsvc.Outcome{Intercepted: true}}
	handler := GuardIntercept(service, nil)

	body := `{"source": "back", "target": "restaurants"}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/guard/intercept", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastIntent.Source != "back" || service.lastIntent.Target != "restaurants" {
		t.Fatalf("unexpected intent: %+v", service.lastIntent)
	}

	var envelope struct {
		Data interceptResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Intercepted || envelope.Data.Proceed {
		t.Fatalf("unexpected outcome: %+v", envelope.Data)
	}
}

func TestGuardResolveDiscardReturnsReplay(t *testing.T) {
	service := &stubGuardService{resolution: &guardsvc.Resolution{
		Decision: guardsvc.DecisionDiscard,
		Replay:   &guardsvc.Intent{Source: "tab", Target: "profile"},
	}}
	handler := GuardResolve(service, nil)

	body := `{"decision": "discard"}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/guard/resolve", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastDecision != guardsvc.DecisionDiscard {
		t.Fatalf("unexpected decision: %s", service.lastDecision)
	}

	var envelope struct {
		Data resolveResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Replay == nil || envelope.Data.Replay.Target != "profile" {
		t.Fatalf("replay intent not returned: %+v", envelope.Data)
	}
}

func TestGuardResolveRejectsBadDecision(t *testing.T) {
	handler := GuardResolve(&stubGuardService{}, nil)

	body := `{"decision": "maybe"}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/guard/resolve", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGuardResolveWithoutPending404s(t *testing.T) {
	service := &stubGuardService{err: pkgerrors.New(pkgerrors.CodeNotFound, "no navigation is awaiting a decision")}
	handler := GuardResolve(service, nil)

	body := `{"decision": "stay"}`

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/guard/resolve", body))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGuardPendingReturnsNullWhenFree(t *testing.T) {
	handler := GuardPending(&stubGuardService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodGet, "/api/v1/guard/pending", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data *guardsvc.Intent `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data != nil {
		t.Fatalf("expected null pending intent, got %+v", envelope.Data)
	}
}
