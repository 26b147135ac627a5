package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v82"

	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/billing"
	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/store"
	"github.com/matchdayhq/clubsite/internal/store/memory"
)

type fakeCreator struct{}

func (fakeCreator) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{URL: "https://pay.example/session"}, nil
}

func passthroughVerifier(payload []byte, _, _ string) (stripe.Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

func rejectingVerifier(_ []byte, _, _ string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("bad signature")
}

func setupHandlers(t *testing.T, verify billing.VerifySignature) *memory.Store {
	t.Helper()
	s := memory.New()
	checkout := billing.NewCheckoutWithCreator(fakeCreator{},
		billing.PriceTable{store.PlanPro: "price_pro", store.PlanOfficia: "price_officia"},
		"https://clubsite.example")
	webhook := billing.NewWebhook("whsec_test", s.Events(), s.Clubs(), nil).WithVerifier(verify)
	InitHandlers(clubs.NewResolver(s.Clubs()), checkout, webhook)

	if err := s.Clubs().CreateProfile(context.Background(), &store.ClubProfile{
		ID:       "owner-1",
		OwnerUID: "owner-1",
		ClubID:   "rovers",
		ClubName: "Rovers",
		Plan:     store.PlanFree,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return s
}

func checkoutRequestFor(uid, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/billing/checkout", strings.NewReader(body))
	if uid != "" {
		r = r.WithContext(authz.ContextWithUID(r.Context(), uid))
	}
	return r
}

func TestHandleCheckoutReturnsSessionURL(t *testing.T) {
	setupHandlers(t, passthroughVerifier)

	w := httptest.NewRecorder()
	HandleCheckout(w, checkoutRequestFor("owner-1", `{"plan":"pro"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "https://pay.example/session") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandleCheckoutRequiresAuth(t *testing.T) {
	setupHandlers(t, passthroughVerifier)
	w := httptest.NewRecorder()
	HandleCheckout(w, checkoutRequestFor("", `{"plan":"pro"}`))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestHandleCheckoutUnknownPlan(t *testing.T) {
	setupHandlers(t, passthroughVerifier)
	w := httptest.NewRecorder()
	HandleCheckout(w, checkoutRequestFor("owner-1", `{"plan":"platinum"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleCheckoutNoClub(t *testing.T) {
	setupHandlers(t, passthroughVerifier)
	w := httptest.NewRecorder()
	HandleCheckout(w, checkoutRequestFor("clubless", `{"plan":"pro"}`))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleCheckoutAlreadyOnPlan(t *testing.T) {
	s := setupHandlers(t, passthroughVerifier)
	if err := s.Clubs().SetPlan(context.Background(), "owner-1", store.PlanPro); err != nil {
		t.Fatalf("set plan: %v", err)
	}

	w := httptest.NewRecorder()
	HandleCheckout(w, checkoutRequestFor("owner-1", `{"plan":"pro"}`))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestHandleCheckoutDelegatedAdmin(t *testing.T) {
	s := setupHandlers(t, passthroughVerifier)
	if err := s.Clubs().UpdateProfile(context.Background(), "owner-1",
		map[string]any{"admins": []string{"helper-1"}}); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	w := httptest.NewRecorder()
	HandleCheckout(w, checkoutRequestFor("helper-1", `{"plan":"pro"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func webhookBody(t *testing.T, eventID, owner, plan string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":                  "cs_test",
		"client_reference_id": owner,
		"metadata":            map[string]string{"ownerUid": owner, "plan": plan},
	})
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	body, err := json.Marshal(map[string]any{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]any{"object": json.RawMessage(raw)},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return string(body)
}

func TestHandleWebhookAppliesPlan(t *testing.T) {
	s := setupHandlers(t, passthroughVerifier)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/billing/webhook",
		strings.NewReader(webhookBody(t, "evt_1", "owner-1", store.PlanPro)))
	r.Header.Set("Stripe-Signature", "t=1,v1=test")
	HandleWebhook(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	profile, err := s.Clubs().GetProfile(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Plan != store.PlanPro {
		t.Errorf("plan = %q, want pro", profile.Plan)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	setupHandlers(t, rejectingVerifier)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(`{}`))
	HandleWebhook(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
