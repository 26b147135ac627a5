package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/matchdayhq/clubsite/internal/store"
	"github.com/matchdayhq/clubsite/internal/store/memory"
)

// fakeCreator returns a URL derived from the idempotency key, mimicking
// the provider's idempotent session reuse.
type fakeCreator struct {
	calls []string
}

func (f *fakeCreator) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	key := ""
	if params.IdempotencyKey != nil {
		key = *params.IdempotencyKey
	}
	f.calls = append(f.calls, key)
	return &stripe.CheckoutSession{URL: "https://pay.example/" + key}, nil
}

func newTestCheckout(creator SessionCreator, now func() time.Time) *Checkout {
	return &Checkout{
		creator: creator,
		prices:  PriceTable{store.PlanPro: "price_pro", store.PlanOfficia: "price_officia"},
		siteURL: "https://clubsite.example",
		now:     now,
	}
}

func TestCreateSessionReusesIdempotencyKeyWithinWindow(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	creator := &fakeCreator{}
	c := newTestCheckout(creator, func() time.Time { return current })
	ctx := context.Background()

	url1, err := c.CreateSession(ctx, "owner-1", store.PlanPro)
	if err != nil {
		t.Fatalf("first session: %v", err)
	}

	current = base.Add(2 * time.Minute)
	url2, err := c.CreateSession(ctx, "owner-1", store.PlanPro)
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if url1 != url2 {
		t.Fatalf("urls differ within dedup window: %q vs %q", url1, url2)
	}

	current = base.Add(dedupWindow + time.Minute)
	url3, err := c.CreateSession(ctx, "owner-1", store.PlanPro)
	if err != nil {
		t.Fatalf("third session: %v", err)
	}
	if url3 == url1 {
		t.Fatal("url should rotate after the dedup window")
	}
}

func TestCreateSessionDistinctAccountsDistinctKeys(t *testing.T) {
	creator := &fakeCreator{}
	c := newTestCheckout(creator, time.Now)
	ctx := context.Background()

	url1, err := c.CreateSession(ctx, "owner-a", store.PlanPro)
	if err != nil {
		t.Fatalf("session a: %v", err)
	}
	url2, err := c.CreateSession(ctx, "owner-b", store.PlanPro)
	if err != nil {
		t.Fatalf("session b: %v", err)
	}
	if url1 == url2 {
		t.Fatal("different accounts must not share a session")
	}
}

func TestCreateSessionUnknownPlan(t *testing.T) {
	c := newTestCheckout(&fakeCreator{}, time.Now)
	if _, err := c.CreateSession(context.Background(), "owner-1", "platinum"); err == nil {
		t.Fatal("unknown plan should fail")
	}
}

func seedBillingClub(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	if err := s.Clubs().CreateProfile(context.Background(), &store.ClubProfile{
		ID:           "owner-1",
		OwnerUID:     "owner-1",
		ClubID:       "fc-billing",
		ClubName:     "FC Billing",
		Plan:         store.PlanFree,
		ContactEmail: "treasurer@example.com",
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return s
}

func checkoutCompletedEvent(t *testing.T, id, owner, plan string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":                  "cs_test",
		"client_reference_id": owner,
		"metadata":            map[string]string{"ownerUid": owner, "plan": plan},
	})
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return stripe.Event{
		ID:   id,
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestWebhookAppliesPlanExactlyOnce(t *testing.T) {
	s := seedBillingClub(t)
	wh := NewWebhook("whsec_test", s.Events(), s.Clubs(), nil)
	ctx := context.Background()

	event := checkoutCompletedEvent(t, "evt_1", "owner-1", store.PlanPro)
	if err := wh.HandleEvent(ctx, event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	profile, err := s.Clubs().GetProfile(ctx, "owner-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Plan != store.PlanPro {
		t.Fatalf("plan = %q, want pro", profile.Plan)
	}

	// Downgrade manually, then replay: the duplicate must not reapply.
	if err := s.Clubs().SetPlan(ctx, "owner-1", store.PlanFree); err != nil {
		t.Fatalf("reset plan: %v", err)
	}
	if err := wh.HandleEvent(ctx, event); err != nil {
		t.Fatalf("replay delivery: %v", err)
	}
	profile, _ = s.Clubs().GetProfile(ctx, "owner-1")
	if profile.Plan != store.PlanFree {
		t.Fatalf("replay reapplied plan: %q", profile.Plan)
	}
}

func TestWebhookConcurrentDuplicateDelivery(t *testing.T) {
	s := seedBillingClub(t)
	wh := NewWebhook("whsec_test", s.Events(), s.Clubs(), nil)
	ctx := context.Background()

	event := checkoutCompletedEvent(t, "evt_concurrent", "owner-1", store.PlanOfficia)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = wh.HandleEvent(ctx, event)
		}()
	}
	wg.Wait()

	profile, err := s.Clubs().GetProfile(ctx, "owner-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Plan != store.PlanOfficia {
		t.Fatalf("plan = %q, want officia", profile.Plan)
	}
}

func TestWebhookSubscriptionDeletedDowngrades(t *testing.T) {
	s := seedBillingClub(t)
	if err := s.Clubs().SetPlan(context.Background(), "owner-1", store.PlanPro); err != nil {
		t.Fatalf("set plan: %v", err)
	}
	wh := NewWebhook("whsec_test", s.Events(), s.Clubs(), nil)

	raw, _ := json.Marshal(map[string]any{
		"id":       "sub_1",
		"metadata": map[string]string{"ownerUid": "owner-1"},
	})
	event := stripe.Event{
		ID:   "evt_del",
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: raw},
	}
	if err := wh.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	profile, _ := s.Clubs().GetProfile(context.Background(), "owner-1")
	if profile.Plan != store.PlanFree {
		t.Fatalf("plan = %q, want free", profile.Plan)
	}
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, recipient, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, fmt.Sprintf("%s|%s", recipient, subject))
	return nil
}

func TestWebhookSendsConfirmationEmail(t *testing.T) {
	s := seedBillingClub(t)
	mailer := &recordingMailer{}
	wh := NewWebhook("whsec_test", s.Events(), s.Clubs(), mailer)

	event := checkoutCompletedEvent(t, "evt_mail", "owner-1", store.PlanPro)
	if err := wh.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(mailer.sent))
	}
	if mailer.sent[0] != "treasurer@example.com|Your club subscription is active" {
		t.Fatalf("unexpected email: %s", mailer.sent[0])
	}
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	s := seedBillingClub(t)
	wh := NewWebhook("whsec_test", s.Events(), s.Clubs(), nil)

	event := stripe.Event{
		ID:   "evt_other",
		Type: "invoice.paid",
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := wh.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
}
