// internal/billing/checkout.go

// Package billing wraps the payment provider: checkout-session creation
// for plan upgrades and the signed webhook that applies them.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/matchdayhq/clubsite/internal/store"
)

// dedupWindow buckets idempotency keys so rapid repeated clicks reuse
// one checkout session instead of creating duplicates.
const dedupWindow = 10 * time.Minute

// SessionCreator abstracts the provider call for tests.
type SessionCreator interface {
	Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeSessionCreator struct{}

func (stripeSessionCreator) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

// PriceTable maps subscription plans to provider price IDs.
type PriceTable map[string]string

// Checkout creates subscription checkout sessions.
type Checkout struct {
	creator SessionCreator
	prices  PriceTable
	siteURL string
	now     func() time.Time
}

// NewCheckout uses the real provider client. The package-level API key
// (stripe.Key) must be set by the caller at startup.
func NewCheckout(prices PriceTable, siteURL string) *Checkout {
	return &Checkout{
		creator: stripeSessionCreator{},
		prices:  prices,
		siteURL: siteURL,
		now:     time.Now,
	}
}

// NewCheckoutWithCreator injects a custom provider client.
func NewCheckoutWithCreator(creator SessionCreator, prices PriceTable, siteURL string) *Checkout {
	return &Checkout{
		creator: creator,
		prices:  prices,
		siteURL: siteURL,
		now:     time.Now,
	}
}

// CreateSession returns the hosted checkout URL for upgrading ownerUID's
// club to plan. The idempotency key is derived from the account and the
// current time bucket, so a second call inside the window returns the
// session already created by the first.
func (c *Checkout) CreateSession(ctx context.Context, ownerUID, plan string) (string, error) {
	priceID, ok := c.prices[plan]
	if !ok || priceID == "" {
		return "", fmt.Errorf("no price configured for plan %q", plan)
	}

	bucket := c.now().Unix() / int64(dedupWindow.Seconds())
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(ownerUID),
		SuccessURL:        stripe.String(c.siteURL + "/admin/billing/success"),
		CancelURL:         stripe.String(c.siteURL + "/admin/billing"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				metadataOwnerUID: ownerUID,
				metadataPlan:     plan,
			},
		},
		Metadata: map[string]string{
			metadataOwnerUID: ownerUID,
			metadataPlan:     plan,
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(fmt.Sprintf("checkout-%s-%d", ownerUID, bucket))

	sess, err := c.creator.Create(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ValidPlan reports whether plan names a purchasable subscription.
func ValidPlan(plan string) bool {
	return plan == store.PlanPro || plan == store.PlanOfficia
}
