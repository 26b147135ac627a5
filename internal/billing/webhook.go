// internal/billing/webhook.go
package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/matchdayhq/clubsite/internal/store"
)

const (
	metadataOwnerUID = "ownerUid"
	metadataPlan     = "plan"
)

// VerifySignature checks the provider signature and parses the event.
type VerifySignature func(payload []byte, sigHeader, secret string) (stripe.Event, error)

// Mailer sends transactional email. Optional; a nil Mailer disables the
// confirmation message without affecting plan application.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Webhook applies subscription events to club profiles with at-most-once
// side effects: each event ID is persisted before processing and a
// replay short-circuits.
type Webhook struct {
	verify VerifySignature
	secret string
	events store.EventRepository
	clubs  store.ClubRepository
	mailer Mailer
}

func NewWebhook(secret string, events store.EventRepository, clubs store.ClubRepository, mailer Mailer) *Webhook {
	return &Webhook{
		verify: webhook.ConstructEvent,
		secret: secret,
		events: events,
		clubs:  clubs,
		mailer: mailer,
	}
}

// WithVerifier replaces the signature check. Used by tests and local
// development against unsigned payloads.
func (w *Webhook) WithVerifier(verify VerifySignature) *Webhook {
	w.verify = verify
	return w
}

// ParseEvent verifies the payload signature and decodes the event.
func (w *Webhook) ParseEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return w.verify(payload, sigHeader, w.secret)
}

// HandleEvent processes one verified event. Redelivered events are
// acknowledged without side effects.
func (w *Webhook) HandleEvent(ctx context.Context, event stripe.Event) error {
	logger := log.Ctx(ctx)

	already, err := w.events.MarkProcessed(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("record event %q: %w", event.ID, err)
	}
	if already {
		logger.Info().Str("event_id", event.ID).Msg("Duplicate webhook event ignored")
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		return w.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return w.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return w.handleSubscriptionDeleted(ctx, event)
	default:
		logger.Debug().Str("event_type", string(event.Type)).Msg("Webhook event type ignored")
		return nil
	}
}

func (w *Webhook) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}

	owner := sess.ClientReferenceID
	if owner == "" {
		owner = sess.Metadata[metadataOwnerUID]
	}
	if owner == "" {
		return fmt.Errorf("checkout session %q has no owner reference", sess.ID)
	}

	plan := sess.Metadata[metadataPlan]
	if !ValidPlan(plan) {
		plan = store.PlanPro
	}

	if err := w.clubs.SetPlan(ctx, owner, plan); err != nil {
		return fmt.Errorf("apply plan %q to %q: %w", plan, owner, err)
	}
	log.Ctx(ctx).Info().Str("owner_uid", owner).Str("plan", plan).Msg("Subscription activated")

	w.sendConfirmation(ctx, owner, plan)
	return nil
}

func (w *Webhook) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	owner := sub.Metadata[metadataOwnerUID]
	if owner == "" {
		return fmt.Errorf("subscription %q has no owner reference", sub.ID)
	}

	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		plan := sub.Metadata[metadataPlan]
		if !ValidPlan(plan) {
			plan = store.PlanPro
		}
		return w.clubs.SetPlan(ctx, owner, plan)
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncompleteExpired:
		return w.clubs.SetPlan(ctx, owner, store.PlanFree)
	default:
		// past_due and friends keep the current plan until resolved.
		return nil
	}
}

func (w *Webhook) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	owner := sub.Metadata[metadataOwnerUID]
	if owner == "" {
		return fmt.Errorf("subscription %q has no owner reference", sub.ID)
	}
	if err := w.clubs.SetPlan(ctx, owner, store.PlanFree); err != nil {
		return fmt.Errorf("downgrade %q: %w", owner, err)
	}
	log.Ctx(ctx).Info().Str("owner_uid", owner).Msg("Subscription ended, club downgraded")
	return nil
}

func (w *Webhook) sendConfirmation(ctx context.Context, owner, plan string) {
	if w.mailer == nil {
		return
	}

	profile, err := w.clubs.GetProfile(ctx, owner)
	if err != nil || profile.ContactEmail == "" {
		return
	}

	subject := "Your club subscription is active"
	body := fmt.Sprintf("Hi %s,\n\nYour %s plan is now active. Thanks for supporting your club's site!\n", profile.ClubName, plan)
	if err := w.mailer.Send(ctx, profile.ContactEmail, subject, body); err != nil {
		// Email is best effort; the plan change already committed.
		log.Ctx(ctx).Warn().Err(err).Str("owner_uid", owner).Msg("Confirmation email failed")
	}
}
