// internal/api/billing/handlers.go
package billing

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/matchdayhq/clubsite/internal/api/apiutil"
	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/billing"
	"github.com/matchdayhq/clubsite/internal/clubs"
)

// maxWebhookBody caps webhook payloads well above any real event size.
const maxWebhookBody = 1 << 16

var (
	resolver *clubs.Resolver
	checkout *billing.Checkout
	webhook  *billing.Webhook
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(r *clubs.Resolver, c *billing.Checkout, w *billing.Webhook) {
	resolver = r
	checkout = c
	webhook = w
}

type checkoutRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// POST /api/billing/checkout
func HandleCheckout(w http.ResponseWriter, r *http.Request) {
	uid, err := authz.RequireUID(r.Context())
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "checkout failed")
		return
	}

	var req checkoutRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !billing.ValidPlan(req.Plan) {
		apiutil.WriteError(w, http.StatusBadRequest, "unknown plan")
		return
	}

	res, err := resolver.Resolve(r.Context(), uid, clubs.FlowDelegated)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "checkout failed")
		return
	}
	if res.Profile.Plan == req.Plan {
		apiutil.WriteError(w, http.StatusConflict, "club is already on this plan")
		return
	}

	url, err := checkout.CreateSession(r.Context(), res.OwnerUID, req.Plan)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "checkout failed")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

// POST /api/billing/webhook
func HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	event, err := webhook.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warn().Err(err).Msg("Webhook signature rejected")
		apiutil.WriteError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	if err := webhook.HandleEvent(r.Context(), event); err != nil {
		logger.Error().Err(err).Str("event_id", event.ID).Msg("Webhook event failed")
		apiutil.WriteError(w, http.StatusInternalServerError, "event processing failed")
		return
	}
	w.WriteHeader(http.StatusOK)
}
