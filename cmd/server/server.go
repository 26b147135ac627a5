// cmd/server/server.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"

	"github.com/matchdayhq/clubsite/internal/api"
	billingapi "github.com/matchdayhq/clubsite/internal/api/billing"
	clubsapi "github.com/matchdayhq/clubsite/internal/api/clubs"
	contentapi "github.com/matchdayhq/clubsite/internal/api/content"
	seasonsapi "github.com/matchdayhq/clubsite/internal/api/seasons"
	"github.com/matchdayhq/clubsite/internal/auth"
	"github.com/matchdayhq/clubsite/internal/billing"
	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/config"
	"github.com/matchdayhq/clubsite/internal/content"
	"github.com/matchdayhq/clubsite/internal/email"
	"github.com/matchdayhq/clubsite/internal/scheduler"
	"github.com/matchdayhq/clubsite/internal/seasons"
	"github.com/matchdayhq/clubsite/internal/store"
	"github.com/matchdayhq/clubsite/internal/store/fstore"
)

// newServer wires the store, domain services, and handlers, and returns
// the HTTP server plus a cleanup function for the store client.
func newServer(ctx context.Context, cfg *config.Config) (*http.Server, func(), error) {
	credentials, err := loadFirebaseCredentials(cfg)
	if err != nil {
		return nil, nil, err
	}

	s, err := fstore.New(ctx, cfg.Firebase.ProjectID, credentials)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("Store client close failed")
		}
	}

	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, credentials)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init token verifier: %w", err)
	}

	stripe.Key = cfg.Stripe.SecretKey

	resolver := clubs.NewResolver(s.Clubs())
	lifecycle := seasons.NewLifecycle(s)
	reader := content.NewReader(resolver, s, cfg.Content.HeroLimit)

	checkout := billing.NewCheckout(billing.PriceTable{
		store.PlanPro:     cfg.Stripe.ProPriceID,
		store.PlanOfficia: cfg.Stripe.OfficiaPriceID,
	}, cfg.App.SiteURL)

	var mailer billing.Mailer
	if cfg.Email.Enabled {
		ses, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init email client: %w", err)
		}
		mailer = ses
	}
	webhook := billing.NewWebhook(cfg.Stripe.WebhookSecret, s.Events(), s.Clubs(), mailer)

	clubsapi.InitHandlers(s, resolver, reader)
	seasonsapi.InitHandlers(resolver, lifecycle)
	contentapi.InitHandlers(resolver, s.Content())
	billingapi.InitHandlers(resolver, checkout, webhook)

	if cfg.Jobs.RosterSweep {
		sched, err := startRosterSweep(cfg, s, lifecycle)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		storeCleanup := cleanup
		cleanup = func() {
			if err := sched.Stop(); err != nil {
				log.Warn().Err(err).Msg("Scheduler shutdown failed")
			}
			storeCleanup()
		}
	}

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithAuth(verifier),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, cleanup, nil
}

func loadFirebaseCredentials(cfg *config.Config) ([]byte, error) {
	if cfg.Firebase.CredentialsJSON != "" {
		return []byte(cfg.Firebase.CredentialsJSON), nil
	}
	if cfg.Firebase.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firebase credentials: %w", err)
		}
		return data, nil
	}
	// Ambient application-default credentials.
	return nil, nil
}

func startRosterSweep(cfg *config.Config, s *fstore.Store, lifecycle *seasons.Lifecycle) (*scheduler.Service, error) {
	sched, err := scheduler.New()
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}
	sweep := scheduler.NewRosterSweep(s, lifecycle)
	if _, err := sched.AddCronJob("roster-sweep", cfg.Jobs.RosterSweepCron, sweep.Run); err != nil {
		return nil, fmt.Errorf("register roster sweep: %w", err)
	}
	sched.Start()
	return sched, nil
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Club management
	mux.HandleFunc("POST /api/clubs", clubsapi.HandleRegister)
	mux.HandleFunc("PATCH /api/clubs/{club}", clubsapi.HandleUpdate)

	// Public club site
	mux.HandleFunc("GET /api/clubs/{club}/page", clubsapi.HandleClubPage)
	mux.HandleFunc("GET /api/clubs/{club}/partners", clubsapi.HandlePartners)
	mux.HandleFunc("POST /api/clubs/{club}/news/{id}/like", contentapi.HandleToggleLike)

	// Season lifecycle
	mux.HandleFunc("DELETE /api/clubs/{club}/seasons/{season}", seasonsapi.HandleDeleteSeason)
	mux.HandleFunc("POST /api/clubs/{club}/seasons/{season}/cleanup", seasonsapi.HandleCleanupRoster)
	mux.HandleFunc("DELETE /api/clubs/{club}/players/{id}/stats-cache", seasonsapi.HandleInvalidateStatsCache)

	// Billing
	mux.HandleFunc("POST /api/billing/checkout", billingapi.HandleCheckout)
	mux.HandleFunc("POST /api/billing/webhook", billingapi.HandleWebhook)
}
