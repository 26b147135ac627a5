// internal/content/reader.go
package content

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/store"
)

// Page is the public club page payload.
type Page struct {
	ClubID       string              `json:"clubId"`
	ClubName     string              `json:"clubName"`
	LogoURL      string              `json:"logoUrl"`
	Plan         string              `json:"plan"`
	Hero         []store.NewsArticle `json:"hero"`
	LatestNews   []store.NewsArticle `json:"latestNews"`
	Videos       []store.Video       `json:"videos"`
	Competitions []store.Competition `json:"competitions"`
	Partners     []store.Partner     `json:"partners"`
}

// Reader composes a club's public page from its content collections.
// Sub-fetch failures degrade to empty sections; only an unresolvable club
// identifier is a hard failure (store.ErrNotFound).
type Reader struct {
	resolver  *clubs.Resolver
	store     store.Store
	heroLimit int
}

func NewReader(resolver *clubs.Resolver, s store.Store, heroLimit int) *Reader {
	return &Reader{
		resolver:  resolver,
		store:     s,
		heroLimit: ClampHeroLimit(heroLimit),
	}
}

// ClubPage resolves identifier through the public strategies and
// assembles the page. The content fetches run in parallel; each one logs
// and degrades on failure rather than failing the page.
func (r *Reader) ClubPage(ctx context.Context, identifier string) (*Page, error) {
	res, err := r.resolver.Resolve(ctx, identifier, clubs.FlowPublic)
	if err != nil {
		return nil, err
	}

	profile := res.Profile
	owner := res.OwnerUID
	logger := log.Ctx(ctx)

	page := &Page{
		ClubID:   profile.ClubID,
		ClubName: profile.ClubName,
		LogoURL:  profile.LogoURL,
		Plan:     profile.Plan,
	}

	var (
		articles []store.NewsArticle
		mainTeam *store.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		articles, err = r.store.Content().ListNews(gctx, owner, r.heroLimit*3)
		if err != nil {
			logger.Warn().Err(err).Str("owner_uid", owner).Msg("News fetch failed, degrading to empty")
			articles = nil
		}
		return nil
	})
	g.Go(func() error {
		videos, err := r.store.Content().ListVideos(gctx, owner, latestNewsLimit)
		if err != nil {
			logger.Warn().Err(err).Str("owner_uid", owner).Msg("Video fetch failed, degrading to empty")
			return nil
		}
		page.Videos = videos
		return nil
	})
	g.Go(func() error {
		comps, err := r.store.Content().ListCompetitions(gctx, owner)
		if err != nil {
			logger.Warn().Err(err).Str("owner_uid", owner).Msg("Competition fetch failed, degrading to empty")
			return nil
		}
		page.Competitions = comps
		return nil
	})
	g.Go(func() error {
		partners, err := r.store.Content().ListPartners(gctx, owner)
		if err != nil {
			logger.Warn().Err(err).Str("owner_uid", owner).Msg("Partner fetch failed, degrading to empty")
			return nil
		}
		page.Partners = partners
		return nil
	})
	if profile.MainTeamID != "" {
		g.Go(func() error {
			team, err := r.store.Teams().GetTeam(gctx, owner, profile.MainTeamID)
			if err != nil {
				logger.Warn().Err(err).Str("owner_uid", owner).Str("team_id", profile.MainTeamID).
					Msg("Main team fetch failed, using profile fields")
				return nil
			}
			mainTeam = team
			return nil
		})
	}
	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()

	page.Hero = SelectHero(articles, r.heroLimit)
	page.LatestNews = LatestNews(articles)

	// Main-team override: the designated team's branding wins over the
	// profile's own fields when present.
	if mainTeam != nil {
		if mainTeam.Name != "" {
			page.ClubName = mainTeam.Name
		}
		if mainTeam.LogoURL != "" {
			page.LogoURL = mainTeam.LogoURL
		}
	}

	return page, nil
}
