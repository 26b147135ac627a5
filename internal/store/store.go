// internal/store/store.go

// Package store defines the typed collection schemas and repository
// interfaces for the club document store. Every document is decoded into
// one of these structs at the store boundary; handlers and domain logic
// never see raw maps.
//
// Collection layout:
//
//	clubs/{ownerUid}                                  ClubProfile
//	clubs/{ownerUid}/teams/{teamId}                   Team
//	clubs/{ownerUid}/teams/{teamId}/players/{id}      Player
//	clubs/{ownerUid}/seasons/{seasonDocId}            Season (dash-form IDs)
//	clubs/{ownerUid}/seasons/{seasonDocId}/roster/{id} RosterEntry
//	clubs/{ownerUid}/public_player_stats_cache/{id}   PlayerStatsCache
//	clubs/{ownerUid}/news/{id}                        NewsArticle
//	clubs/{ownerUid}/videos/{id}                      Video
//	clubs/{ownerUid}/competitions/{id}                Competition
//	clubs/{ownerUid}/partners/{id}                    Partner
//	stripe_events/{eventId}                           processed-webhook marker
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for every expected-absence case: unknown club,
// missing document, empty query. Callers map it to 404 and never retry.
var ErrNotFound = errors.New("store: not found")

// Subscription plans.
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanOfficia = "officia"
)

// ClubProfile is the tenant root document. The document ID usually equals
// OwnerUID, but older clubs may have a document ID that differs from both
// the slug and the owner, which is why lookup needs multiple strategies.
type ClubProfile struct {
	ID           string    `firestore:"-"`
	ClubID       string    `firestore:"clubId"`
	OwnerUID     string    `firestore:"ownerUid"`
	ClubName     string    `firestore:"clubName"`
	MainTeamID   string    `firestore:"mainTeamId"`
	Plan         string    `firestore:"plan"`
	Admins       []string  `firestore:"admins"`
	LogoURL      string    `firestore:"logoUrl"`
	ContactEmail string    `firestore:"contactEmail"`
	ContactPhone string    `firestore:"contactPhone"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type Team struct {
	ID      string `firestore:"-"`
	Name    string `firestore:"name"`
	LogoURL string `firestore:"logoUrl"`
}

// PlayerSeasonStats is the per-season slice of a player document,
// stored under seasonData keyed by the dash-form season key.
type PlayerSeasonStats struct {
	Appearances int `firestore:"appearances"`
	Goals       int `firestore:"goals"`
	Assists     int `firestore:"assists"`
	YellowCards int `firestore:"yellowCards"`
	RedCards    int `firestore:"redCards"`
}

// Player lives under a team. Seasons lists every season key the player
// participated in; historically both dash and slash forms appear there,
// so removals must scrub both.
type Player struct {
	ID         string                       `firestore:"-"`
	Name       string                       `firestore:"name"`
	Position   string                       `firestore:"position"`
	SeasonData map[string]PlayerSeasonStats `firestore:"seasonData"`
	Seasons    []string                     `firestore:"seasons"`
}

// Season documents are always keyed by the dash form; Label keeps the
// slash form for display.
type Season struct {
	ID        string    `firestore:"-"`
	Label     string    `firestore:"label"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// RosterEntry is a thin per-season membership pointer. Its document ID is
// the player ID; a player document existing under some team is what makes
// the entry non-orphaned.
type RosterEntry struct {
	PlayerID string    `firestore:"playerId"`
	AddedAt  time.Time `firestore:"addedAt"`
}

// PlayerStatsCache is a derived aggregate, lazily recomputed by readers.
// The only lifecycle rule here is deletion on any underlying change.
type PlayerStatsCache struct {
	PlayerID   string                       `firestore:"playerId"`
	Totals     PlayerSeasonStats            `firestore:"totals"`
	BySeason   map[string]PlayerSeasonStats `firestore:"bySeason"`
	ComputedAt time.Time                    `firestore:"computedAt"`
}

type NewsArticle struct {
	ID          string    `firestore:"-"`
	Title       string    `firestore:"title"`
	Body        string    `firestore:"body"`
	ImageURL    string    `firestore:"imageUrl"`
	Featured    bool      `firestore:"featured"`
	LikeCount   int64     `firestore:"likeCount"`
	LikedBy     []string  `firestore:"likedBy"`
	PublishedAt time.Time `firestore:"publishedAt"`
}

type Video struct {
	ID          string    `firestore:"-"`
	Title       string    `firestore:"title"`
	URL         string    `firestore:"url"`
	PublishedAt time.Time `firestore:"publishedAt"`
}

type Competition struct {
	ID     string `firestore:"-"`
	Name   string `firestore:"name"`
	Season string `firestore:"season"`
}

type Partner struct {
	ID      string `firestore:"-"`
	Name    string `firestore:"name"`
	LogoURL string `firestore:"logoUrl"`
	Website string `firestore:"website"`
}

// ClubRepository reads and writes tenant root documents. The three Find
// methods back the resolver strategies; each returns ErrNotFound on an
// empty match rather than an error wrapper.
type ClubRepository interface {
	// GetProfile fetches by document ID.
	GetProfile(ctx context.Context, docID string) (*ClubProfile, error)
	// FindBySlug matches the clubId field, limited to one result.
	FindBySlug(ctx context.Context, slug string) (*ClubProfile, error)
	// FindByOwner matches the ownerUid field.
	FindByOwner(ctx context.Context, ownerUID string) (*ClubProfile, error)
	// FindByAdmin matches membership in the admins set.
	FindByAdmin(ctx context.Context, adminUID string) (*ClubProfile, error)
	// ListProfiles returns every club profile; used by maintenance
	// sweeps, not request handlers.
	ListProfiles(ctx context.Context) ([]ClubProfile, error)
	CreateProfile(ctx context.Context, profile *ClubProfile) error
	// UpdateProfile applies a partial field update to the profile
	// document addressed by owner UID.
	UpdateProfile(ctx context.Context, ownerUID string, fields map[string]any) error
	SetPlan(ctx context.Context, ownerUID, plan string) error
}

type TeamRepository interface {
	ListTeams(ctx context.Context, ownerUID string) ([]Team, error)
	GetTeam(ctx context.Context, ownerUID, teamID string) (*Team, error)
	CreateTeam(ctx context.Context, ownerUID string, team *Team) error
	// PlayerExists is a point read; it reports existence without
	// decoding the document.
	PlayerExists(ctx context.Context, ownerUID, teamID, playerID string) (bool, error)
	GetPlayer(ctx context.Context, ownerUID, teamID, playerID string) (*Player, error)
	CreatePlayer(ctx context.Context, ownerUID, teamID string, player *Player) error
}

type SeasonRepository interface {
	GetSeason(ctx context.Context, ownerUID, seasonDocID string) (*Season, error)
	ListSeasons(ctx context.Context, ownerUID string) ([]Season, error)
	CreateSeason(ctx context.Context, ownerUID string, season *Season) error
	ListRoster(ctx context.Context, ownerUID, seasonDocID string) ([]RosterEntry, error)
	AddRosterEntry(ctx context.Context, ownerUID, seasonDocID string, entry *RosterEntry) error
}

type ContentRepository interface {
	// ListNews returns articles ordered by publish time descending.
	ListNews(ctx context.Context, ownerUID string, limit int) ([]NewsArticle, error)
	GetNews(ctx context.Context, ownerUID, articleID string) (*NewsArticle, error)
	CreateNews(ctx context.Context, ownerUID string, article *NewsArticle) error
	// ToggleNewsLike atomically adds or removes the caller from likedBy
	// and adjusts likeCount inside a single-document transaction. It
	// returns the resulting like count and whether the caller now likes
	// the article.
	ToggleNewsLike(ctx context.Context, ownerUID, articleID, userUID string) (int64, bool, error)
	ListVideos(ctx context.Context, ownerUID string, limit int) ([]Video, error)
	ListCompetitions(ctx context.Context, ownerUID string) ([]Competition, error)
	ListPartners(ctx context.Context, ownerUID string) ([]Partner, error)
}

// EventRepository persists processed payment-webhook event IDs so that
// redelivered events short-circuit.
type EventRepository interface {
	// MarkProcessed records eventID and reports whether it had already
	// been recorded. The check-and-record is atomic.
	MarkProcessed(ctx context.Context, eventID string) (already bool, err error)
}

// Batch accumulates write operations that commit atomically together.
// Implementations must keep Len accurate so callers can stay under the
// store's per-batch operation cap. All operations are idempotent:
// deleting an absent document or removing an absent key is a no-op.
type Batch interface {
	// RemovePlayerSeason schedules removal of seasonData[dashKey],
	// seasonData[slashKey], and both key forms from the player's
	// seasons set. Counts as one operation.
	RemovePlayerSeason(ownerUID, teamID, playerID, dashKey, slashKey string)
	DeleteRosterEntry(ownerUID, seasonDocID, playerID string)
	DeleteStatsCache(ownerUID, playerID string)
	DeleteSeason(ownerUID, seasonDocID string)
	Len() int
	Commit(ctx context.Context) error
}

// Store aggregates the repositories over one backing client.
type Store interface {
	Clubs() ClubRepository
	Teams() TeamRepository
	Seasons() SeasonRepository
	Content() ContentRepository
	Events() EventRepository
	NewBatch() Batch
}
