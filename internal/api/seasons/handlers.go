// internal/api/seasons/handlers.go
package seasons

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/matchdayhq/clubsite/internal/api/apiutil"
	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/seasons"
)

const (
	clubPathKey   = "club"
	seasonPathKey = "season"
	playerPathKey = "id"
)

var (
	resolver  *clubs.Resolver
	lifecycle *seasons.Lifecycle
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(r *clubs.Resolver, l *seasons.Lifecycle) {
	resolver = r
	lifecycle = l
}

// manage resolves the club from the path and checks that the caller may
// mutate it. A nil resolution means the response has been written.
func manage(w http.ResponseWriter, r *http.Request) *clubs.Resolution {
	uid, err := authz.RequireUID(r.Context())
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "season operation failed")
		return nil
	}

	res, err := resolver.Resolve(r.Context(), r.PathValue(clubPathKey), clubs.FlowDelegated)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "season operation failed")
		return nil
	}
	if !clubs.CanManage(res.Profile, uid) {
		apiutil.WriteError(w, http.StatusForbidden, "forbidden")
		return nil
	}
	return res
}

// DELETE /api/clubs/{club}/seasons/{season}
func HandleDeleteSeason(w http.ResponseWriter, r *http.Request) {
	res := manage(w, r)
	if res == nil {
		return
	}

	season := r.PathValue(seasonPathKey)
	if season == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "season is required")
		return
	}

	if err := lifecycle.DeleteSeason(r.Context(), res.OwnerUID, season); err != nil {
		apiutil.WriteDomainError(w, r, err, "season deletion failed")
		return
	}

	log.Ctx(r.Context()).Info().
		Str("owner_uid", res.OwnerUID).
		Str("season", season).
		Msg("Season deletion handled")
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/clubs/{club}/seasons/{season}/cleanup
func HandleCleanupRoster(w http.ResponseWriter, r *http.Request) {
	res := manage(w, r)
	if res == nil {
		return
	}

	season := r.PathValue(seasonPathKey)
	if season == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "season is required")
		return
	}

	removed, err := lifecycle.CleanupRoster(r.Context(), res.OwnerUID, season)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "roster cleanup failed")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// DELETE /api/clubs/{club}/players/{id}/stats-cache
func HandleInvalidateStatsCache(w http.ResponseWriter, r *http.Request) {
	res := manage(w, r)
	if res == nil {
		return
	}

	playerID := r.PathValue(playerPathKey)
	if playerID == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "player id is required")
		return
	}

	if err := lifecycle.InvalidateStatsCache(r.Context(), res.OwnerUID, playerID); err != nil {
		apiutil.WriteDomainError(w, r, err, "cache invalidation failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
