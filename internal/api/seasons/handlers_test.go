package seasons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/seasons"
	"github.com/matchdayhq/clubsite/internal/store"
	"github.com/matchdayhq/clubsite/internal/store/memory"
)

func setupHandlers(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	InitHandlers(clubs.NewResolver(s.Clubs()), seasons.NewLifecycle(s))
	return s
}

func seedSeason(t *testing.T, s *memory.Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.Clubs().CreateProfile(ctx, &store.ClubProfile{
		ID:       "owner-1",
		OwnerUID: "owner-1",
		ClubID:   "rovers",
		ClubName: "Rovers",
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := s.Teams().CreateTeam(ctx, "owner-1", &store.Team{ID: "team-1", Name: "First"}); err != nil {
		t.Fatalf("seed team: %v", err)
	}
	if err := s.Teams().CreatePlayer(ctx, "owner-1", "team-1", &store.Player{
		ID:   "p1",
		Name: "Nine",
		SeasonData: map[string]store.PlayerSeasonStats{
			"2024-25": {Goals: 12},
		},
		Seasons: []string{"2024-25"},
	}); err != nil {
		t.Fatalf("seed player: %v", err)
	}
	if err := s.Seasons().CreateSeason(ctx, "owner-1", &store.Season{ID: "2024-25", Label: "2024/2025"}); err != nil {
		t.Fatalf("seed season: %v", err)
	}
	if err := s.Seasons().AddRosterEntry(ctx, "owner-1", "2024-25", &store.RosterEntry{PlayerID: "p1"}); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
	// Ghost entry: rostered but no player document anywhere.
	if err := s.Seasons().AddRosterEntry(ctx, "owner-1", "2024-25", &store.RosterEntry{PlayerID: "ghost"}); err != nil {
		t.Fatalf("seed ghost roster: %v", err)
	}
	s.SeedStatsCache("owner-1", "p1", nil)
}

func request(method, target, uid string, pathValues map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	if uid != "" {
		r = r.WithContext(authz.ContextWithUID(r.Context(), uid))
	}
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	return r
}

func TestHandleDeleteSeason(t *testing.T) {
	s := setupHandlers(t)
	seedSeason(t, s)

	w := httptest.NewRecorder()
	HandleDeleteSeason(w, request(http.MethodDelete, "/api/clubs/rovers/seasons/2024%2F2025", "owner-1",
		map[string]string{"club": "rovers", "season": "2024/2025"}))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if s.HasSeason("owner-1", "2024-25") {
		t.Error("season document survived")
	}
	if s.HasRosterEntry("owner-1", "2024-25", "p1") {
		t.Error("roster entry survived")
	}
	if s.HasStatsCache("owner-1", "p1") {
		t.Error("stats cache survived")
	}
	player, err := s.Teams().GetPlayer(context.Background(), "owner-1", "team-1", "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if _, ok := player.SeasonData["2024-25"]; ok {
		t.Error("seasonData not scrubbed")
	}
}

func TestHandleDeleteSeasonAuth(t *testing.T) {
	s := setupHandlers(t)
	seedSeason(t, s)

	w := httptest.NewRecorder()
	HandleDeleteSeason(w, request(http.MethodDelete, "/api/clubs/rovers/seasons/2024-25", "",
		map[string]string{"club": "rovers", "season": "2024-25"}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	HandleDeleteSeason(w, request(http.MethodDelete, "/api/clubs/rovers/seasons/2024-25", "stranger",
		map[string]string{"club": "rovers", "season": "2024-25"}))
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger status = %d", w.Code)
	}
}

func TestHandleDeleteSeasonUnknownClub(t *testing.T) {
	setupHandlers(t)
	w := httptest.NewRecorder()
	HandleDeleteSeason(w, request(http.MethodDelete, "/api/clubs/ghost/seasons/2024-25", "owner-1",
		map[string]string{"club": "ghost", "season": "2024-25"}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleDeleteSeasonEmptySeason(t *testing.T) {
	s := setupHandlers(t)
	seedSeason(t, s)
	w := httptest.NewRecorder()
	HandleDeleteSeason(w, request(http.MethodDelete, "/api/clubs/rovers/seasons/", "owner-1",
		map[string]string{"club": "rovers", "season": ""}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleCleanupRoster(t *testing.T) {
	s := setupHandlers(t)
	seedSeason(t, s)

	w := httptest.NewRecorder()
	HandleCleanupRoster(w, request(http.MethodPost, "/api/clubs/rovers/seasons/2024-25/cleanup", "owner-1",
		map[string]string{"club": "rovers", "season": "2024-25"}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"removed":1`) {
		t.Errorf("body = %s, want removed=1", w.Body.String())
	}
	if s.HasRosterEntry("owner-1", "2024-25", "ghost") {
		t.Error("ghost entry survived cleanup")
	}
	if !s.HasRosterEntry("owner-1", "2024-25", "p1") {
		t.Error("live entry removed by cleanup")
	}
}

func TestHandleInvalidateStatsCache(t *testing.T) {
	s := setupHandlers(t)
	seedSeason(t, s)

	w := httptest.NewRecorder()
	HandleInvalidateStatsCache(w, request(http.MethodDelete, "/api/clubs/rovers/players/p1/stats-cache", "owner-1",
		map[string]string{"club": "rovers", "id": "p1"}))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if s.HasStatsCache("owner-1", "p1") {
		t.Error("stats cache survived invalidation")
	}

	// Second invalidation of the now-absent cache is still a 204.
	w = httptest.NewRecorder()
	HandleInvalidateStatsCache(w, request(http.MethodDelete, "/api/clubs/rovers/players/p1/stats-cache", "owner-1",
		map[string]string{"club": "rovers", "id": "p1"}))
	if w.Code != http.StatusNoContent {
		t.Fatalf("repeat status = %d", w.Code)
	}
}
