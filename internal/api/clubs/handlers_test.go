package clubs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/content"
	"github.com/matchdayhq/clubsite/internal/store"
	"github.com/matchdayhq/clubsite/internal/store/memory"
)

func setupHandlers(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	resolver := clubs.NewResolver(s.Clubs())
	InitHandlers(s, resolver, content.NewReader(resolver, s, 3))
	return s
}

func authedRequest(method, target, body, uid string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if uid != "" {
		r = r.WithContext(authz.ContextWithUID(r.Context(), uid))
	}
	return r
}

func seedClub(t *testing.T, s *memory.Store, owner, slug string) {
	t.Helper()
	if err := s.Clubs().CreateProfile(context.Background(), &store.ClubProfile{
		ID:       owner,
		OwnerUID: owner,
		ClubID:   slug,
		ClubName: "Seeded FC",
		Plan:     store.PlanFree,
	}); err != nil {
		t.Fatalf("seed club: %v", err)
	}
}

func TestHandleRegisterCreatesClubAndDefaultTeam(t *testing.T) {
	s := setupHandlers(t)

	body := `{"clubName":"Rovers FC","slug":"rovers-fc","contactEmail":"info@rovers.example","contactPhone":"+31 6 12345678"}`
	w := httptest.NewRecorder()
	HandleRegister(w, authedRequest(http.MethodPost, "/api/clubs", body, "owner-1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp profileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ClubID != "rovers-fc" || resp.Plan != store.PlanFree {
		t.Errorf("unexpected profile: %+v", resp)
	}
	if resp.MainTeamID == "" {
		t.Fatal("mainTeamId not assigned")
	}
	if !strings.HasPrefix(resp.ContactPhone, "+31 ") {
		t.Errorf("phone not normalized: %q", resp.ContactPhone)
	}

	team, err := s.Teams().GetTeam(context.Background(), "owner-1", resp.MainTeamID)
	if err != nil {
		t.Fatalf("default team missing: %v", err)
	}
	if team.Name != defaultTeamName {
		t.Errorf("team name = %q", team.Name)
	}
}

func TestHandleRegisterUnauthenticated(t *testing.T) {
	setupHandlers(t)
	w := httptest.NewRecorder()
	HandleRegister(w, authedRequest(http.MethodPost, "/api/clubs", `{"clubName":"X FC","slug":"x-fc"}`, ""))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestHandleRegisterRejectsBadInput(t *testing.T) {
	setupHandlers(t)
	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"slug":"rovers"}`},
		{"bad slug", `{"clubName":"Rovers","slug":"Rovers FC!"}`},
		{"bad email", `{"clubName":"Rovers","slug":"rovers","contactEmail":"nope"}`},
		{"bad phone", `{"clubName":"Rovers","slug":"rovers","contactPhone":"12"}`},
		{"unknown field", `{"clubName":"Rovers","slug":"rovers","color":"red"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleRegister(w, authedRequest(http.MethodPost, "/api/clubs", tc.body, "owner-1"))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleRegisterRetriesAfterPartialFailure(t *testing.T) {
	s := setupHandlers(t)

	// A prior attempt wrote the default team but died before the profile.
	// The retry must succeed rather than trip the has-a-club conflict.
	if err := s.Teams().CreateTeam(context.Background(), "owner-1", &store.Team{
		ID:   "stale-team",
		Name: defaultTeamName,
	}); err != nil {
		t.Fatalf("seed stale team: %v", err)
	}

	body := `{"clubName":"Rovers FC","slug":"rovers-fc"}`
	w := httptest.NewRecorder()
	HandleRegister(w, authedRequest(http.MethodPost, "/api/clubs", body, "owner-1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp profileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.MainTeamID == "" || resp.MainTeamID == "stale-team" {
		t.Fatalf("mainTeamId = %q, want a fresh team", resp.MainTeamID)
	}
	if _, err := s.Teams().GetTeam(context.Background(), "owner-1", resp.MainTeamID); err != nil {
		t.Fatalf("fresh team missing: %v", err)
	}
}

func TestHandleRegisterConflicts(t *testing.T) {
	s := setupHandlers(t)
	seedClub(t, s, "owner-1", "rovers")

	// Same owner, new slug.
	w := httptest.NewRecorder()
	HandleRegister(w, authedRequest(http.MethodPost, "/api/clubs", `{"clubName":"Second","slug":"second"}`, "owner-1"))
	if w.Code != http.StatusConflict {
		t.Fatalf("owner conflict status = %d", w.Code)
	}

	// New owner, taken slug.
	w = httptest.NewRecorder()
	HandleRegister(w, authedRequest(http.MethodPost, "/api/clubs", `{"clubName":"Imposter","slug":"rovers"}`, "owner-2"))
	if w.Code != http.StatusConflict {
		t.Fatalf("slug conflict status = %d", w.Code)
	}
}

func TestHandleUpdatePartialFields(t *testing.T) {
	s := setupHandlers(t)
	seedClub(t, s, "owner-1", "rovers")

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPatch, "/api/clubs/rovers", `{"clubName":"Rovers 1900"}`, "owner-1")
	r.SetPathValue("club", "rovers")
	HandleUpdate(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	profile, err := s.Clubs().GetProfile(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ClubName != "Rovers 1900" {
		t.Errorf("clubName = %q", profile.ClubName)
	}
	if profile.ClubID != "rovers" {
		t.Errorf("untouched field changed: %q", profile.ClubID)
	}
}

func TestHandleUpdateForbiddenForStrangers(t *testing.T) {
	s := setupHandlers(t)
	seedClub(t, s, "owner-1", "rovers")

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPatch, "/api/clubs/rovers", `{"clubName":"Hijacked"}`, "intruder")
	r.SetPathValue("club", "rovers")
	HandleUpdate(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestHandleUpdateAllowsDelegatedAdmin(t *testing.T) {
	s := setupHandlers(t)
	if err := s.Clubs().CreateProfile(context.Background(), &store.ClubProfile{
		ID:       "owner-1",
		OwnerUID: "owner-1",
		ClubID:   "rovers",
		ClubName: "Rovers",
		Admins:   []string{"helper-1"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPatch, "/api/clubs/rovers", `{"clubName":"Rovers United"}`, "helper-1")
	r.SetPathValue("club", "rovers")
	HandleUpdate(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleUpdateUnknownClub(t *testing.T) {
	setupHandlers(t)
	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPatch, "/api/clubs/ghost", `{"clubName":"Ghost"}`, "owner-1")
	r.SetPathValue("club", "ghost")
	HandleUpdate(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleUpdateRejectsUnknownMainTeam(t *testing.T) {
	s := setupHandlers(t)
	seedClub(t, s, "owner-1", "rovers")

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPatch, "/api/clubs/rovers", `{"mainTeamId":"no-such-team"}`, "owner-1")
	r.SetPathValue("club", "rovers")
	HandleUpdate(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleClubPage(t *testing.T) {
	s := setupHandlers(t)
	seedClub(t, s, "owner-1", "rovers")
	if err := s.Content().CreateNews(context.Background(), "owner-1", &store.NewsArticle{
		ID:          "n1",
		Title:       "Season opener",
		PublishedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed news: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/clubs/rovers/page", nil)
	r.SetPathValue("club", "rovers")
	HandleClubPage(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var page content.Page
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.ClubID != "rovers" || len(page.Hero) != 1 {
		t.Errorf("unexpected page: clubId=%q hero=%d", page.ClubID, len(page.Hero))
	}
}

func TestHandleClubPageUnknownClub(t *testing.T) {
	setupHandlers(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/clubs/ghost/page", nil)
	r.SetPathValue("club", "ghost")
	HandleClubPage(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandlePartnersEmptyList(t *testing.T) {
	s := setupHandlers(t)
	seedClub(t, s, "owner-1", "rovers")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/clubs/rovers/partners", nil)
	r.SetPathValue("club", "rovers")
	HandlePartners(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"partners":[]`) {
		t.Errorf("expected empty partners array, got %s", w.Body.String())
	}
}
