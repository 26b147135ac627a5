// internal/api/clubs/handlers.go
package clubs

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/matchdayhq/clubsite/internal/api/apiutil"
	"github.com/matchdayhq/clubsite/internal/api/authz"
	"github.com/matchdayhq/clubsite/internal/clubs"
	"github.com/matchdayhq/clubsite/internal/content"
	"github.com/matchdayhq/clubsite/internal/store"
)

const (
	clubPathKey     = "club"
	defaultTeamName = "First Team"
)

// Slugs are lowercase, digit-and-dash, 3 to 40 characters, no leading or
// trailing dash.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,38}[a-z0-9]$`)

var (
	clubStore store.Store
	resolver  *clubs.Resolver
	reader    *content.Reader
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s store.Store, r *clubs.Resolver, rd *content.Reader) {
	clubStore = s
	resolver = r
	reader = rd
}

type registerRequest struct {
	ClubName     string `json:"clubName" validate:"required,min=2,max=80"`
	Slug         string `json:"slug" validate:"required"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
	LogoURL      string `json:"logoUrl" validate:"omitempty,url"`
}

type updateRequest struct {
	ClubName     *string `json:"clubName"`
	LogoURL      *string `json:"logoUrl"`
	ContactEmail *string `json:"contactEmail"`
	ContactPhone *string `json:"contactPhone"`
	MainTeamID   *string `json:"mainTeamId"`
}

type profileResponse struct {
	ClubID       string    `json:"clubId"`
	ClubName     string    `json:"clubName"`
	MainTeamID   string    `json:"mainTeamId"`
	Plan         string    `json:"plan"`
	LogoURL      string    `json:"logoUrl"`
	ContactEmail string    `json:"contactEmail"`
	ContactPhone string    `json:"contactPhone"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toProfileResponse(p *store.ClubProfile) profileResponse {
	return profileResponse{
		ClubID:       p.ClubID,
		ClubName:     p.ClubName,
		MainTeamID:   p.MainTeamID,
		Plan:         p.Plan,
		LogoURL:      p.LogoURL,
		ContactEmail: p.ContactEmail,
		ContactPhone: p.ContactPhone,
		CreatedAt:    p.CreatedAt,
	}
}

// POST /api/clubs
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	uid, err := authz.RequireUID(r.Context())
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "registration failed")
		return
	}

	var req registerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := apiutil.ValidateStruct(req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		apiutil.WriteError(w, http.StatusBadRequest, "slug must be 3-40 lowercase letters, digits, or dashes")
		return
	}

	phone, err := normalizePhone(req.ContactPhone)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if _, err := clubStore.Clubs().FindByOwner(ctx, uid); err == nil {
		apiutil.WriteError(w, http.StatusConflict, "account already has a club")
		return
	} else if !isNotFound(err) {
		apiutil.WriteDomainError(w, r, err, "registration failed")
		return
	}
	if _, err := clubStore.Clubs().FindBySlug(ctx, req.Slug); err == nil {
		apiutil.WriteError(w, http.StatusConflict, "slug already in use")
		return
	} else if !isNotFound(err) {
		apiutil.WriteDomainError(w, r, err, "registration failed")
		return
	}

	teamID := uuid.NewString()
	profile := &store.ClubProfile{
		ID:           uid,
		ClubID:       req.Slug,
		OwnerUID:     uid,
		ClubName:     req.ClubName,
		MainTeamID:   teamID,
		Plan:         store.PlanFree,
		LogoURL:      req.LogoURL,
		ContactEmail: req.ContactEmail,
		ContactPhone: phone,
		CreatedAt:    time.Now().UTC(),
	}
	// Team first: a failed attempt leaves at worst an unreferenced team,
	// never a profile pointing at a team that was never written, and the
	// owner can retry without hitting the has-a-club conflict.
	if err := clubStore.Teams().CreateTeam(ctx, uid, &store.Team{ID: teamID, Name: defaultTeamName}); err != nil {
		apiutil.WriteDomainError(w, r, err, "registration failed")
		return
	}
	if err := clubStore.Clubs().CreateProfile(ctx, profile); err != nil {
		apiutil.WriteDomainError(w, r, err, "registration failed")
		return
	}

	logger.Info().Str("owner_uid", uid).Str("slug", req.Slug).Msg("Club registered")
	_ = apiutil.WriteJSON(w, http.StatusCreated, toProfileResponse(profile))
}

// PATCH /api/clubs/{club}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, err := authz.RequireUID(r.Context())
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "update failed")
		return
	}

	res, err := resolver.Resolve(r.Context(), r.PathValue(clubPathKey), clubs.FlowDelegated)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "update failed")
		return
	}
	if !clubs.CanManage(res.Profile, uid) {
		apiutil.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields, err := updateFields(r.Context(), res.OwnerUID, req)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fields) == 0 {
		apiutil.WriteError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := clubStore.Clubs().UpdateProfile(r.Context(), res.OwnerUID, fields); err != nil {
		apiutil.WriteDomainError(w, r, err, "update failed")
		return
	}

	updated, err := clubStore.Clubs().GetProfile(r.Context(), res.Profile.ID)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "update failed")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, toProfileResponse(updated))
}

// updateFields converts the partial payload into a field-path update,
// validating each provided value.
func updateFields(ctx context.Context, ownerUID string, req updateRequest) (map[string]any, error) {
	fields := map[string]any{}
	if req.ClubName != nil {
		if *req.ClubName == "" {
			return nil, apiutil.FieldError{Field: "clubName", Reason: "must not be empty"}
		}
		fields["clubName"] = *req.ClubName
	}
	if req.LogoURL != nil {
		fields["logoUrl"] = *req.LogoURL
	}
	if req.ContactEmail != nil {
		fields["contactEmail"] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		phone, err := normalizePhone(*req.ContactPhone)
		if err != nil {
			return nil, err
		}
		fields["contactPhone"] = phone
	}
	if req.MainTeamID != nil {
		if _, err := clubStore.Teams().GetTeam(ctx, ownerUID, *req.MainTeamID); err != nil {
			return nil, apiutil.FieldError{Field: "mainTeamId", Reason: "names an unknown team"}
		}
		fields["mainTeamId"] = *req.MainTeamID
	}
	return fields, nil
}

// GET /api/clubs/{club}/page
func HandleClubPage(w http.ResponseWriter, r *http.Request) {
	page, err := reader.ClubPage(r.Context(), r.PathValue(clubPathKey))
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "page assembly failed")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, page)
}

// GET /api/clubs/{club}/partners
func HandlePartners(w http.ResponseWriter, r *http.Request) {
	res, err := resolver.Resolve(r.Context(), r.PathValue(clubPathKey), clubs.FlowPublic)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "partner lookup failed")
		return
	}

	partners, err := clubStore.Content().ListPartners(r.Context(), res.OwnerUID)
	if err != nil {
		apiutil.WriteDomainError(w, r, err, "partner lookup failed")
		return
	}
	if partners == nil {
		partners = []store.Partner{}
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"partners": partners})
}

// normalizePhone validates and reformats a contact number into
// international format. Empty input passes through.
func normalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", apiutil.FieldError{Field: "contactPhone", Reason: "must be a valid international phone number"}
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
