// internal/store/memory/clubs.go
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matchdayhq/clubsite/internal/store"
)

type clubRepo struct {
	s *Store
}

func cloneProfile(p *store.ClubProfile) *store.ClubProfile {
	out := *p
	out.Admins = slices.Clone(p.Admins)
	return &out
}

func (r *clubRepo) GetProfile(_ context.Context, docID string) (*store.ClubProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(docID)
	if c == nil || c.profile == nil {
		return nil, store.ErrNotFound
	}
	return cloneProfile(c.profile), nil
}

func (r *clubRepo) FindBySlug(_ context.Context, slug string) (*store.ClubProfile, error) {
	return r.findOne(func(p *store.ClubProfile) bool { return p.ClubID == slug })
}

func (r *clubRepo) FindByOwner(_ context.Context, ownerUID string) (*store.ClubProfile, error) {
	return r.findOne(func(p *store.ClubProfile) bool { return p.OwnerUID == ownerUID })
}

func (r *clubRepo) FindByAdmin(_ context.Context, adminUID string) (*store.ClubProfile, error) {
	return r.findOne(func(p *store.ClubProfile) bool { return slices.Contains(p.Admins, adminUID) })
}

func (r *clubRepo) findOne(match func(*store.ClubProfile) bool) (*store.ClubProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.clubs {
		if c.profile != nil && match(c.profile) {
			return cloneProfile(c.profile), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *clubRepo) ListProfiles(_ context.Context) ([]store.ClubProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var profiles []store.ClubProfile
	for _, c := range r.s.clubs {
		if c.profile != nil {
			profiles = append(profiles, *cloneProfile(c.profile))
		}
	}
	slices.SortFunc(profiles, func(a, b store.ClubProfile) int {
		return strings.Compare(a.ID, b.ID)
	})
	return profiles, nil
}

func (r *clubRepo) CreateProfile(_ context.Context, profile *store.ClubProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if profile.ID == "" {
		profile.ID = profile.OwnerUID
	}
	c := r.s.ensureClub(profile.ID)
	if c.profile != nil {
		return fmt.Errorf("club profile for owner %q already exists", profile.OwnerUID)
	}
	c.profile = cloneProfile(profile)
	return nil
}

func (r *clubRepo) UpdateProfile(_ context.Context, ownerUID string, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := r.s.club(ownerUID)
	if c == nil || c.profile == nil {
		return store.ErrNotFound
	}

	for path, value := range fields {
		switch path {
		case "clubName":
			c.profile.ClubName, _ = value.(string)
		case "mainTeamId":
			c.profile.MainTeamID, _ = value.(string)
		case "plan":
			c.profile.Plan, _ = value.(string)
		case "logoUrl":
			c.profile.LogoURL, _ = value.(string)
		case "contactEmail":
			c.profile.ContactEmail, _ = value.(string)
		case "contactPhone":
			c.profile.ContactPhone, _ = value.(string)
		case "admins":
			if admins, ok := value.([]string); ok {
				c.profile.Admins = slices.Clone(admins)
			}
		default:
			return fmt.Errorf("unknown profile field %q", path)
		}
	}
	return nil
}

func (r *clubRepo) SetPlan(ctx context.Context, ownerUID, plan string) error {
	return r.UpdateProfile(ctx, ownerUID, map[string]any{"plan": plan})
}
