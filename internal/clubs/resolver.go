// internal/clubs/resolver.go

// Package clubs maps public club identifiers and account identifiers to
// the owner UID that namespaces all of a club's data.
package clubs

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/matchdayhq/clubsite/internal/store"
)

// Flow selects which lookup strategies apply. Public traffic must not be
// able to enumerate clubs by owner UID or admin membership, so those
// strategies only run for authenticated flows.
type Flow int

const (
	// FlowPublic tries document ID, then the clubId field.
	FlowPublic Flow = iota
	// FlowAccount additionally tries the ownerUid field.
	FlowAccount
	// FlowDelegated additionally tries admins-set membership.
	FlowDelegated
)

// Resolution carries the winning profile and the derived owner UID.
type Resolution struct {
	OwnerUID string
	Profile  *store.ClubProfile
}

// Resolver performs the ordered identity lookup. It never writes; a miss
// on every strategy is store.ErrNotFound, surfaced as 404 and never
// retried.
type Resolver struct {
	clubs store.ClubRepository
}

func NewResolver(clubs store.ClubRepository) *Resolver {
	return &Resolver{clubs: clubs}
}

// Resolve runs the strategies in their fixed precedence order:
//
//  1. identifier as profile document ID (cheapest; covers the common
//     case where the slug equals the account ID)
//  2. clubId field equality
//  3. ownerUid field equality (FlowAccount and above)
//  4. admins-set membership (FlowDelegated only)
//
// The order is load-bearing: when several heuristics could match, the
// earlier one decides which profile wins.
func (r *Resolver) Resolve(ctx context.Context, identifier string, flow Flow) (*Resolution, error) {
	if identifier == "" {
		return nil, store.ErrNotFound
	}

	profile, err := r.clubs.GetProfile(ctx, identifier)
	if err == nil {
		return resolution(profile, identifier), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("resolve by document ID: %w", err)
	}

	profile, err = r.clubs.FindBySlug(ctx, identifier)
	if err == nil {
		return resolution(profile, identifier), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("resolve by slug: %w", err)
	}

	if flow >= FlowAccount {
		profile, err = r.clubs.FindByOwner(ctx, identifier)
		if err == nil {
			return &Resolution{OwnerUID: identifier, Profile: profile}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("resolve by owner UID: %w", err)
		}
	}

	if flow >= FlowDelegated {
		profile, err = r.clubs.FindByAdmin(ctx, identifier)
		if err == nil {
			return &Resolution{OwnerUID: ownerOf(profile), Profile: profile}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("resolve by admin membership: %w", err)
		}
	}

	return nil, store.ErrNotFound
}

// ResolveOwnerUID is the plain-string convenience over Resolve.
func (r *Resolver) ResolveOwnerUID(ctx context.Context, identifier string, flow Flow) (string, error) {
	res, err := r.Resolve(ctx, identifier, flow)
	if err != nil {
		return "", err
	}
	return res.OwnerUID, nil
}

// resolution derives the owner UID for the direct-ID and slug strategies:
// the profile's ownerUid field when set, otherwise the identifier that
// matched.
func resolution(profile *store.ClubProfile, identifier string) *Resolution {
	uid := profile.OwnerUID
	if uid == "" {
		uid = identifier
	}
	return &Resolution{OwnerUID: uid, Profile: profile}
}

func ownerOf(profile *store.ClubProfile) string {
	if profile.OwnerUID != "" {
		return profile.OwnerUID
	}
	return profile.ID
}

// CanManage reports whether uid may mutate the club: the owner or a
// delegated admin.
func CanManage(profile *store.ClubProfile, uid string) bool {
	if profile == nil || uid == "" {
		return false
	}
	if ownerOf(profile) == uid {
		return true
	}
	return slices.Contains(profile.Admins, uid)
}
