// internal/store/fstore/clubs.go
package fstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/matchdayhq/clubsite/internal/store"
)

type clubRepo struct {
	client *firestore.Client
}

func (r *clubRepo) GetProfile(ctx context.Context, docID string) (*store.ClubProfile, error) {
	snap, err := r.client.Collection(clubsCollection).Doc(docID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get club profile %q: %w", docID, err)
	}
	return decodeProfile(snap)
}

func (r *clubRepo) FindBySlug(ctx context.Context, slug string) (*store.ClubProfile, error) {
	return r.findOne(ctx, r.client.Collection(clubsCollection).Where("clubId", "==", slug))
}

func (r *clubRepo) FindByOwner(ctx context.Context, ownerUID string) (*store.ClubProfile, error) {
	return r.findOne(ctx, r.client.Collection(clubsCollection).Where("ownerUid", "==", ownerUID))
}

func (r *clubRepo) FindByAdmin(ctx context.Context, adminUID string) (*store.ClubProfile, error) {
	return r.findOne(ctx, r.client.Collection(clubsCollection).Where("admins", "array-contains", adminUID))
}

func (r *clubRepo) findOne(ctx context.Context, q firestore.Query) (*store.ClubProfile, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query club profile: %w", err)
	}
	return decodeProfile(snap)
}

func (r *clubRepo) ListProfiles(ctx context.Context) ([]store.ClubProfile, error) {
	var profiles []store.ClubProfile
	iter := r.client.Collection(clubsCollection).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list club profiles: %w", err)
		}
		profile, err := decodeProfile(snap)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

func (r *clubRepo) CreateProfile(ctx context.Context, profile *store.ClubProfile) error {
	if _, err := clubDoc(r.client, profile.OwnerUID).Create(ctx, profile); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("club profile for owner %q already exists", profile.OwnerUID)
		}
		return fmt.Errorf("create club profile: %w", err)
	}
	return nil
}

func (r *clubRepo) UpdateProfile(ctx context.Context, ownerUID string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if len(updates) == 0 {
		return nil
	}

	if _, err := clubDoc(r.client, ownerUID).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("update club profile %q: %w", ownerUID, err)
	}
	return nil
}

func (r *clubRepo) SetPlan(ctx context.Context, ownerUID, plan string) error {
	return r.UpdateProfile(ctx, ownerUID, map[string]any{"plan": plan})
}

func decodeProfile(snap *firestore.DocumentSnapshot) (*store.ClubProfile, error) {
	var profile store.ClubProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("decode club profile %q: %w", snap.Ref.ID, err)
	}
	profile.ID = snap.Ref.ID
	return &profile, nil
}
