// internal/store/fstore/seasons.go
package fstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/matchdayhq/clubsite/internal/store"
)

type seasonRepo struct {
	client *firestore.Client
}

func (r *seasonRepo) seasons(ownerUID string) *firestore.CollectionRef {
	return clubDoc(r.client, ownerUID).Collection(seasonsCollection)
}

func (r *seasonRepo) roster(ownerUID, seasonDocID string) *firestore.CollectionRef {
	return r.seasons(ownerUID).Doc(seasonDocID).Collection(rosterCollection)
}

func (r *seasonRepo) GetSeason(ctx context.Context, ownerUID, seasonDocID string) (*store.Season, error) {
	snap, err := r.seasons(ownerUID).Doc(seasonDocID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get season %q: %w", seasonDocID, err)
	}

	var season store.Season
	if err := snap.DataTo(&season); err != nil {
		return nil, fmt.Errorf("decode season %q: %w", seasonDocID, err)
	}
	season.ID = snap.Ref.ID
	return &season, nil
}

func (r *seasonRepo) ListSeasons(ctx context.Context, ownerUID string) ([]store.Season, error) {
	var seasons []store.Season
	iter := r.seasons(ownerUID).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list seasons for %q: %w", ownerUID, err)
		}

		var season store.Season
		if err := snap.DataTo(&season); err != nil {
			return nil, fmt.Errorf("decode season %q: %w", snap.Ref.ID, err)
		}
		season.ID = snap.Ref.ID
		seasons = append(seasons, season)
	}
	return seasons, nil
}

func (r *seasonRepo) CreateSeason(ctx context.Context, ownerUID string, season *store.Season) error {
	if season.ID == "" {
		return fmt.Errorf("season document ID is required")
	}
	if _, err := r.seasons(ownerUID).Doc(season.ID).Create(ctx, season); err != nil {
		return fmt.Errorf("create season %q: %w", season.ID, err)
	}
	return nil
}

func (r *seasonRepo) ListRoster(ctx context.Context, ownerUID, seasonDocID string) ([]store.RosterEntry, error) {
	var entries []store.RosterEntry
	iter := r.roster(ownerUID, seasonDocID).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list roster for season %q: %w", seasonDocID, err)
		}

		var entry store.RosterEntry
		if err := snap.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("decode roster entry %q: %w", snap.Ref.ID, err)
		}
		if entry.PlayerID == "" {
			entry.PlayerID = snap.Ref.ID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *seasonRepo) AddRosterEntry(ctx context.Context, ownerUID, seasonDocID string, entry *store.RosterEntry) error {
	if entry.PlayerID == "" {
		return fmt.Errorf("roster entry player ID is required")
	}
	if _, err := r.roster(ownerUID, seasonDocID).Doc(entry.PlayerID).Set(ctx, entry); err != nil {
		return fmt.Errorf("add roster entry %q: %w", entry.PlayerID, err)
	}
	return nil
}
