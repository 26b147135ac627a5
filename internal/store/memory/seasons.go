// internal/store/memory/seasons.go
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matchdayhq/clubsite/internal/store"
)

type seasonRepo struct {
	s *Store
}

func (r *seasonRepo) GetSeason(_ context.Context, ownerUID, seasonDocID string) (*store.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, store.ErrNotFound
	}
	season, ok := c.seasons[seasonDocID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *season
	return &out, nil
}

func (r *seasonRepo) ListSeasons(_ context.Context, ownerUID string) ([]store.Season, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, nil
	}

	seasons := make([]store.Season, 0, len(c.seasons))
	for _, season := range c.seasons {
		seasons = append(seasons, *season)
	}
	slices.SortFunc(seasons, func(a, b store.Season) int {
		return strings.Compare(a.ID, b.ID)
	})
	return seasons, nil
}

func (r *seasonRepo) CreateSeason(_ context.Context, ownerUID string, season *store.Season) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if season.ID == "" {
		return fmt.Errorf("season document ID is required")
	}
	c := r.s.ensureClub(ownerUID)
	if _, exists := c.seasons[season.ID]; exists {
		return fmt.Errorf("season %q already exists", season.ID)
	}
	copied := *season
	c.seasons[season.ID] = &copied
	return nil
}

func (r *seasonRepo) ListRoster(_ context.Context, ownerUID, seasonDocID string) ([]store.RosterEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, nil
	}

	entries := make([]store.RosterEntry, 0, len(c.roster[seasonDocID]))
	for _, entry := range c.roster[seasonDocID] {
		entries = append(entries, *entry)
	}
	slices.SortFunc(entries, func(a, b store.RosterEntry) int {
		return strings.Compare(a.PlayerID, b.PlayerID)
	})
	return entries, nil
}

func (r *seasonRepo) AddRosterEntry(_ context.Context, ownerUID, seasonDocID string, entry *store.RosterEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.PlayerID == "" {
		return fmt.Errorf("roster entry player ID is required")
	}
	c := r.s.ensureClub(ownerUID)
	roster := c.roster[seasonDocID]
	if roster == nil {
		roster = map[string]*store.RosterEntry{}
		c.roster[seasonDocID] = roster
	}
	copied := *entry
	roster[entry.PlayerID] = &copied
	return nil
}
