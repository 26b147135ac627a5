// internal/store/memory/store.go

// Package memory is an in-memory store.Store used by tests and local
// development. It mirrors the Firestore implementation's semantics:
// ErrNotFound for absence, idempotent deletes, atomic batch commits.
package memory

import (
	"context"
	"sync"

	"github.com/matchdayhq/clubsite/internal/store"
)

type clubData struct {
	profile    *store.ClubProfile
	teams      map[string]*store.Team
	players    map[string]map[string]*store.Player // teamID -> playerID
	seasons    map[string]*store.Season
	roster     map[string]map[string]*store.RosterEntry // seasonDocID -> playerID
	statsCache map[string]*store.PlayerStatsCache
	news       map[string]*store.NewsArticle
	videos     map[string]*store.Video
	comps      map[string]*store.Competition
	partners   map[string]*store.Partner
}

func newClubData() *clubData {
	return &clubData{
		teams:      map[string]*store.Team{},
		players:    map[string]map[string]*store.Player{},
		seasons:    map[string]*store.Season{},
		roster:     map[string]map[string]*store.RosterEntry{},
		statsCache: map[string]*store.PlayerStatsCache{},
		news:       map[string]*store.NewsArticle{},
		videos:     map[string]*store.Video{},
		comps:      map[string]*store.Competition{},
		partners:   map[string]*store.Partner{},
	}
}

// Store holds every club keyed by profile document ID.
type Store struct {
	mu     sync.RWMutex
	clubs  map[string]*clubData
	events map[string]bool
	nextID int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		clubs:  map[string]*clubData{},
		events: map[string]bool{},
	}
}

func (s *Store) Clubs() store.ClubRepository      { return &clubRepo{s: s} }
func (s *Store) Teams() store.TeamRepository      { return &teamRepo{s: s} }
func (s *Store) Seasons() store.SeasonRepository  { return &seasonRepo{s: s} }
func (s *Store) Content() store.ContentRepository { return &contentRepo{s: s} }
func (s *Store) Events() store.EventRepository    { return &eventRepo{s: s} }

func (s *Store) NewBatch() store.Batch {
	return &batch{s: s}
}

// club returns the data bucket for a profile document ID, or nil.
// Callers must hold s.mu.
func (s *Store) club(docID string) *clubData {
	return s.clubs[docID]
}

// ensureClub creates the bucket if needed. Callers must hold s.mu.
func (s *Store) ensureClub(docID string) *clubData {
	c := s.clubs[docID]
	if c == nil {
		c = newClubData()
		s.clubs[docID] = c
	}
	return c
}

// SeedStatsCache installs a stats-cache document directly, bypassing the
// repositories. Test fixture helper.
func (s *Store) SeedStatsCache(ownerUID, playerID string, cache *store.PlayerStatsCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureClub(ownerUID)
	if cache == nil {
		cache = &store.PlayerStatsCache{PlayerID: playerID}
	}
	c.statsCache[playerID] = cache
}

// HasStatsCache reports whether a stats-cache document exists.
func (s *Store) HasStatsCache(ownerUID, playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.club(ownerUID)
	if c == nil {
		return false
	}
	_, ok := c.statsCache[playerID]
	return ok
}

// HasSeason reports whether a season document exists.
func (s *Store) HasSeason(ownerUID, seasonDocID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.club(ownerUID)
	if c == nil {
		return false
	}
	_, ok := c.seasons[seasonDocID]
	return ok
}

// HasRosterEntry reports whether a roster pointer exists.
func (s *Store) HasRosterEntry(ownerUID, seasonDocID, playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.club(ownerUID)
	if c == nil {
		return false
	}
	entries := c.roster[seasonDocID]
	if entries == nil {
		return false
	}
	_, ok := entries[playerID]
	return ok
}

type eventRepo struct {
	s *Store
}

func (r *eventRepo) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.events[eventID] {
		return true, nil
	}
	r.s.events[eventID] = true
	return false, nil
}
