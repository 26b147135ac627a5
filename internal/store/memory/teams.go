// internal/store/memory/teams.go
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/matchdayhq/clubsite/internal/store"
)

type teamRepo struct {
	s *Store
}

func clonePlayer(p *store.Player) *store.Player {
	out := *p
	out.Seasons = slices.Clone(p.Seasons)
	out.SeasonData = maps.Clone(p.SeasonData)
	return &out
}

func (r *teamRepo) ListTeams(_ context.Context, ownerUID string) ([]store.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, nil
	}

	teams := make([]store.Team, 0, len(c.teams))
	for _, team := range c.teams {
		teams = append(teams, *team)
	}
	slices.SortFunc(teams, func(a, b store.Team) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return teams, nil
}

func (r *teamRepo) GetTeam(_ context.Context, ownerUID, teamID string) (*store.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, store.ErrNotFound
	}
	team, ok := c.teams[teamID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *team
	return &out, nil
}

func (r *teamRepo) CreateTeam(_ context.Context, ownerUID string, team *store.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := r.s.ensureClub(ownerUID)
	if team.ID == "" {
		r.s.nextID++
		team.ID = "team-" + strconv.Itoa(r.s.nextID)
	}
	if _, exists := c.teams[team.ID]; exists {
		return fmt.Errorf("team %q already exists", team.ID)
	}
	copied := *team
	c.teams[team.ID] = &copied
	return nil
}

func (r *teamRepo) PlayerExists(_ context.Context, ownerUID, teamID, playerID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return false, nil
	}
	players := c.players[teamID]
	if players == nil {
		return false, nil
	}
	_, ok := players[playerID]
	return ok, nil
}

func (r *teamRepo) GetPlayer(_ context.Context, ownerUID, teamID, playerID string) (*store.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, store.ErrNotFound
	}
	players := c.players[teamID]
	if players == nil {
		return nil, store.ErrNotFound
	}
	player, ok := players[playerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clonePlayer(player), nil
}

func (r *teamRepo) CreatePlayer(_ context.Context, ownerUID, teamID string, player *store.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := r.s.ensureClub(ownerUID)
	if player.ID == "" {
		r.s.nextID++
		player.ID = "player-" + strconv.Itoa(r.s.nextID)
	}
	players := c.players[teamID]
	if players == nil {
		players = map[string]*store.Player{}
		c.players[teamID] = players
	}
	if _, exists := players[player.ID]; exists {
		return fmt.Errorf("player %q already exists in team %q", player.ID, teamID)
	}
	players[player.ID] = clonePlayer(player)
	return nil
}
