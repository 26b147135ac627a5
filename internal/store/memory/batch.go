// internal/store/memory/batch.go
package memory

import (
	"context"
	"slices"

	"github.com/matchdayhq/clubsite/internal/store"
)

// batch queues mutations and applies them under one lock acquisition on
// Commit, mirroring the atomic commit of a Firestore write batch.
type batch struct {
	s   *Store
	ops []func()
}

func (b *batch) RemovePlayerSeason(ownerUID, teamID, playerID, dashKey, slashKey string) {
	b.ops = append(b.ops, func() {
		c := b.s.club(ownerUID)
		if c == nil {
			return
		}
		players := c.players[teamID]
		if players == nil {
			return
		}
		player := players[playerID]
		if player == nil {
			return
		}
		delete(player.SeasonData, dashKey)
		delete(player.SeasonData, slashKey)
		player.Seasons = slices.DeleteFunc(player.Seasons, func(key string) bool {
			return key == dashKey || key == slashKey
		})
	})
}

func (b *batch) DeleteRosterEntry(ownerUID, seasonDocID, playerID string) {
	b.ops = append(b.ops, func() {
		c := b.s.club(ownerUID)
		if c == nil {
			return
		}
		if roster := c.roster[seasonDocID]; roster != nil {
			delete(roster, playerID)
		}
	})
}

func (b *batch) DeleteStatsCache(ownerUID, playerID string) {
	b.ops = append(b.ops, func() {
		if c := b.s.club(ownerUID); c != nil {
			delete(c.statsCache, playerID)
		}
	})
}

func (b *batch) DeleteSeason(ownerUID, seasonDocID string) {
	b.ops = append(b.ops, func() {
		c := b.s.club(ownerUID)
		if c == nil {
			return
		}
		delete(c.seasons, seasonDocID)
		delete(c.roster, seasonDocID)
	})
}

func (b *batch) Len() int {
	return len(b.ops)
}

func (b *batch) Commit(_ context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, op := range b.ops {
		op()
	}
	b.ops = nil
	return nil
}

var _ store.Batch = (*batch)(nil)
