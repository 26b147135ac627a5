// internal/seasons/lifecycle.go
package seasons

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/matchdayhq/clubsite/internal/store"
)

// batchLimit stays safely under the store's 500-operation batch cap.
const batchLimit = 450

// Lifecycle implements the cross-collection season mutations. Every
// sub-operation is idempotent, so a caller that sees an error retries the
// whole operation; commits are atomic per chunk, not across chunks.
type Lifecycle struct {
	store store.Store
}

func NewLifecycle(s store.Store) *Lifecycle {
	return &Lifecycle{store: s}
}

// chunkedWriter accumulates batch operations and commits whenever the
// pending batch reaches batchLimit. Earlier chunks stay committed if a
// later chunk fails.
type chunkedWriter struct {
	store   store.Store
	limit   int
	pending store.Batch
}

func (w *chunkedWriter) add(ctx context.Context, op func(store.Batch)) error {
	if w.pending == nil {
		w.pending = w.store.NewBatch()
	}
	op(w.pending)
	if w.pending.Len() >= w.limit {
		batch := w.pending
		w.pending = nil
		return batch.Commit(ctx)
	}
	return nil
}

func (w *chunkedWriter) flush(ctx context.Context) error {
	if w.pending == nil {
		return nil
	}
	batch := w.pending
	w.pending = nil
	return batch.Commit(ctx)
}

// DeleteSeason removes a season and every denormalized trace of it:
// roster entries, the seasonData slice and seasons-set membership of each
// affected player, and the public stats cache of every rostered player.
// The season document itself is deleted last. The target season may be
// given in either key form.
//
// Concurrent deletions of the same season are idempotence-safe but not
// linearizable; both callers may observe success.
func (l *Lifecycle) DeleteSeason(ctx context.Context, ownerUID, season string) error {
	dashKey, slashKey := Keys(season)
	logger := log.Ctx(ctx)

	entries, err := l.store.Seasons().ListRoster(ctx, ownerUID, dashKey)
	if err != nil {
		return fmt.Errorf("enumerate roster: %w", err)
	}

	teams, err := l.store.Teams().ListTeams(ctx, ownerUID)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}

	writer := &chunkedWriter{store: l.store, limit: batchLimit}

	// Scrub per-player season data wherever the player actually lives.
	// The existence check keeps the batch update from failing on players
	// that were removed from their team after being rostered.
	for _, entry := range entries {
		for _, team := range teams {
			exists, err := l.store.Teams().PlayerExists(ctx, ownerUID, team.ID, entry.PlayerID)
			if err != nil {
				return fmt.Errorf("check player %q in team %q: %w", entry.PlayerID, team.ID, err)
			}
			if !exists {
				continue
			}
			teamID := team.ID
			playerID := entry.PlayerID
			if err := writer.add(ctx, func(b store.Batch) {
				b.RemovePlayerSeason(ownerUID, teamID, playerID, dashKey, slashKey)
			}); err != nil {
				return err
			}
		}
	}

	for _, entry := range entries {
		playerID := entry.PlayerID
		if err := writer.add(ctx, func(b store.Batch) {
			b.DeleteRosterEntry(ownerUID, dashKey, playerID)
		}); err != nil {
			return err
		}
	}

	// Cache invalidation is unconditional: the season's contribution to
	// each player's aggregate is gone even when the player still exists.
	for _, entry := range entries {
		playerID := entry.PlayerID
		if err := writer.add(ctx, func(b store.Batch) {
			b.DeleteStatsCache(ownerUID, playerID)
		}); err != nil {
			return err
		}
	}

	if err := writer.add(ctx, func(b store.Batch) {
		b.DeleteSeason(ownerUID, dashKey)
	}); err != nil {
		return err
	}

	if err := writer.flush(ctx); err != nil {
		return err
	}

	logger.Info().
		Str("owner_uid", ownerUID).
		Str("season", dashKey).
		Int("roster_entries", len(entries)).
		Msg("Season deleted")
	return nil
}

// CleanupRoster deletes every orphaned roster entry of the season, along
// with the orphan's stats cache, and returns the number of entries
// removed. An entry is orphaned when its player ID exists under no team
// of the club.
func (l *Lifecycle) CleanupRoster(ctx context.Context, ownerUID, season string) (int, error) {
	dashKey, _ := Keys(season)
	logger := log.Ctx(ctx)

	entries, err := l.store.Seasons().ListRoster(ctx, ownerUID, dashKey)
	if err != nil {
		return 0, fmt.Errorf("enumerate roster: %w", err)
	}

	teams, err := l.store.Teams().ListTeams(ctx, ownerUID)
	if err != nil {
		return 0, fmt.Errorf("list teams: %w", err)
	}

	writer := &chunkedWriter{store: l.store, limit: batchLimit}
	removed := 0

	for _, entry := range entries {
		found := false
		for _, team := range teams {
			exists, err := l.store.Teams().PlayerExists(ctx, ownerUID, team.ID, entry.PlayerID)
			if err != nil {
				return removed, fmt.Errorf("check player %q in team %q: %w", entry.PlayerID, team.ID, err)
			}
			if exists {
				found = true
				break
			}
		}
		if found {
			continue
		}

		playerID := entry.PlayerID
		if err := writer.add(ctx, func(b store.Batch) {
			b.DeleteRosterEntry(ownerUID, dashKey, playerID)
		}); err != nil {
			return removed, err
		}
		if err := writer.add(ctx, func(b store.Batch) {
			b.DeleteStatsCache(ownerUID, playerID)
		}); err != nil {
			return removed, err
		}
		removed++
	}

	if err := writer.flush(ctx); err != nil {
		return removed, err
	}

	if removed > 0 {
		logger.Info().
			Str("owner_uid", ownerUID).
			Str("season", dashKey).
			Int("removed", removed).
			Msg("Orphaned roster entries removed")
	}
	return removed, nil
}

// InvalidateStatsCache deletes one player's public stats cache document.
// Deleting an absent document is a no-op, so callers fire it after any
// write that could change the player's aggregates without checking first.
func (l *Lifecycle) InvalidateStatsCache(ctx context.Context, ownerUID, playerID string) error {
	batch := l.store.NewBatch()
	batch.DeleteStatsCache(ownerUID, playerID)
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("invalidate stats cache for %q: %w", playerID, err)
	}
	return nil
}
