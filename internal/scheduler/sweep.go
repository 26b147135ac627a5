// internal/scheduler/sweep.go
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/matchdayhq/clubsite/internal/seasons"
	"github.com/matchdayhq/clubsite/internal/store"
)

// RosterSweep walks every club's seasons and removes roster entries
// whose player no longer exists on the team.
type RosterSweep struct {
	store     store.Store
	lifecycle *seasons.Lifecycle
}

func NewRosterSweep(s store.Store, lifecycle *seasons.Lifecycle) *RosterSweep {
	return &RosterSweep{store: s, lifecycle: lifecycle}
}

// Run executes a single sweep pass across all clubs. The caller owns the
// context deadline; under the scheduler that is the per-run job context.
func (s *RosterSweep) Run(ctx context.Context) {
	logger := log.Ctx(ctx)

	started := time.Now()
	profiles, err := s.store.Clubs().ListProfiles(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Roster sweep failed to list clubs")
		return
	}

	var clubsSwept, entriesRemoved int
	for _, profile := range profiles {
		removed, err := s.sweepClub(ctx, profile)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("owner_uid", profile.OwnerUID).
				Msg("Roster sweep skipped club")
			continue
		}
		clubsSwept++
		entriesRemoved += removed
	}

	logger.Info().
		Int("clubs", clubsSwept).
		Int("entries_removed", entriesRemoved).
		Dur("elapsed", time.Since(started)).
		Msg("Roster sweep completed")
}

func (s *RosterSweep) sweepClub(ctx context.Context, profile store.ClubProfile) (int, error) {
	owner := profile.OwnerUID
	if owner == "" {
		owner = profile.ID
	}

	seasonDocs, err := s.store.Seasons().ListSeasons(ctx, owner)
	if err != nil {
		return 0, err
	}

	var removed int
	for _, season := range seasonDocs {
		n, err := s.lifecycle.CleanupRoster(ctx, owner, season.ID)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}
