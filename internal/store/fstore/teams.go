// internal/store/fstore/teams.go
package fstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/matchdayhq/clubsite/internal/store"
)

type teamRepo struct {
	client *firestore.Client
}

func (r *teamRepo) teams(ownerUID string) *firestore.CollectionRef {
	return clubDoc(r.client, ownerUID).Collection(teamsCollection)
}

func (r *teamRepo) players(ownerUID, teamID string) *firestore.CollectionRef {
	return r.teams(ownerUID).Doc(teamID).Collection(playersCollection)
}

func (r *teamRepo) ListTeams(ctx context.Context, ownerUID string) ([]store.Team, error) {
	var teams []store.Team
	iter := r.teams(ownerUID).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list teams for %q: %w", ownerUID, err)
		}

		var team store.Team
		if err := snap.DataTo(&team); err != nil {
			return nil, fmt.Errorf("decode team %q: %w", snap.Ref.ID, err)
		}
		team.ID = snap.Ref.ID
		teams = append(teams, team)
	}
	return teams, nil
}

func (r *teamRepo) GetTeam(ctx context.Context, ownerUID, teamID string) (*store.Team, error) {
	snap, err := r.teams(ownerUID).Doc(teamID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get team %q: %w", teamID, err)
	}

	var team store.Team
	if err := snap.DataTo(&team); err != nil {
		return nil, fmt.Errorf("decode team %q: %w", teamID, err)
	}
	team.ID = snap.Ref.ID
	return &team, nil
}

func (r *teamRepo) CreateTeam(ctx context.Context, ownerUID string, team *store.Team) error {
	doc := r.teams(ownerUID).Doc(team.ID)
	if team.ID == "" {
		doc = r.teams(ownerUID).NewDoc()
		team.ID = doc.ID
	}
	if _, err := doc.Create(ctx, team); err != nil {
		return fmt.Errorf("create team %q: %w", team.ID, err)
	}
	return nil
}

func (r *teamRepo) PlayerExists(ctx context.Context, ownerUID, teamID, playerID string) (bool, error) {
	snap, err := r.players(ownerUID, teamID).Doc(playerID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check player %q in team %q: %w", playerID, teamID, err)
	}
	return snap.Exists(), nil
}

func (r *teamRepo) GetPlayer(ctx context.Context, ownerUID, teamID, playerID string) (*store.Player, error) {
	snap, err := r.players(ownerUID, teamID).Doc(playerID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get player %q: %w", playerID, err)
	}

	var player store.Player
	if err := snap.DataTo(&player); err != nil {
		return nil, fmt.Errorf("decode player %q: %w", playerID, err)
	}
	player.ID = snap.Ref.ID
	return &player, nil
}

func (r *teamRepo) CreatePlayer(ctx context.Context, ownerUID, teamID string, player *store.Player) error {
	doc := r.players(ownerUID, teamID).Doc(player.ID)
	if player.ID == "" {
		doc = r.players(ownerUID, teamID).NewDoc()
		player.ID = doc.ID
	}
	if _, err := doc.Create(ctx, player); err != nil {
		return fmt.Errorf("create player %q: %w", player.ID, err)
	}
	return nil
}
