// internal/store/fstore/client.go

// Package fstore implements the store interfaces on Cloud Firestore.
package fstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/matchdayhq/clubsite/internal/store"
)

const (
	clubsCollection      = "clubs"
	teamsCollection      = "teams"
	playersCollection    = "players"
	seasonsCollection    = "seasons"
	rosterCollection     = "roster"
	statsCacheCollection = "public_player_stats_cache"
	newsCollection       = "news"
	videosCollection     = "videos"
	compsCollection      = "competitions"
	partnersCollection   = "partners"
	eventsCollection     = "stripe_events"
)

// Store wraps a Firestore client. Construction fails hard if the client
// cannot be created; there is no degraded stub mode.
type Store struct {
	client *firestore.Client
}

var _ store.Store = (*Store)(nil)

// New connects to Firestore for the given project. credentialsJSON may be
// empty, in which case ambient application-default credentials are used.
func New(ctx context.Context, projectID string, credentialsJSON []byte) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project ID is required")
	}

	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Clubs() store.ClubRepository      { return &clubRepo{client: s.client} }
func (s *Store) Teams() store.TeamRepository      { return &teamRepo{client: s.client} }
func (s *Store) Seasons() store.SeasonRepository  { return &seasonRepo{client: s.client} }
func (s *Store) Content() store.ContentRepository { return &contentRepo{client: s.client} }
func (s *Store) Events() store.EventRepository    { return &eventRepo{client: s.client} }
func (s *Store) NewBatch() store.Batch            { return &batch{client: s.client, wb: s.client.Batch()} }

func clubDoc(c *firestore.Client, ownerUID string) *firestore.DocumentRef {
	return c.Collection(clubsCollection).Doc(ownerUID)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
