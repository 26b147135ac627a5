// internal/store/fstore/events.go
package fstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
)

type eventRepo struct {
	client *firestore.Client
}

type eventMarker struct {
	ProcessedAt time.Time `firestore:"processedAt"`
}

// MarkProcessed creates the marker document for eventID. Create fails
// with AlreadyExists when a redelivered event raced or replayed, which is
// exactly the dedup signal.
func (r *eventRepo) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	doc := r.client.Collection(eventsCollection).Doc(eventID)
	_, err := doc.Create(ctx, eventMarker{ProcessedAt: time.Now().UTC()})
	if err != nil {
		if isAlreadyExists(err) {
			return true, nil
		}
		return false, fmt.Errorf("mark event %q processed: %w", eventID, err)
	}
	return false, nil
}
