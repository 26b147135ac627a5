// internal/store/fstore/batch.go
package fstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// batch wraps a Firestore WriteBatch. Each scheduled call counts as one
// write operation against the store's 500-op batch cap; callers chunk
// well below that.
type batch struct {
	client *firestore.Client
	wb     *firestore.WriteBatch
	n      int
}

func (b *batch) RemovePlayerSeason(ownerUID, teamID, playerID, dashKey, slashKey string) {
	doc := clubDoc(b.client, ownerUID).
		Collection(teamsCollection).Doc(teamID).
		Collection(playersCollection).Doc(playerID)

	// FieldPath handles season keys containing separators that a dotted
	// path string could not express. Unrecognized season strings pass
	// through normalization unchanged, so both forms can be equal and a
	// duplicate field path would make Firestore reject the update.
	updates := []firestore.Update{
		{FieldPath: firestore.FieldPath{"seasonData", dashKey}, Value: firestore.Delete},
	}
	if slashKey != dashKey {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"seasonData", slashKey}, Value: firestore.Delete})
	}
	updates = append(updates, firestore.Update{Path: "seasons", Value: firestore.ArrayRemove(dashKey, slashKey)})
	b.wb.Update(doc, updates)
	b.n++
}

func (b *batch) DeleteRosterEntry(ownerUID, seasonDocID, playerID string) {
	doc := clubDoc(b.client, ownerUID).
		Collection(seasonsCollection).Doc(seasonDocID).
		Collection(rosterCollection).Doc(playerID)
	b.wb.Delete(doc)
	b.n++
}

func (b *batch) DeleteStatsCache(ownerUID, playerID string) {
	doc := clubDoc(b.client, ownerUID).
		Collection(statsCacheCollection).Doc(playerID)
	b.wb.Delete(doc)
	b.n++
}

func (b *batch) DeleteSeason(ownerUID, seasonDocID string) {
	doc := clubDoc(b.client, ownerUID).
		Collection(seasonsCollection).Doc(seasonDocID)
	b.wb.Delete(doc)
	b.n++
}

func (b *batch) Len() int {
	return b.n
}

func (b *batch) Commit(ctx context.Context) error {
	if b.n == 0 {
		return nil
	}
	if _, err := b.wb.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch of %d ops: %w", b.n, err)
	}
	return nil
}
