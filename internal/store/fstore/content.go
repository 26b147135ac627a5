// internal/store/fstore/content.go
package fstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/matchdayhq/clubsite/internal/store"
)

type contentRepo struct {
	client *firestore.Client
}

func (r *contentRepo) collection(ownerUID, name string) *firestore.CollectionRef {
	return clubDoc(r.client, ownerUID).Collection(name)
}

func (r *contentRepo) ListNews(ctx context.Context, ownerUID string, limit int) ([]store.NewsArticle, error) {
	q := r.collection(ownerUID, newsCollection).
		OrderBy("publishedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var articles []store.NewsArticle
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list news for %q: %w", ownerUID, err)
		}

		var article store.NewsArticle
		if err := snap.DataTo(&article); err != nil {
			return nil, fmt.Errorf("decode news article %q: %w", snap.Ref.ID, err)
		}
		article.ID = snap.Ref.ID
		articles = append(articles, article)
	}
	return articles, nil
}

func (r *contentRepo) GetNews(ctx context.Context, ownerUID, articleID string) (*store.NewsArticle, error) {
	snap, err := r.collection(ownerUID, newsCollection).Doc(articleID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get news article %q: %w", articleID, err)
	}

	var article store.NewsArticle
	if err := snap.DataTo(&article); err != nil {
		return nil, fmt.Errorf("decode news article %q: %w", articleID, err)
	}
	article.ID = snap.Ref.ID
	return &article, nil
}

func (r *contentRepo) CreateNews(ctx context.Context, ownerUID string, article *store.NewsArticle) error {
	doc := r.collection(ownerUID, newsCollection).Doc(article.ID)
	if article.ID == "" {
		doc = r.collection(ownerUID, newsCollection).NewDoc()
		article.ID = doc.ID
	}
	if _, err := doc.Create(ctx, article); err != nil {
		return fmt.Errorf("create news article %q: %w", article.ID, err)
	}
	return nil
}

// ToggleNewsLike runs a single-document transaction so concurrent toggles
// cannot lose counter updates.
func (r *contentRepo) ToggleNewsLike(ctx context.Context, ownerUID, articleID, userUID string) (int64, bool, error) {
	doc := r.collection(ownerUID, newsCollection).Doc(articleID)

	var count int64
	var liked bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(doc)
		if err != nil {
			return err
		}

		var article store.NewsArticle
		if err := snap.DataTo(&article); err != nil {
			return fmt.Errorf("decode news article %q: %w", articleID, err)
		}

		already := false
		for _, uid := range article.LikedBy {
			if uid == userUID {
				already = true
				break
			}
		}

		if already {
			count = article.LikeCount - 1
			liked = false
			return tx.Update(doc, []firestore.Update{
				{Path: "likeCount", Value: firestore.Increment(-1)},
				{Path: "likedBy", Value: firestore.ArrayRemove(userUID)},
			})
		}

		count = article.LikeCount + 1
		liked = true
		return tx.Update(doc, []firestore.Update{
			{Path: "likeCount", Value: firestore.Increment(1)},
			{Path: "likedBy", Value: firestore.ArrayUnion(userUID)},
		})
	})
	if err != nil {
		if isNotFound(err) {
			return 0, false, store.ErrNotFound
		}
		return 0, false, fmt.Errorf("toggle like on %q: %w", articleID, err)
	}
	return count, liked, nil
}

func (r *contentRepo) ListVideos(ctx context.Context, ownerUID string, limit int) ([]store.Video, error) {
	q := r.collection(ownerUID, videosCollection).
		OrderBy("publishedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var videos []store.Video
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list videos for %q: %w", ownerUID, err)
		}

		var video store.Video
		if err := snap.DataTo(&video); err != nil {
			return nil, fmt.Errorf("decode video %q: %w", snap.Ref.ID, err)
		}
		video.ID = snap.Ref.ID
		videos = append(videos, video)
	}
	return videos, nil
}

func (r *contentRepo) ListCompetitions(ctx context.Context, ownerUID string) ([]store.Competition, error) {
	var comps []store.Competition
	iter := r.collection(ownerUID, compsCollection).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list competitions for %q: %w", ownerUID, err)
		}

		var comp store.Competition
		if err := snap.DataTo(&comp); err != nil {
			return nil, fmt.Errorf("decode competition %q: %w", snap.Ref.ID, err)
		}
		comp.ID = snap.Ref.ID
		comps = append(comps, comp)
	}
	return comps, nil
}

func (r *contentRepo) ListPartners(ctx context.Context, ownerUID string) ([]store.Partner, error) {
	var partners []store.Partner
	iter := r.collection(ownerUID, partnersCollection).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list partners for %q: %w", ownerUID, err)
		}

		var partner store.Partner
		if err := snap.DataTo(&partner); err != nil {
			return nil, fmt.Errorf("decode partner %q: %w", snap.Ref.ID, err)
		}
		partner.ID = snap.Ref.ID
		partners = append(partners, partner)
	}
	return partners, nil
}
