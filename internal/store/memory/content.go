// internal/store/memory/content.go
package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matchdayhq/clubsite/internal/store"
)

type contentRepo struct {
	s *Store
}

func (r *contentRepo) ListNews(_ context.Context, ownerUID string, limit int) ([]store.NewsArticle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, nil
	}

	articles := make([]store.NewsArticle, 0, len(c.news))
	for _, article := range c.news {
		copied := *article
		copied.LikedBy = slices.Clone(article.LikedBy)
		articles = append(articles, copied)
	}
	slices.SortFunc(articles, func(a, b store.NewsArticle) int {
		if a.PublishedAt.After(b.PublishedAt) {
			return -1
		}
		if b.PublishedAt.After(a.PublishedAt) {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (r *contentRepo) GetNews(_ context.Context, ownerUID, articleID string) (*store.NewsArticle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, store.ErrNotFound
	}
	article, ok := c.news[articleID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *article
	copied.LikedBy = slices.Clone(article.LikedBy)
	return &copied, nil
}

func (r *contentRepo) CreateNews(_ context.Context, ownerUID string, article *store.NewsArticle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := r.s.ensureClub(ownerUID)
	if article.ID == "" {
		r.s.nextID++
		article.ID = "news-" + strconv.Itoa(r.s.nextID)
	}
	if _, exists := c.news[article.ID]; exists {
		return fmt.Errorf("news article %q already exists", article.ID)
	}
	copied := *article
	copied.LikedBy = slices.Clone(article.LikedBy)
	c.news[article.ID] = &copied
	return nil
}

func (r *contentRepo) ToggleNewsLike(_ context.Context, ownerUID, articleID, userUID string) (int64, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return 0, false, store.ErrNotFound
	}
	article, ok := c.news[articleID]
	if !ok {
		return 0, false, store.ErrNotFound
	}

	if idx := slices.Index(article.LikedBy, userUID); idx >= 0 {
		article.LikedBy = slices.Delete(article.LikedBy, idx, idx+1)
		article.LikeCount--
		return article.LikeCount, false, nil
	}

	article.LikedBy = append(article.LikedBy, userUID)
	article.LikeCount++
	return article.LikeCount, true, nil
}

func (r *contentRepo) ListVideos(_ context.Context, ownerUID string, limit int) ([]store.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, nil
	}

	videos := make([]store.Video, 0, len(c.videos))
	for _, video := range c.videos {
		videos = append(videos, *video)
	}
	slices.SortFunc(videos, func(a, b store.Video) int {
		if a.PublishedAt.After(b.PublishedAt) {
			return -1
		}
		if b.PublishedAt.After(a.PublishedAt) {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

func (r *contentRepo) ListCompetitions(_ context.Context, ownerUID string) ([]store.Competition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, nil
	}

	comps := make([]store.Competition, 0, len(c.comps))
	for _, comp := range c.comps {
		comps = append(comps, *comp)
	}
	slices.SortFunc(comps, func(a, b store.Competition) int {
		return strings.Compare(a.ID, b.ID)
	})
	return comps, nil
}

func (r *contentRepo) ListPartners(_ context.Context, ownerUID string) ([]store.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.club(ownerUID)
	if c == nil {
		return nil, nil
	}

	partners := make([]store.Partner, 0, len(c.partners))
	for _, partner := range c.partners {
		partners = append(partners, *partner)
	}
	slices.SortFunc(partners, func(a, b store.Partner) int {
		return strings.Compare(a.ID, b.ID)
	})
	return partners, nil
}

// SeedVideo, SeedCompetition and SeedPartner install content fixtures
// directly; only tests use them.
func (s *Store) SeedVideo(ownerUID string, video *store.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureClub(ownerUID)
	copied := *video
	c.videos[video.ID] = &copied
}

func (s *Store) SeedCompetition(ownerUID string, comp *store.Competition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureClub(ownerUID)
	copied := *comp
	c.comps[comp.ID] = &copied
}

func (s *Store) SeedPartner(ownerUID string, partner *store.Partner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureClub(ownerUID)
	copied := *partner
	c.partners[partner.ID] = &copied
}
