// internal/content/hero.go

// Package content assembles the data behind a club's public pages.
package content

import (
	"sort"

	"github.com/matchdayhq/clubsite/internal/store"
)

const (
	defaultHeroLimit = 3
	minHeroLimit     = 1
	maxHeroLimit     = 5
	latestNewsLimit  = 5
)

// ClampHeroLimit normalizes a configured hero carousel size.
func ClampHeroLimit(n int) int {
	if n == 0 {
		return defaultHeroLimit
	}
	if n < minHeroLimit {
		return minHeroLimit
	}
	if n > maxHeroLimit {
		return maxHeroLimit
	}
	return n
}

// SelectHero picks the hero carousel from articles already ordered by
// publish time descending: a stable sort moves featured articles to the
// front while preserving recency order within each group, then the top n
// are taken.
func SelectHero(articles []store.NewsArticle, n int) []store.NewsArticle {
	if n <= 0 || len(articles) == 0 {
		return nil
	}

	sorted := make([]store.NewsArticle, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Featured && !sorted[j].Featured
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// LatestNews takes the most recent articles by strict recency, ignoring
// the featured flag. Input is expected ordered by publish time
// descending.
func LatestNews(articles []store.NewsArticle) []store.NewsArticle {
	if len(articles) == 0 {
		return nil
	}
	out := make([]store.NewsArticle, len(articles))
	copy(out, articles)
	if len(out) > latestNewsLimit {
		out = out[:latestNewsLimit]
	}
	return out
}
