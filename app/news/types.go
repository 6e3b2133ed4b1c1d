package news

import (
	"context"
	"errors"
	"strings"
)

// ErrNoAPIKey indicates a user-correctable configuration problem: the
// search cannot run without a credential.
var ErrNoAPIKey = errors.New("news API key is required")

// Article is an ephemeral value fetched from a search provider. It is
// never persisted; it lives only for the duration of one digest run.
type Article struct {
	Title       string
	Description string
	Content     string
	URL         string
	SourceName  string
	PublishedAt string // provider timestamp, kept raw for fallback rendering
	SearchTopic string // the topic query that produced this article
}

// ScoredArticle is an Article annotated by one curation pass.
type ScoredArticle struct {
	Article
	Score         int
	MatchedTopics []string
}

// Searcher queries an external provider for articles matching the given
// topics. Preferred sources narrow the query, avoided sources are
// filtered from the results. Per-topic failures degrade to zero articles
// for that topic and never abort the whole search.
type Searcher interface {
	Search(ctx context.Context, topics, preferredSources, avoidSources []string) ([]Article, error)
}

// containsFold reports whether value contains pattern, case-insensitively.
func containsFold(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

// fromAvoidedSource reports whether the article's source name contains
// any of the avoided source names.
func fromAvoidedSource(sourceName string, avoidSources []string) bool {
	for _, avoid := range avoidSources {
		if containsFold(sourceName, avoid) {
			return true
		}
	}
	return false
}

// dedupeByURL removes articles sharing a canonical URL, keeping the
// first occurrence. Articles without a URL are dropped.
func dedupeByURL(articles []Article) []Article {
	seen := make(map[string]bool, len(articles))
	unique := make([]Article, 0, len(articles))
	for _, article := range articles {
		if article.URL == "" || seen[article.URL] {
			continue
		}
		seen[article.URL] = true
		unique = append(unique, article)
	}
	return unique
}
