package news

import (
	"fmt"
	"sort"
	"time"
)

// Curator scores and filters fetched articles against a user's topic
// priorities and renders article summaries.
type Curator struct{}

func NewCurator() *Curator {
	return &Curator{}
}

// FilterAndRank discards articles touching any avoid topic, scores the
// rest against the interest topics and returns them ordered by
// descending score. Ties keep their encountered order.
//
// Matching is naive case-insensitive substring matching ("art" matches
// "party"); changing it would silently change which articles get
// selected.
func (c *Curator) FilterAndRank(articles []Article, topicPriorities map[string]int, avoidTopics []string) []ScoredArticle {
	if len(articles) == 0 {
		return nil
	}

	// Deterministic topic order for the matched-topics list
	topics := make([]string, 0, len(topicPriorities))
	for topic := range topicPriorities {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	scored := make([]ScoredArticle, 0, len(articles))
	for _, article := range articles {
		// Avoid topics dominate: an article matching both an avoid
		// topic and an interest topic is discarded.
		if c.matchesAny(article, avoidTopics) {
			continue
		}

		score := 0
		var matched []string
		for _, topic := range topics {
			if c.matches(article, topic) {
				// Priority 1 is the most important and scores highest
				score += (6 - topicPriorities[topic]) * 10
				matched = append(matched, topic)
			}
		}

		if score == 0 {
			continue
		}

		scored = append(scored, ScoredArticle{
			Article:       article,
			Score:         score,
			MatchedTopics: matched,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

func (c *Curator) matches(article Article, topic string) bool {
	return containsFold(article.Title, topic) ||
		containsFold(article.Description, topic) ||
		containsFold(article.Content, topic)
}

func (c *Curator) matchesAny(article Article, topics []string) bool {
	for _, topic := range topics {
		if c.matches(article, topic) {
			return true
		}
	}
	return false
}

// Summary renders one article as digest text. Missing fields degrade to
// placeholder text instead of failing.
func (c *Curator) Summary(article Article) string {
	title := article.Title
	if title == "" {
		title = "no title"
	}

	source := article.SourceName
	if source == "" {
		source = "unknown source"
	}

	summary := fmt.Sprintf("📰 *%s*\n\n", title)
	if article.Description != "" {
		summary += fmt.Sprintf("📝 %s\n\n", article.Description)
	}
	summary += fmt.Sprintf("🔗 %s\n", article.URL)
	summary += fmt.Sprintf("📅 %s\n", c.formatDate(article.PublishedAt))
	summary += fmt.Sprintf("📺 Source: %s", source)

	return summary
}

// formatDate parses the provider timestamp; on failure the raw string is
// used verbatim.
func (c *Curator) formatDate(publishedAt string) string {
	if publishedAt == "" {
		return "date unavailable"
	}

	parsed, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return publishedAt
	}

	return parsed.In(time.Local).Format("02/01/2006 at 15:04")
}
