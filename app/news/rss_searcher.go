package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dmcruz/news-digest/app/cfg"
)

const maxExtractedContentLength = 2000

// RSSSearcher queries a keyword RSS search feed (Google News style), one
// request per topic. It implements the same contract as APISearcher and
// is selected with --news-provider=rss.
type RSSSearcher struct {
	baseURL        string
	language       string
	lookbackDays   int
	pageSize       int
	userAgent      string
	extractContent bool
	httpClient     *http.Client
	parser         *gofeed.Parser
	extractor      *ContentExtractor
}

var _ Searcher = (*RSSSearcher)(nil)

func NewRSSSearcher(httpClient *http.Client) *RSSSearcher {
	cfg := cfg.Get()

	return &RSSSearcher{
		baseURL:        cfg.RSSSearchURL,
		language:       cfg.Language,
		lookbackDays:   cfg.LookbackDays,
		pageSize:       cfg.PageSize,
		userAgent:      cfg.UserAgent,
		extractContent: cfg.ExtractContent,
		httpClient:     httpClient,
		parser:         gofeed.NewParser(),
		extractor:      NewContentExtractor(),
	}
}

// Search fetches the keyword feed for each topic, drops items older than
// the lookback window or from avoided sources, and deduplicates by link.
// The feed has no credential, so preferred sources cannot narrow the
// query; they are ignored here.
func (s *RSSSearcher) Search(ctx context.Context, topics, preferredSources, avoidSources []string) ([]Article, error) {
	cutoff := time.Now().AddDate(0, 0, -s.lookbackDays)

	var allArticles []Article
	for _, topic := range topics {
		articles, err := s.searchTopic(ctx, topic, cutoff)
		if err != nil {
			slog.Warn("Topic feed query failed", "topic", topic, "error", err)
			continue
		}

		for _, article := range articles {
			if fromAvoidedSource(article.SourceName, avoidSources) {
				continue
			}
			allArticles = append(allArticles, article)
		}
	}

	articles := dedupeByURL(allArticles)

	if s.extractContent {
		for i := range articles {
			s.enrich(ctx, &articles[i])
		}
	}

	return articles, nil
}

func (s *RSSSearcher) searchTopic(ctx context.Context, topic string, cutoff time.Time) ([]Article, error) {
	params := url.Values{}
	params.Set("q", topic)
	params.Set("hl", s.language)

	data, err := s.fetch(ctx, s.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(articles) >= s.pageSize {
			break
		}
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}

		articles = append(articles, Article{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.Link,
			SourceName:  itemSourceName(item, feed),
			PublishedAt: item.Published,
			SearchTopic: topic,
		})
	}

	return articles, nil
}

// enrich fills the article's body excerpt with readable page content so
// curation has text to match on. Failures leave the article untouched.
func (s *RSSSearcher) enrich(ctx context.Context, article *Article) {
	if article.Content != "" || article.URL == "" {
		return
	}

	data, err := s.fetch(ctx, article.URL)
	if err != nil {
		slog.Debug("Content fetch failed", "url", article.URL, "error", err)
		return
	}

	content, err := s.extractor.Run(data)
	if err != nil {
		slog.Debug("Content extraction failed", "url", article.URL, "error", err)
		return
	}

	if len(content) > maxExtractedContentLength {
		content = content[:maxExtractedContentLength]
	}
	article.Content = content
}

func (s *RSSSearcher) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// itemSourceName resolves a publication name for a feed item. Keyword
// feeds aggregate many publications, so the item link's host is a better
// identity than the feed title when nothing else is available.
func itemSourceName(item *gofeed.Item, feed *gofeed.Feed) string {
	if name, ok := item.Custom["source"]; ok && name != "" {
		return name
	}
	if u, err := url.Parse(item.Link); err == nil && u.Host != "" {
		return u.Host
	}
	return feed.Title
}
