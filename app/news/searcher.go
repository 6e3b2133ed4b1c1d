package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmcruz/news-digest/app/cfg"
)

// APISearcher queries a NewsAPI-style HTTP endpoint, one request per
// topic, and merges the results.
type APISearcher struct {
	apiKey       string
	baseURL      string
	language     string
	lookbackDays int
	pageSize     int
	userAgent    string
	httpClient   *http.Client
}

var _ Searcher = (*APISearcher)(nil)

func NewAPISearcher(apiKey string, httpClient *http.Client) *APISearcher {
	cfg := cfg.Get()

	return &APISearcher{
		apiKey:       apiKey,
		baseURL:      cfg.NewsAPIURL,
		language:     cfg.Language,
		lookbackDays: cfg.LookbackDays,
		pageSize:     cfg.PageSize,
		userAgent:    cfg.UserAgent,
		httpClient:   httpClient,
	}
}

type apiResponse struct {
	Status   string       `json:"status"`
	Articles []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

// Search fans out one query per topic, filters avoided sources from the
// merged results and deduplicates by URL, keeping the first occurrence.
// A failed topic query is logged and contributes zero articles.
func (s *APISearcher) Search(ctx context.Context, topics, preferredSources, avoidSources []string) ([]Article, error) {
	if s.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	fromDate := time.Now().AddDate(0, 0, -s.lookbackDays).Format("2006-01-02")

	var allArticles []Article
	for _, topic := range topics {
		articles, err := s.searchTopic(ctx, topic, fromDate, preferredSources)
		if err != nil {
			slog.Warn("Topic query failed", "topic", topic, "error", err)
			continue
		}

		for _, article := range articles {
			if fromAvoidedSource(article.SourceName, avoidSources) {
				continue
			}
			article.SearchTopic = topic
			allArticles = append(allArticles, article)
		}
	}

	return dedupeByURL(allArticles), nil
}

func (s *APISearcher) searchTopic(ctx context.Context, topic, fromDate string, preferredSources []string) ([]Article, error) {
	params := url.Values{}
	params.Set("q", topic)
	params.Set("from", fromDate)
	params.Set("language", s.language)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(s.pageSize))
	params.Set("apiKey", s.apiKey)
	if len(preferredSources) > 0 {
		params.Set("sources", strings.Join(preferredSources, ","))
	}

	return s.fetchArticles(ctx, s.baseURL+"/everything?"+params.Encode())
}

// TopHeadlines returns the provider's top headlines for a country,
// optionally narrowed to a category.
func (s *APISearcher) TopHeadlines(ctx context.Context, country, category string) ([]Article, error) {
	if s.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("country", country)
	params.Set("pageSize", strconv.Itoa(s.pageSize))
	params.Set("apiKey", s.apiKey)
	if category != "" {
		params.Set("category", category)
	}

	return s.fetchArticles(ctx, s.baseURL+"/top-headlines?"+params.Encode())
}

func (s *APISearcher) fetchArticles(ctx context.Context, requestURL string) ([]Article, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if parsed.Status != "ok" {
		return nil, fmt.Errorf("provider returned status '%s'", parsed.Status)
	}

	articles := make([]Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			SourceName:  a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}

	return articles, nil
}
