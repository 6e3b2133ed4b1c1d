package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmcruz/news-digest/app/cfg"
)

func testCfg(apiURL string) *cfg.Cfg {
	return &cfg.Cfg{
		NewsAPIURL:   apiURL,
		Language:     "en",
		LookbackDays: 1,
		PageSize:     20,
		UserAgent:    "News Digest Test",
	}
}

func newsServer(t *testing.T, articlesByTopic map[string][]apiArticle, failTopics map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		topic := r.URL.Query().Get("q")

		if failTopics[topic] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		resp := apiResponse{Status: "ok", Articles: articlesByTopic[topic]}
		json.NewEncoder(w).Encode(resp)
	}))
}

func namedArticle(title, url, source string) apiArticle {
	var a apiArticle
	a.Title = title
	a.URL = url
	a.Source.Name = source
	return a
}

func TestAPISearcher_Search_NoAPIKey(t *testing.T) {
	cfg.Set(testCfg("http://unused"))

	searcher := NewAPISearcher("", http.DefaultClient)

	_, err := searcher.Search(context.Background(), []string{"tech"}, nil, nil)
	if err != ErrNoAPIKey {
		t.Errorf("Expected ErrNoAPIKey, got %v", err)
	}
}

func TestAPISearcher_Search_FanOutAndTagging(t *testing.T) {
	server := newsServer(t, map[string][]apiArticle{
		"tech":    {namedArticle("Tech story", "https://example.com/t1", "TechDaily")},
		"economy": {namedArticle("Economy story", "https://example.com/e1", "BizNews")},
	}, nil)
	defer server.Close()

	cfg.Set(testCfg(server.URL))
	searcher := NewAPISearcher("test-key", server.Client())

	articles, err := searcher.Search(context.Background(), []string{"tech", "economy"}, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}

	// Each article is tagged with the topic that produced it
	if articles[0].SearchTopic != "tech" {
		t.Errorf("Expected search topic 'tech', got '%s'", articles[0].SearchTopic)
	}
	if articles[1].SearchTopic != "economy" {
		t.Errorf("Expected search topic 'economy', got '%s'", articles[1].SearchTopic)
	}
}

func TestAPISearcher_Search_DeduplicatesByURL(t *testing.T) {
	shared := "https://example.com/shared"
	server := newsServer(t, map[string][]apiArticle{
		"tech":    {namedArticle("First occurrence", shared, "TechDaily")},
		"economy": {namedArticle("Second occurrence", shared, "BizNews")},
	}, nil)
	defer server.Close()

	cfg.Set(testCfg(server.URL))
	searcher := NewAPISearcher("test-key", server.Client())

	articles, err := searcher.Search(context.Background(), []string{"tech", "economy"}, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article after dedup, got %d", len(articles))
	}
	if articles[0].Title != "First occurrence" {
		t.Errorf("Expected first occurrence kept, got '%s'", articles[0].Title)
	}
}

func TestAPISearcher_Search_FiltersAvoidedSources(t *testing.T) {
	server := newsServer(t, map[string][]apiArticle{
		"tech": {
			namedArticle("Good story", "https://example.com/1", "TechDaily"),
			namedArticle("Tabloid story", "https://example.com/2", "The Daily Tabloid"),
		},
	}, nil)
	defer server.Close()

	cfg.Set(testCfg(server.URL))
	searcher := NewAPISearcher("test-key", server.Client())

	articles, err := searcher.Search(context.Background(), []string{"tech"}, nil, []string{"tabloid"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article after avoid filter, got %d", len(articles))
	}
	if articles[0].SourceName != "TechDaily" {
		t.Errorf("Expected TechDaily article, got '%s'", articles[0].SourceName)
	}
}

func TestAPISearcher_Search_TopicFailureIsNotFatal(t *testing.T) {
	server := newsServer(t, map[string][]apiArticle{
		"tech": {namedArticle("Tech story", "https://example.com/1", "TechDaily")},
	}, map[string]bool{"broken": true})
	defer server.Close()

	cfg.Set(testCfg(server.URL))
	searcher := NewAPISearcher("test-key", server.Client())

	articles, err := searcher.Search(context.Background(), []string{"broken", "tech"}, nil, nil)
	if err != nil {
		t.Fatalf("Per-topic failure should not abort the search, got: %v", err)
	}

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article from the healthy topic, got %d", len(articles))
	}
}

func TestAPISearcher_Search_PreferredSourcesNarrowQuery(t *testing.T) {
	var gotSources string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSources = r.URL.Query().Get("sources")
		json.NewEncoder(w).Encode(apiResponse{Status: "ok"})
	}))
	defer server.Close()

	cfg.Set(testCfg(server.URL))
	searcher := NewAPISearcher("test-key", server.Client())

	_, err := searcher.Search(context.Background(), []string{"tech"}, []string{"the-verge", "wired"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotSources != "the-verge,wired" {
		t.Errorf("Expected sources 'the-verge,wired', got '%s'", gotSources)
	}
}

func TestAPISearcher_TopHeadlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("country") != "br" {
			t.Errorf("Expected country 'br', got '%s'", r.URL.Query().Get("country"))
		}
		json.NewEncoder(w).Encode(apiResponse{Status: "ok", Articles: []apiArticle{
			namedArticle("Headline", "https://example.com/h1", "BigPaper"),
		}})
	}))
	defer server.Close()

	cfg.Set(testCfg(server.URL))
	searcher := NewAPISearcher("test-key", server.Client())

	articles, err := searcher.TopHeadlines(context.Background(), "br", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Headline" {
		t.Errorf("Unexpected headlines result: %+v", articles)
	}
}

func TestAPISearcher_Search_ProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{Status: "error"})
	}))
	defer server.Close()

	cfg.Set(testCfg(server.URL))
	searcher := NewAPISearcher("test-key", server.Client())

	// A non-ok status is a per-topic failure: swallowed, zero articles
	articles, err := searcher.Search(context.Background(), []string{"tech"}, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("Expected no articles, got %d", len(articles))
	}
}
