package news

import (
	"strings"
	"testing"
)

func TestCurator_FilterAndRank_EmptyInput(t *testing.T) {
	curator := NewCurator()

	result := curator.FilterAndRank(nil, map[string]int{"tech": 1}, nil)
	if len(result) != 0 {
		t.Errorf("Expected empty output for empty input, got %d articles", len(result))
	}
}

func TestCurator_FilterAndRank_AvoidTopicDominates(t *testing.T) {
	curator := NewCurator()

	articles := []Article{
		{Title: "Football transfer rumors and technology", URL: "https://example.com/1"},
		{Title: "New technology breakthrough", URL: "https://example.com/2"},
	}

	result := curator.FilterAndRank(articles,
		map[string]int{"technology": 1},
		[]string{"football"})

	if len(result) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(result))
	}

	// The article matching both an avoid topic and an interest topic
	// must be discarded: avoid always wins.
	if result[0].URL != "https://example.com/2" {
		t.Errorf("Expected article 2 to survive, got %s", result[0].URL)
	}
}

func TestCurator_FilterAndRank_AvoidMatchesAllFields(t *testing.T) {
	curator := NewCurator()

	articles := []Article{
		{Title: "Clean title", Description: "mentions Crypto here", Content: "tech", URL: "https://example.com/1"},
		{Title: "Clean title", Description: "clean", Content: "tech and crypto", URL: "https://example.com/2"},
		{Title: "CRYPTO crash", Description: "clean", Content: "tech", URL: "https://example.com/3"},
	}

	result := curator.FilterAndRank(articles,
		map[string]int{"tech": 1},
		[]string{"crypto"})

	if len(result) != 0 {
		t.Errorf("Expected all articles discarded via avoid matching on any field, got %d", len(result))
	}
}

func TestCurator_FilterAndRank_ScoreFormula(t *testing.T) {
	curator := NewCurator()

	articles := []Article{
		{Title: "Economy and technology news", URL: "https://example.com/1"},
	}

	// Priority 1 topic scores 50, priority 3 topic scores 30
	result := curator.FilterAndRank(articles,
		map[string]int{"technology": 1, "economy": 3},
		nil)

	if len(result) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(result))
	}
	if result[0].Score != 80 {
		t.Errorf("Expected score 80 (50+30), got %d", result[0].Score)
	}
	if len(result[0].MatchedTopics) != 2 {
		t.Errorf("Expected 2 matched topics, got %v", result[0].MatchedTopics)
	}
}

func TestCurator_FilterAndRank_DropsZeroScore(t *testing.T) {
	curator := NewCurator()

	articles := []Article{
		{Title: "Gardening tips", URL: "https://example.com/1"},
		{Title: "Technology news", URL: "https://example.com/2"},
	}

	result := curator.FilterAndRank(articles, map[string]int{"technology": 5}, nil)

	if len(result) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(result))
	}
	if result[0].URL != "https://example.com/2" {
		t.Errorf("Expected only the matching article, got %s", result[0].URL)
	}
	if result[0].Score != 10 {
		t.Errorf("Expected score 10 for a priority-5 match, got %d", result[0].Score)
	}
}

func TestCurator_FilterAndRank_StableOrdering(t *testing.T) {
	curator := NewCurator()

	articles := []Article{
		{Title: "economy report A", URL: "https://example.com/a"},
		{Title: "technology scoop", URL: "https://example.com/b"},
		{Title: "economy report B", URL: "https://example.com/c"},
	}

	result := curator.FilterAndRank(articles,
		map[string]int{"technology": 1, "economy": 3},
		nil)

	if len(result) != 3 {
		t.Fatalf("Expected 3 articles, got %d", len(result))
	}

	// Scores must be non-increasing
	for i := 1; i < len(result); i++ {
		if result[i].Score > result[i-1].Score {
			t.Errorf("Scores not non-increasing at index %d: %d > %d", i, result[i].Score, result[i-1].Score)
		}
	}

	// Equal scores keep encountered order
	if result[0].URL != "https://example.com/b" {
		t.Errorf("Expected highest-scoring article first, got %s", result[0].URL)
	}
	if result[1].URL != "https://example.com/a" || result[2].URL != "https://example.com/c" {
		t.Errorf("Tie order not stable: got %s, %s", result[1].URL, result[2].URL)
	}
}

func TestCurator_FilterAndRank_NaiveSubstringMatching(t *testing.T) {
	curator := NewCurator()

	// "art" matches "party"; this is intentional behavior
	articles := []Article{
		{Title: "Big party downtown", URL: "https://example.com/1"},
	}

	result := curator.FilterAndRank(articles, map[string]int{"art": 2}, nil)

	if len(result) != 1 {
		t.Fatalf("Expected substring match to select the article, got %d results", len(result))
	}
	if result[0].Score != 40 {
		t.Errorf("Expected score 40, got %d", result[0].Score)
	}
}

func TestCurator_Summary_FullArticle(t *testing.T) {
	curator := NewCurator()

	article := Article{
		Title:       "Big News",
		Description: "Something happened",
		URL:         "https://example.com/news",
		SourceName:  "Example Times",
		PublishedAt: "2026-03-15T14:30:00Z",
	}

	summary := curator.Summary(article)

	for _, want := range []string{"📰 *Big News*", "📝 Something happened", "🔗 https://example.com/news", "📺 Source: Example Times"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary missing %q:\n%s", want, summary)
		}
	}
	if !strings.Contains(summary, "15/03/2026") {
		t.Errorf("Summary missing formatted date:\n%s", summary)
	}
}

func TestCurator_Summary_MissingFields(t *testing.T) {
	curator := NewCurator()

	summary := curator.Summary(Article{})

	if !strings.Contains(summary, "no title") {
		t.Errorf("Expected 'no title' placeholder:\n%s", summary)
	}
	if !strings.Contains(summary, "unknown source") {
		t.Errorf("Expected 'unknown source' placeholder:\n%s", summary)
	}
	if !strings.Contains(summary, "date unavailable") {
		t.Errorf("Expected 'date unavailable' placeholder:\n%s", summary)
	}

	// No description line when description is empty
	if strings.Contains(summary, "📝") {
		t.Errorf("Unexpected description line:\n%s", summary)
	}
}

func TestCurator_Summary_UnparseableDate(t *testing.T) {
	curator := NewCurator()

	summary := curator.Summary(Article{Title: "x", PublishedAt: "yesterday-ish"})

	if !strings.Contains(summary, "yesterday-ish") {
		t.Errorf("Expected raw timestamp fallback:\n%s", summary)
	}
}
