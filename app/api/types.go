package api

import (
	"context"

	"github.com/dmcruz/news-digest/app/database"
	"github.com/dmcruz/news-digest/app/delivery"
	"github.com/dmcruz/news-digest/app/digest"
	"github.com/dmcruz/news-digest/app/news"
	"github.com/dmcruz/news-digest/app/scheduler"
)

type DigestRunnerInterface interface {
	RunForUser(ctx context.Context, user *database.User) digest.Outcome
	RunForAllUsers(ctx context.Context) digest.BatchSummary
}

var _ DigestRunnerInterface = (*digest.Runner)(nil)

type SchedulerInterface interface {
	Start(dailyTime string) error
	Stop()
	Status() scheduler.Status
	RunNow()
}

var _ SchedulerInterface = (*scheduler.Scheduler)(nil)

// HeadlinesSearcher is the optional capability of searchers backed by a
// provider with a top-headlines endpoint.
type HeadlinesSearcher interface {
	TopHeadlines(ctx context.Context, country, category string) ([]news.Article, error)
}

var _ HeadlinesSearcher = (*news.APISearcher)(nil)

type Handler struct {
	userRepo        database.UserRepository
	runner          DigestRunnerInterface
	scheduler       SchedulerInterface
	searcherFactory digest.SearcherFactory
	curator         *news.Curator
	whatsapp        delivery.Sender
	email           delivery.Sender
}

type StartSchedulerRequest struct {
	DailyTime string `json:"daily_time" binding:"required"`
}

type UserRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type HeadlinesRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Country  string `json:"country"`
	Category string `json:"category"`
}

type TestMessageRequest struct {
	RecipientAddress string `json:"recipient_address" binding:"required"`
	RecipientType    string `json:"recipient_type" binding:"required"`
	Message          string `json:"message"`
}

// ArticlePreview is the /test-news-search response item: a rendered
// summary plus the scoring detail behind it.
type ArticlePreview struct {
	Summary       string   `json:"summary"`
	Score         int      `json:"score"`
	MatchedTopics []string `json:"matched_topics"`
}
