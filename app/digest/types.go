package digest

import (
	"context"
	"errors"

	"github.com/dmcruz/news-digest/app/database"
	"github.com/dmcruz/news-digest/app/delivery"
	"github.com/dmcruz/news-digest/app/news"
)

// Configuration errors are user-correctable and surfaced as failure
// outcomes, never as system errors.
var (
	ErrNoTopics     = errors.New("no interest topics configured")
	ErrNoRecipients = errors.New("no recipients configured")
)

// Outcome is the per-user result of one digest run. It is ephemeral,
// used for logging and reporting only.
type Outcome struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
	ArticlesFound    int    `json:"total_articles_found"`
	ArticlesFiltered int    `json:"total_articles_filtered"`
	ArticlesSent     int    `json:"total_articles_sent"`
	MessagesSent     int    `json:"messages_sent"`
	MessagesFailed   int    `json:"messages_failed"`
}

// BatchSummary accumulates results across one all-users run.
type BatchSummary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SearcherFactory builds an article searcher bound to one user's
// credential.
type SearcherFactory func(apiKey string) news.Searcher

// DispatcherInterface is the digest fan-out capability consumed by the
// orchestrator.
type DispatcherInterface interface {
	SendDigest(ctx context.Context, recipients []database.Recipient, summaries []string) delivery.Result
}

var _ DispatcherInterface = (*delivery.Dispatcher)(nil)

// BatchRunner is the capability the scheduler triggers.
type BatchRunner interface {
	RunForAllUsers(ctx context.Context) BatchSummary
}
