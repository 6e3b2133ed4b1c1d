package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmcruz/news-digest/app/database"
	"github.com/dmcruz/news-digest/app/news"
)

// maxSummaries bounds the digest message size per run.
const maxSummaries = 15

// Runner composes article search, curation and dispatch into the
// end-to-end digest pipeline, per user and across all eligible users.
type Runner struct {
	userRepo        database.UserRepository
	searcherFactory SearcherFactory
	curator         *news.Curator
	dispatcher      DispatcherInterface
}

var _ BatchRunner = (*Runner)(nil)

func NewRunner(userRepo database.UserRepository, searcherFactory SearcherFactory, dispatcher DispatcherInterface) *Runner {
	return &Runner{
		userRepo:        userRepo,
		searcherFactory: searcherFactory,
		curator:         news.NewCurator(),
		dispatcher:      dispatcher,
	}
}

// RunForUser executes the full pipeline for one user. Missing
// configuration (credential, topics, recipients) is reported as a
// failure outcome, not an error. An empty curated set is a success with
// zero messages sent.
func (r *Runner) RunForUser(ctx context.Context, user *database.User) Outcome {
	topics := user.InterestTopics()

	if user.NewsAPIKey == "" {
		return failureOutcome(news.ErrNoAPIKey)
	}
	if len(topics) == 0 {
		return failureOutcome(ErrNoTopics)
	}
	if len(user.Recipients) == 0 {
		return failureOutcome(ErrNoRecipients)
	}

	searcher := r.searcherFactory(user.NewsAPIKey)
	articles, err := searcher.Search(ctx, topics, user.PreferredSources(), user.AvoidSources())
	if err != nil {
		return failureOutcome(fmt.Errorf("article search failed: %w", err))
	}

	scored := r.curator.FilterAndRank(articles, user.TopicPriorities(), user.AvoidTopics())

	if len(scored) == 0 {
		return Outcome{
			Success:       true,
			Message:       "no relevant news found",
			ArticlesFound: len(articles),
		}
	}

	capped := scored
	if len(capped) > maxSummaries {
		capped = capped[:maxSummaries]
	}

	summaries := make([]string, 0, len(capped))
	for _, article := range capped {
		summaries = append(summaries, r.curator.Summary(article.Article))
	}

	result := r.dispatcher.SendDigest(ctx, user.Recipients, summaries)

	return Outcome{
		Success:          true,
		ArticlesFound:    len(articles),
		ArticlesFiltered: len(scored),
		ArticlesSent:     len(summaries),
		MessagesSent:     result.Success,
		MessagesFailed:   result.Failed,
	}
}

// RunForAllUsers runs the pipeline for every user holding a news search
// credential. One user's failure, expected or not, never aborts the
// batch.
func (r *Runner) RunForAllUsers(ctx context.Context) BatchSummary {
	started := time.Now()
	slog.Info("Starting daily digest run for all users")

	var summary BatchSummary

	users, err := r.userRepo.GetUsersWithNewsAPIKey()
	if err != nil {
		slog.Error("Failed to load users", "error", err)
		return summary
	}

	if len(users) == 0 {
		slog.Info("No users with a news search credential found")
		return summary
	}

	for i := range users {
		user := &users[i]
		outcome := r.runIsolated(ctx, user)
		summary.Processed++

		if outcome.Success {
			summary.Succeeded++
			slog.Info("Digest run succeeded", "user", user.Username,
				"found", outcome.ArticlesFound, "sent", outcome.MessagesSent, "failed", outcome.MessagesFailed)
		} else {
			summary.Failed++
			slog.Warn("Digest run failed", "user", user.Username, "error", outcome.Error)
		}
	}

	slog.Info("Daily digest run complete",
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", time.Since(started).String())

	return summary
}

// runIsolated shields the batch from a panicking user run.
func (r *Runner) runIsolated(ctx context.Context, user *database.User) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Digest run panicked", "user", user.Username, "panic", rec)
			outcome = failureOutcome(fmt.Errorf("unexpected failure: %v", rec))
		}
	}()

	return r.RunForUser(ctx, user)
}

func failureOutcome(err error) Outcome {
	return Outcome{Success: false, Error: err.Error()}
}
