package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmcruz/news-digest/app/cfg"
	"github.com/dmcruz/news-digest/app/database"
	"github.com/dmcruz/news-digest/app/delivery"
	"github.com/dmcruz/news-digest/app/digest"
	"github.com/dmcruz/news-digest/app/news"
	"github.com/dmcruz/news-digest/app/scheduler"
)

func NewHandler(userRepo database.UserRepository, runner DigestRunnerInterface,
	sched SchedulerInterface, searcherFactory digest.SearcherFactory,
	whatsapp delivery.Sender, email delivery.Sender) *Handler {
	return &Handler{
		userRepo:        userRepo,
		runner:          runner,
		scheduler:       sched,
		searcherFactory: searcherFactory,
		curator:         news.NewCurator(),
		whatsapp:        whatsapp,
		email:           email,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if userCount, err := h.userRepo.GetUserCount(); err == nil {
		health["users"] = userCount
	}

	health["scheduler_running"] = h.scheduler.Status().IsRunning

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"scheduler": h.scheduler.Status(),
	}

	if userCount, err := h.userRepo.GetUserCount(); err == nil {
		stats["users"] = userCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) StartScheduler(c *gin.Context) {
	var req StartSchedulerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing daily_time field"})
		return
	}

	if err := h.scheduler.Start(req.DailyTime); err != nil {
		if errors.Is(err, scheduler.ErrInvalidTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Failed to start scheduler", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start scheduler"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Scheduler started",
		"status":  h.scheduler.Status(),
	})
}

func (h *Handler) StopScheduler(c *gin.Context) {
	h.scheduler.Stop()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Scheduler stopped",
	})
}

func (h *Handler) GetSchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}

func (h *Handler) RunSchedulerNow(c *gin.Context) {
	h.scheduler.RunNow()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Digest run started in background",
	})
}

func (h *Handler) RunDailyDigest(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	outcome := h.runner.RunForUser(c.Request.Context(), user)
	if !outcome.Success {
		c.JSON(http.StatusBadRequest, outcome)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) TestNewsSearch(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	if user.NewsAPIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has no news search credential"})
		return
	}

	topics := user.InterestTopics()
	if len(topics) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has no interest topics configured"})
		return
	}

	searcher := h.searcherFactory(user.NewsAPIKey)
	articles, err := searcher.Search(c.Request.Context(), topics, user.PreferredSources(), user.AvoidSources())
	if err != nil {
		slog.Error("News search failed", "user", user.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "News search failed"})
		return
	}

	scored := h.curator.FilterAndRank(articles, user.TopicPriorities(), user.AvoidTopics())

	// Preview is capped lower than digest delivery
	previews := make([]ArticlePreview, 0, 10)
	for _, article := range scored {
		if len(previews) == 10 {
			break
		}
		previews = append(previews, ArticlePreview{
			Summary:       h.curator.Summary(article.Article),
			Score:         article.Score,
			MatchedTopics: article.MatchedTopics,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                    user.Username,
		"total_articles_found":    len(articles),
		"total_articles_filtered": len(scored),
		"articles":                previews,
	})
}

func (h *Handler) GetTopHeadlines(c *gin.Context) {
	var req HeadlinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id field"})
		return
	}

	user, ok := h.loadUserByID(c, req.UserID)
	if !ok {
		return
	}

	if user.NewsAPIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has no news search credential"})
		return
	}

	searcher, supported := h.searcherFactory(user.NewsAPIKey).(HeadlinesSearcher)
	if !supported {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Configured news provider does not support top headlines"})
		return
	}

	country := req.Country
	if country == "" {
		country = "us"
	}

	articles, err := searcher.TopHeadlines(c.Request.Context(), country, req.Category)
	if err != nil {
		slog.Error("Top headlines fetch failed", "user", user.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Top headlines fetch failed"})
		return
	}

	summaries := make([]string, 0, len(articles))
	for _, article := range articles {
		summaries = append(summaries, h.curator.Summary(article))
	}

	c.JSON(http.StatusOK, gin.H{
		"country":  country,
		"category": req.Category,
		"total":    len(articles),
		"articles": summaries,
	})
}

func (h *Handler) SendTestMessage(c *gin.Context) {
	var req TestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing recipient_address or recipient_type field"})
		return
	}

	message := req.Message
	if message == "" {
		message = "✅ Test message from your news digest agent"
	}

	var err error
	switch req.RecipientType {
	case database.RecipientWhatsApp:
		err = h.whatsapp.Send(c.Request.Context(), req.RecipientAddress, "", message)
	case database.RecipientEmail:
		err = h.email.Send(c.Request.Context(), req.RecipientAddress, "News Digest test message", message)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown recipient_type, use 'whatsapp' or 'email'"})
		return
	}

	if err != nil {
		slog.Error("Test message send failed", "type", req.RecipientType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Test message send failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Test message sent",
	})
}

func (h *Handler) loadUser(c *gin.Context) (*database.User, bool) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id field"})
		return nil, false
	}

	return h.loadUserByID(c, req.UserID)
}

func (h *Handler) loadUserByID(c *gin.Context, userID int64) (*database.User, bool) {
	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}

	return user, true
}
