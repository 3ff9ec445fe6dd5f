package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/repositories"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TweetHandler handles HTTP requests related to tweets
type TweetHandler struct {
	tweetRepository repositories.TweetRepository
	resolver        *services.Resolver
	entityService   *services.EntityService
	notifications   *services.NotificationService
}

// NewTweetHandler creates a new TweetHandler
func NewTweetHandler(
	tweetRepo repositories.TweetRepository,
	resolver *services.Resolver,
	entityService *services.EntityService,
	notifications *services.NotificationService,
) *TweetHandler {
	return &TweetHandler{
		tweetRepository: tweetRepo,
		resolver:        resolver,
		entityService:   entityService,
		notifications:   notifications,
	}
}

// RegisterTweetRoutes registers tweet-related routes
func (h *TweetHandler) RegisterTweetRoutes(g *echo.Group) {
	g.POST("/tweets", h.CreateTweet)
	g.GET("/tweets/:id", h.GetTweet)
	g.GET("/timeline", h.GetTimeline)
	g.DELETE("/tweets/:id", h.DeleteTweet)
}

// CreateTweet creates a new tweet, reply, repost or quote. This is the
// write boundary: a request carrying both reply_to_id and retweeted_id is
// rejected before it can reach the resolver.
func (h *TweetHandler) CreateTweet(c echo.Context) error {
	viewerID := getViewerIDFromContext(c)
	if viewerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateTweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ReplyToID != "" && req.RetweetedID != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "A tweet cannot be a reply and a repost at the same time")
	}
	if req.Text == "" && req.RetweetedID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Text is required")
	}

	ctx := c.Request().Context()

	tweet := &models.Tweet{
		AuthorID:       strconv.FormatUint(uint64(viewerID), 10),
		ReplyToID:      req.ReplyToID,
		QuoteTweetedID: req.QuoteTweetedID,
		Sensitive:      req.Sensitive,
	}
	if req.Text != "" {
		tweet.Text = &req.Text
	}

	// Reposting a repost means reposting the original.
	if req.RetweetedID != "" {
		target, err := h.tweetRepository.GetTweetByID(ctx, req.RetweetedID)
		if err != nil {
			if errors.Is(err, repositories.ErrTweetNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Retweeted tweet not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if target.IsDeleted() {
			return echo.NewHTTPError(http.StatusGone, "Retweeted tweet is no longer available")
		}
		tweet.RetweetedID = target.OriginalID()
	}

	if err := h.tweetRepository.CreateTweet(ctx, tweet); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Text != "" {
		if _, err := h.entityService.ExtractAndLink(ctx, req.Text, tweet.ID.Hex()); err != nil {
			zap.S().Warnw("entity extraction failed", "tweet_id", tweet.ID.Hex(), "error", err)
		}
	}

	h.bumpLinkedCounters(c, tweet, viewerID)

	return c.JSON(http.StatusCreated, tweet)
}

// bumpLinkedCounters adjusts the parent/original counters for a new reply,
// repost or quote and dispatches the matching notification event. Counter
// updates are atomic increments; failures are logged, never surfaced.
func (h *TweetHandler) bumpLinkedCounters(c echo.Context, tweet *models.Tweet, viewerID uint) {
	ctx := c.Request().Context()

	type bump struct {
		targetID  string
		field     string
		eventType string
	}
	var b *bump
	switch {
	case tweet.ReplyToID != "":
		b = &bump{tweet.ReplyToID, repositories.CounterReply, models.NotificationTypeReply}
	case tweet.RetweetedID != "":
		b = &bump{tweet.RetweetedID, repositories.CounterRetweet, models.NotificationTypeRetweet}
	}

	if b != nil {
		if err := h.tweetRepository.IncrementCounter(ctx, b.targetID, b.field, 1); err != nil {
			zap.S().Warnw("failed to bump counter", "tweet_id", b.targetID, "field", b.field, "error", err)
		}

		target, err := h.tweetRepository.GetTweetByID(ctx, b.targetID)
		if err == nil {
			recipient64, _ := strconv.ParseUint(target.AuthorID, 10, 32)
			if recipient := uint(recipient64); recipient != 0 && recipient != viewerID {
				event := &models.NotificationEvent{
					Type:        b.eventType,
					RecipientID: recipient,
					SenderID:    viewerID,
					ObjectID:    tweet.ID.Hex(),
				}
				if err := h.notifications.Dispatch(ctx, event); err != nil {
					zap.S().Warnw("failed to dispatch notification event", "type", b.eventType, "error", err)
				}
			}
		}
	}

	if tweet.QuoteTweetedID != "" {
		if err := h.tweetRepository.IncrementCounter(ctx, tweet.QuoteTweetedID, repositories.CounterQuote, 1); err != nil {
			zap.S().Warnw("failed to bump quote counter", "tweet_id", tweet.QuoteTweetedID, "error", err)
		}
	}
}

// GetTweet retrieves the fully resolved, viewer-relative view of a tweet
func (h *TweetHandler) GetTweet(c echo.Context) error {
	viewerID := getViewerIDFromContext(c)
	tweetID := c.Param("id")

	tweet, err := h.tweetRepository.GetTweetByID(c.Request().Context(), tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrTweetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Tweet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if tweet.IsDeleted() {
		return echo.NewHTTPError(http.StatusGone, "Tweet is no longer available")
	}

	resolved, err := h.resolver.Resolve(c.Request().Context(), tweet, viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": resolved})
}

// GetTimeline returns a resolved page of the public timeline
func (h *TweetHandler) GetTimeline(c echo.Context) error {
	viewerID := getViewerIDFromContext(c)
	page, limit := getPagination(c)

	skip := int64((page - 1) * limit)
	tweets, err := h.tweetRepository.GetTimeline(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resolved, err := h.resolver.ResolveMany(c.Request().Context(), tweets, viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"tweets": resolved},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
		},
	})
}

// DeleteTweet soft-deletes the viewer's own tweet
func (h *TweetHandler) DeleteTweet(c echo.Context) error {
	viewerID := getViewerIDFromContext(c)
	if viewerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	tweetID := c.Param("id")

	tweet, err := h.tweetRepository.GetTweetByID(c.Request().Context(), tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrTweetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Tweet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if tweet.AuthorID != strconv.FormatUint(uint64(viewerID), 10) {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot delete another user's tweet")
	}

	if err := h.tweetRepository.SoftDeleteTweet(c.Request().Context(), tweetID); err != nil {
		if errors.Is(err, repositories.ErrTweetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Tweet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
