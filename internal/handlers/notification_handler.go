package handlers

import (
	"context"
	"net/http"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/labstack/echo/v4"
)

// FeedBuilder is the slice of the notification service this handler needs.
type FeedBuilder interface {
	BuildFeed(ctx context.Context, viewerID uint, page, limit int) ([]models.NotificationView, error)
	UnreadCount(ctx context.Context, viewerID uint) (int64, error)
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	feedBuilder FeedBuilder
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(feedBuilder FeedBuilder) *NotificationHandler {
	return &NotificationHandler{feedBuilder: feedBuilder}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
}

// GetNotifications returns one projected page of the viewer's notification
// feed, newest first. Fetching the feed resets the unread counter.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	viewerID := getViewerIDFromContext(c)
	if viewerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, limit := getPagination(c)

	views, err := h.feedBuilder.BuildFeed(c.Request().Context(), viewerID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": views},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	viewerID := getViewerIDFromContext(c)
	if viewerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.feedBuilder.UnreadCount(c.Request().Context(), viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}
