package handlers

import (
	"strconv"

	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/labstack/echo/v4"
)

// getViewerIDFromContext extracts the authenticated viewer's id from the
// JWT claims set by the auth middleware. Returns 0 for anonymous requests.
func getViewerIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// getPagination parses page and limit query parameters, defaulting to 1/10
// when absent or non-numeric. Limits above 50 are clamped, not reset.
func getPagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}
