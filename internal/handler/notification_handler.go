package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/repository"
)

// NotificationHandler serves the read side of the notification feed.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// ListRecent returns the newest notifications, newest first. The optional
// ?limit= query parameter is clamped to a sane range.
func (h *NotificationHandler) ListRecent(c echo.Context) error {
	limit := defaultFeedLimit
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	items, err := h.Notifications.ListRecent(ctx, limit)
	if err != nil {
		return fail(c, err)
	}
	if items == nil {
		items = []repository.Notification{}
	}
	return ok(c, echo.Map{"payload": echo.Map{"notifications": items}})
}
