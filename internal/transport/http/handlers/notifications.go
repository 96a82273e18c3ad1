package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/transport/http/middleware"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// NotificationHandler exposes the notification inbox endpoints. All routes
// operate on the authenticated caller's own inbox.
type NotificationHandler struct {
	notifications *usecase.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *usecase.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes binds notification inbox routes.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.GET("/unread-count", h.unreadCount)
	r.PUT("/:id/read", h.markRead)
	r.PUT("/read-all", h.markAllRead)
	r.DELETE("/:id", h.remove)
}

var notificationErrorCases = []ErrorCase{
	{Err: usecase.ErrNotificationNotFound, Status: http.StatusNotFound, Message: "notification not found"},
	{Err: usecase.ErrNotRecipient, Status: http.StatusForbidden, Message: "notification belongs to another user"},
}

// List godoc
// @Summary List the caller's notifications
// @Tags Notifications
// @Produce json
// @Param unread_only query bool false "Only unread notifications"
// @Success 200 {array} NotificationView
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) list(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), user.ID, port.NotificationFilter{
		UnreadOnly: c.Query("unread_only") == "true",
		Limit:      queryInt(c, "limit"),
		Offset:     queryInt(c, "offset"),
	})
	if err != nil {
		RespondWithMappedError(c, err, notificationErrorCases, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	views := make([]NotificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, newNotificationView(&notifications[i]))
	}
	c.JSON(http.StatusOK, views)
}

// UnreadCount godoc
// @Summary Unread notification count
// @Description Served from the Redis counter cache with a database fallback.
// @Tags Notifications
// @Produce json
// @Success 200 {object} UnreadCountResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications/unread-count [get]
func (h *NotificationHandler) unreadCount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		RespondWithMappedError(c, err, notificationErrorCases, http.StatusInternalServerError, "failed to count notifications")
		return
	}

	c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/notifications/{id}/read [put]
func (h *NotificationHandler) markRead(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, notificationErrorCases, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Success 200 {object} MarkAllReadResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/notifications/read-all [put]
func (h *NotificationHandler) markAllRead(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	updated, err := h.notifications.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		RespondWithMappedError(c, err, notificationErrorCases, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// Delete godoc
// @Summary Delete a notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) remove(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, notificationErrorCases, http.StatusInternalServerError, "failed to delete notification")
		return
	}

	c.Status(http.StatusNoContent)
}
