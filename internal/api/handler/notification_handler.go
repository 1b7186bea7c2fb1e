package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/pkg/response"
)

// ListNotifications
// @Summary The caller's notifications, newest first
// @Tags notifications
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Success 200 {object} response.Response
// @Router /me/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	page, err := h.notificationService.List(c.Request.Context(), actor(c), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// UnreadCount
// @Summary Number of unread notifications
// @Tags notifications
// @Success 200 {object} response.Response
// @Router /me/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.notificationService.UnreadCount(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

// MarkRead
// @Summary Mark one notification read
// @Tags notifications
// @Param id path string true "notification id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [put]
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead
// @Summary Mark every notification read
// @Tags notifications
// @Success 200 {object} response.Response
// @Router /me/notifications/read [put]
func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}
