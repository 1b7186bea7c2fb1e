package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/pkg/response"
)

// Follow makes the caller follow :id.
// @Summary Follow a user
// @Tags relations
// @Produce json
// @Param id path string true "user to follow"
// @Success 201 {object} response.Response{data=model.Follow}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /users/{id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	f, err := h.relService.Follow(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, f)
}

// Unfollow
// @Summary Unfollow a user
// @Tags relations
// @Produce json
// @Param id path string true "user to unfollow"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.relService.Unfollow(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowing
// @Summary List who a user follows
// @Tags relations
// @Produce json
// @Param id path string true "user id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Success 200 {object} response.Response
// @Router /users/{id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, err := h.relService.ListFollowing(c.Request.Context(), c.Param("id"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// ListFollowers
// @Summary List a user's followers
// @Tags relations
// @Produce json
// @Param id path string true "user id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Success 200 {object} response.Response
// @Router /users/{id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	page, err := h.relService.ListFollowers(c.Request.Context(), c.Param("id"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}
