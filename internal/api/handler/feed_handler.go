package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/pkg/response"
)

// GlobalFeed
// @Summary All published posts
// @Tags feeds
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Param sort query string false "createdAt, likeCount or commentCount"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Response
// @Router /feed/global [get]
func (h *Handler) GlobalFeed(c *gin.Context) {
	page, err := h.feedService.GlobalFeed(c.Request.Context(), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// PersonalizedFeed
// @Summary Published posts by users the caller follows
// @Tags feeds
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Param sort query string false "createdAt, likeCount or commentCount"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Response
// @Router /feed [get]
func (h *Handler) PersonalizedFeed(c *gin.Context) {
	page, err := h.feedService.PersonalizedFeed(c.Request.Context(), actor(c), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// AuthorPosts
// @Summary Posts by a user; published=false lists the caller's own drafts
// @Tags feeds
// @Param id path string true "author id"
// @Param published query bool false "published" default(true)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/posts [get]
func (h *Handler) AuthorPosts(c *gin.Context) {
	published, err := strconv.ParseBool(c.DefaultQuery("published", "true"))
	if err != nil {
		response.BadRequest(c, "published must be a boolean")
		return
	}
	page, err := h.feedService.AuthorPosts(c.Request.Context(), actor(c), c.Param("id"), published, pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// LikedPosts
// @Summary Published posts a user liked
// @Tags feeds
// @Param id path string true "user id"
// @Success 200 {object} response.Response
// @Router /users/{id}/liked [get]
func (h *Handler) LikedPosts(c *gin.Context) {
	page, err := h.feedService.LikedPosts(c.Request.Context(), c.Param("id"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// CommentedPosts
// @Summary Published posts a user commented on
// @Tags feeds
// @Param id path string true "user id"
// @Success 200 {object} response.Response
// @Router /users/{id}/commented [get]
func (h *Handler) CommentedPosts(c *gin.Context) {
	page, err := h.feedService.CommentedPosts(c.Request.Context(), c.Param("id"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// SearchPosts
// @Summary Search published posts by title or text
// @Tags search
// @Param q query string true "query"
// @Success 200 {object} response.Response
// @Router /search/posts [get]
func (h *Handler) SearchPosts(c *gin.Context) {
	page, err := h.feedService.Search(c.Request.Context(), c.Query("q"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}
