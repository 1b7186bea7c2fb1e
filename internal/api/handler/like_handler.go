package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/pkg/response"
)

// Like returns a handler liking the :id target of kind. A repeated like answers
// 200 with outcome already_exists instead of 201.
// @Summary Like a post or comment
// @Tags likes
// @Param id path string true "target id"
// @Success 201 {object} response.Response{data=service.LikeResult}
// @Success 200 {object} response.Response{data=service.LikeResult}
// @Failure 404 {object} response.Response
// @Router /posts/{id}/like [post]
// @Router /comments/{id}/like [post]
func (h *Handler) Like(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := h.likeService.Like(c.Request.Context(), actor(c), kind, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		if res.Outcome == service.LikeCreated {
			response.Created(c, res)
			return
		}
		response.Success(c, res)
	}
}

// Unlike
// @Summary Remove a like
// @Tags likes
// @Param id path string true "target id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id}/like [delete]
// @Router /comments/{id}/like [delete]
func (h *Handler) Unlike(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.likeService.Unlike(c.Request.Context(), actor(c), kind, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		response.Success(c, nil)
	}
}

// Likers lists who liked the target, with the total count and whether the caller
// is among them.
// @Summary List likers of a post or comment
// @Tags likes
// @Param id path string true "target id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Success 200 {object} response.Response
// @Router /posts/{id}/likes [get]
// @Router /comments/{id}/likes [get]
func (h *Handler) Likers(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		page, err := h.likeService.Likers(ctx, kind, id, pageQuery(c))
		if err != nil {
			fail(c, err)
			return
		}
		total, err := h.likeService.CountLikes(ctx, kind, id)
		if err != nil {
			fail(c, err)
			return
		}
		liked, err := h.likeService.HasLiked(ctx, actor(c), kind, id)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, gin.H{"likers": page, "count": total, "liked": liked})
	}
}
