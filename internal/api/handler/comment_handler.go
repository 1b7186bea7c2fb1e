package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/pkg/response"
)

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "post id"
// @Param request body commentRequest true "comment"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 404 {object} response.Response
// @Router /posts/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.commentService.AddRootComment(c.Request.Context(), actor(c), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cm)
}

// AddReply
// @Summary Reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "parent comment id"
// @Param request body commentRequest true "reply"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 404 {object} response.Response
// @Router /comments/{id}/replies [post]
func (h *Handler) AddReply(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.commentService.AddReply(c.Request.Context(), actor(c), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cm)
}

// RootComments
// @Summary List a post's top-level comments
// @Tags comments
// @Produce json
// @Param id path string true "post id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Param sort query string false "createdAt, likeCount or commentCount"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Response
// @Router /posts/{id}/comments [get]
func (h *Handler) RootComments(c *gin.Context) {
	page, err := h.commentService.RootComments(c.Request.Context(), actor(c), c.Param("id"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// GetComment
// @Summary Get a comment with its like and reply counts
// @Tags comments
// @Param id path string true "comment id"
// @Success 200 {object} response.Response{data=repository.CommentWithStats}
// @Router /comments/{id} [get]
func (h *Handler) GetComment(c *gin.Context) {
	cm, err := h.commentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cm)
}

// Replies
// @Summary List direct replies to a comment
// @Tags comments
// @Param id path string true "comment id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Success 200 {object} response.Response
// @Router /comments/{id}/replies [get]
func (h *Handler) Replies(c *gin.Context) {
	page, err := h.commentService.Children(c.Request.Context(), c.Param("id"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// ReplyCounts reports direct replies and the whole thread below the comment.
// @Summary Count replies to a comment
// @Tags comments
// @Param id path string true "comment id"
// @Success 200 {object} response.Response
// @Router /comments/{id}/replies/count [get]
func (h *Handler) ReplyCounts(c *gin.Context) {
	ctx := c.Request.Context()
	direct, err := h.commentService.ChildCount(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	total, err := h.commentService.SubtreeCount(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"direct": direct, "total": total})
}

// UpdateComment
// @Summary Edit a comment; author only
// @Tags comments
// @Accept json
// @Param id path string true "comment id"
// @Param request body commentRequest true "new content"
// @Success 200 {object} response.Response{data=model.Comment}
// @Router /comments/{id} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.commentService.Update(c.Request.Context(), actor(c), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cm)
}

// DeleteComment
// @Summary Delete a comment and its whole thread; author only
// @Tags comments
// @Param id path string true "comment id"
// @Success 200 {object} response.Response
// @Router /comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	removed, err := h.commentService.Delete(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}
