package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/pkg/response"
)

// CreatePost
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body service.PostInput true "post"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Router /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var in service.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postService.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, p)
}

// GetPost
// @Summary Get a post with its like and comment counts
// @Tags posts
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} response.Response{data=repository.PostWithStats}
// @Failure 404 {object} response.Response
// @Router /posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.postService.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// UpdatePost
// @Summary Update a post; author only
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "post id"
// @Param request body service.PostUpdate true "fields to change"
// @Success 200 {object} response.Response{data=repository.PostWithStats}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var in service.PostUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postService.Update(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// DeletePost
// @Summary Delete a post with its comments and likes; author only
// @Tags posts
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// PostCommentCount
// @Summary Count all comments on a post, replies included
// @Tags posts
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Router /posts/{id}/comments/count [get]
func (h *Handler) PostCommentCount(c *gin.Context) {
	n, err := h.postService.CommentCount(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}
