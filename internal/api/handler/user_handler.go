package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/pkg/response"
)

// CreateProfile creates the profile for the authenticated id.
// @Summary Create the caller's profile
// @Tags users
// @Accept json
// @Param request body service.ProfileInput true "profile"
// @Success 201 {object} response.Response{data=model.User}
// @Failure 409 {object} response.Response
// @Router /me [post]
func (h *Handler) CreateProfile(c *gin.Context) {
	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, u)
}

// UpdateProfile
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Param request body service.ProfileUpdate true "fields to change"
// @Success 200 {object} response.Response{data=model.User}
// @Router /me [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in service.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.UpdateProfile(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

// GetUser
// @Summary A user's profile with follow counts
// @Tags users
// @Param id path string true "user id"
// @Success 200 {object} response.Response{data=service.Profile}
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	p, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// SearchUsers
// @Summary Search users by username or bio
// @Tags search
// @Param q query string true "query"
// @Success 200 {object} response.Response
// @Router /search/users [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	page, err := h.userService.Search(c.Request.Context(), c.Query("q"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// SuggestedUsers
// @Summary Users the caller might follow
// @Tags users
// @Param take query int false "how many"
// @Success 200 {object} response.Response
// @Router /me/suggested [get]
func (h *Handler) SuggestedUsers(c *gin.Context) {
	take, _ := strconv.Atoi(c.Query("take"))
	users, err := h.userService.Suggested(c.Request.Context(), actor(c), take)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, users)
}
