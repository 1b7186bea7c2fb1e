package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialgraph/internal/api/middleware"
	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/pkg/response"
)

// Services groups what the handlers depend on.
type Services struct {
	Relationships service.RelationshipService
	Likes         service.LikeService
	Comments      service.CommentService
	Posts         service.PostService
	Feeds         service.FeedService
	Users         service.UserService
	Notifications service.NotificationService
}

type Handler struct {
	relService          service.RelationshipService
	likeService         service.LikeService
	commentService      service.CommentService
	postService         service.PostService
	feedService         service.FeedService
	userService         service.UserService
	notificationService service.NotificationService
}

func NewHandler(s Services) *Handler {
	return &Handler{
		relService:          s.Relationships,
		likeService:         s.Likes,
		commentService:      s.Comments,
		postService:         s.Posts,
		feedService:         s.Feeds,
		userService:         s.Users,
		notificationService: s.Notifications,
	}
}

func pageQuery(c *gin.Context) service.PageQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return service.PageQuery{
		Page:     page,
		PageSize: pageSize,
		Sort:     service.SortField(c.Query("sort")),
		Order:    service.SortOrder(c.Query("order")),
	}
}

func actor(c *gin.Context) string { return middleware.Actor(c) }

// fail maps a service error kind to its HTTP status.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNotAuthor), errors.Is(err, service.ErrDraftsPrivate):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidOperation):
		response.UnprocessableEntity(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
