package api

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/socialgraph/config"
	_ "github.com/d60-Lab/socialgraph/docs"
	"github.com/d60-Lab/socialgraph/internal/api/handler"
	"github.com/d60-Lab/socialgraph/internal/api/middleware"
	"github.com/d60-Lab/socialgraph/internal/model"
)

// NewRouter mounts every route under /api/v1 behind bearer auth.
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), gzip.Gzip(gzip.DefaultCompression))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	v1 := r.Group("/api/v1", middleware.Auth(cfg.JWT.Secret, cfg.JWT.Issuer), limiter.Middleware())

	me := v1.Group("/me")
	me.POST("", h.CreateProfile)
	me.PUT("", h.UpdateProfile)
	me.GET("/suggested", h.SuggestedUsers)
	me.GET("/notifications", h.ListNotifications)
	me.GET("/notifications/unread-count", h.UnreadCount)
	me.PUT("/notifications/read", h.MarkAllRead)

	users := v1.Group("/users/:id")
	users.GET("", h.GetUser)
	users.POST("/follow", h.Follow)
	users.DELETE("/follow", h.Unfollow)
	users.GET("/followers", h.ListFollowers)
	users.GET("/following", h.ListFollowing)
	users.GET("/posts", h.AuthorPosts)
	users.GET("/liked", h.LikedPosts)
	users.GET("/commented", h.CommentedPosts)

	v1.GET("/search/users", h.SearchUsers)
	v1.GET("/search/posts", h.SearchPosts)

	v1.GET("/feed", h.PersonalizedFeed)
	v1.GET("/feed/global", h.GlobalFeed)

	v1.POST("/posts", h.CreatePost)
	posts := v1.Group("/posts/:id")
	posts.GET("", h.GetPost)
	posts.PUT("", h.UpdatePost)
	posts.DELETE("", h.DeletePost)
	posts.GET("/comments", h.RootComments)
	posts.POST("/comments", h.AddComment)
	posts.GET("/comments/count", h.PostCommentCount)
	posts.POST("/like", h.Like(model.TargetPost))
	posts.DELETE("/like", h.Unlike(model.TargetPost))
	posts.GET("/likes", h.Likers(model.TargetPost))

	comments := v1.Group("/comments/:id")
	comments.GET("", h.GetComment)
	comments.PUT("", h.UpdateComment)
	comments.DELETE("", h.DeleteComment)
	comments.GET("/replies", h.Replies)
	comments.POST("/replies", h.AddReply)
	comments.GET("/replies/count", h.ReplyCounts)
	comments.POST("/like", h.Like(model.TargetComment))
	comments.DELETE("/like", h.Unlike(model.TargetComment))
	comments.GET("/likes", h.Likers(model.TargetComment))

	v1.PUT("/notifications/:id/read", h.MarkRead)

	return r
}
