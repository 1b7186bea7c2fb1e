package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialgraph/config"
	"github.com/d60-Lab/socialgraph/internal/api/handler"
	"github.com/d60-Lab/socialgraph/internal/api/middleware"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/internal/testutil"
)

const testSecret = "test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newTestRouter(t *testing.T, rateLimit float64, burst int) *apiClient {
	t.Helper()
	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	dispatcher := service.NewDispatcher(notificationRepo, service.DispatcherOptions{})
	stop := dispatcher.Start(1)
	t.Cleanup(func() { _ = stop(context.Background()) })

	rel := service.NewRelationshipService(followRepo, userRepo, nil, dispatcher)
	h := handler.NewHandler(handler.Services{
		Relationships: rel,
		Likes:         service.NewLikeService(likeRepo, postRepo, commentRepo, dispatcher),
		Comments:      service.NewCommentService(commentRepo, postRepo, dispatcher),
		Posts:         service.NewPostService(postRepo, commentRepo),
		Feeds:         service.NewFeedService(postRepo, rel),
		Users:         service.NewUserService(userRepo, followRepo),
		Notifications: service.NewNotificationService(notificationRepo),
	})

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.RateLimit = rateLimit
	cfg.Server.RateBurst = burst
	cfg.JWT.Secret = testSecret
	return &apiClient{t: t, router: NewRouter(cfg, h)}
}

func (c *apiClient) do(method, path, userID string, body any) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := middleware.IssueToken(testSecret, "", userID)
		require.NoError(c.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestRouter_HealthAndAuth(t *testing.T) {
	c := newTestRouter(t, 100, 100)

	w, _ := c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := c.do(http.MethodGet, "/api/v1/feed/global", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, env.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/global", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_InteractionFlow(t *testing.T) {
	c := newTestRouter(t, 100, 100)

	w, _ := c.do(http.MethodPost, "/api/v1/me", "alice-id", map[string]any{"username": "alice"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/me", "bob-id", map[string]any{"username": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/me", "carol-id", map[string]any{"username": "alice"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := c.do(http.MethodPost, "/api/v1/posts", "alice-id", map[string]any{"title": "hello", "published": true})
	require.Equal(t, http.StatusCreated, w.Code)
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &post))

	w, _ = c.do(http.MethodPost, "/api/v1/users/alice-id/follow", "bob-id", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/users/alice-id/follow", "bob-id", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/users/bob-id/follow", "bob-id", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/users/nobody/follow", "bob-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = c.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", "bob-id", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, env = c.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", "bob-id", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var like service.LikeResult
	require.NoError(t, json.Unmarshal(env.Data, &like))
	assert.Equal(t, service.LikeAlreadyExists, like.Outcome)

	w, _ = c.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", "bob-id", map[string]any{"content": "nice"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = c.do(http.MethodGet, "/api/v1/feed?sort=likeCount", "bob-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Items []struct {
			ID           string `json:"id"`
			LikeCount    int64  `json:"likeCount"`
			CommentCount int64  `json:"commentCount"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed.Items, 1)
	assert.Equal(t, post.ID, feed.Items[0].ID)
	assert.EqualValues(t, 1, feed.Items[0].LikeCount)
	assert.EqualValues(t, 1, feed.Items[0].CommentCount)

	w, _ = c.do(http.MethodDelete, "/api/v1/posts/"+post.ID, "bob-id", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = c.do(http.MethodGet, "/api/v1/users/alice-id/posts?published=false", "bob-id", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = c.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/like", "bob-id", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/like", "bob-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RateLimitsWrites(t *testing.T) {
	c := newTestRouter(t, 0.001, 1)

	w, _ := c.do(http.MethodPost, "/api/v1/me", "alice-id", map[string]any{"username": "alice"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = c.do(http.MethodPut, "/api/v1/me", "alice-id", map[string]any{"bio": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// reads are not throttled
	w, _ = c.do(http.MethodGet, "/api/v1/users/alice-id", "alice-id", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
