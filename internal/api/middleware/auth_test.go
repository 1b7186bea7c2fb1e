package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(secret, issuer string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", Auth(secret, issuer), func(c *gin.Context) {
		c.String(http.StatusOK, Actor(c))
	})
	return r
}

func call(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := authRouter("s3cret", "socialgraph")

	good, err := IssueToken("s3cret", "socialgraph", "user-1")
	require.NoError(t, err)
	w := call(r, good)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	wrongIssuer, err := IssueToken("s3cret", "elsewhere", "user-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, wrongIssuer).Code)

	wrongKey, err := IssueToken("other", "socialgraph", "user-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, wrongKey).Code)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "socialgraph"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, noSubject).Code)

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
}

func TestRateLimiter_PerActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter(0.001, 1)
	r := gin.New()
	r.POST("/w", func(c *gin.Context) { c.Set(ActorKey, c.Query("u")) }, l.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	post := func(u string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/w?u="+u, nil))
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, post("a"))
	assert.Equal(t, http.StatusTooManyRequests, post("a"))
	assert.Equal(t, http.StatusNoContent, post("b"))
}
