package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/socialgraph/pkg/response"
)

// ActorKey is the gin context key holding the authenticated user id.
const ActorKey = "actorID"

// Auth validates an HS256 bearer token and stores its subject as the actor id.
func Auth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)

	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}
		claims := &jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil }); err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		if claims.Subject == "" {
			response.Unauthorized(c, "token has no subject")
			return
		}
		c.Set(ActorKey, claims.Subject)
		c.Next()
	}
}

// Actor returns the id stored by Auth.
func Actor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

// IssueToken signs a token for userID. Used by tooling and tests.
func IssueToken(secret, issuer, userID string) (string, error) {
	claims := jwt.RegisteredClaims{Subject: userID, Issuer: issuer}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
