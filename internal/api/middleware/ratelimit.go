package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/socialgraph/pkg/response"
)

const limiterIdle = 10 * time.Minute

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles mutating requests per actor. Reads pass through.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*actorLimiter
	rps      rate.Limit
	burst    int
	lastGC   time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*actorLimiter), rps: rate.Limit(rps), burst: burst, lastGC: time.Now()}
}

func (l *RateLimiter) get(actor string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.Sub(l.lastGC) > limiterIdle {
		for k, v := range l.limiters {
			if now.Sub(v.lastSeen) > limiterIdle {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}
	al, ok := l.limiters[actor]
	if !ok {
		al = &actorLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[actor] = al
	}
	al.lastSeen = now
	return al.limiter
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		key := Actor(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !l.get(key).Allow() {
			response.TooManyRequests(c, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
