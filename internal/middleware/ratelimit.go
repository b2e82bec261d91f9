package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// IPRateLimiter keeps one token bucket per client IP. The set of tracked
// IPs is an LRU so idle clients are eventually forgotten.
type IPRateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	r        rate.Limit
	b        int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	cache, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	return &IPRateLimiter{limiters: cache, r: r, b: b}
}

func (i *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	if l, ok := i.limiters.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(i.r, i.b)
	// A concurrent first request may have stored one already; keep that one.
	if prev, ok, _ := i.limiters.PeekOrAdd(ip, l); ok {
		return prev
	}
	return l
}

func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"code":  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
