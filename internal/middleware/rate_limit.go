package middleware

import (
	"sync"

	middlewareerrors "hr-portal/internal/middleware/errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type KeyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // jumlah request per detik
	b        int        // burst (kapasitas kantong)
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}

	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			abortWith(c, middlewareerrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimitByUser: r = request per detik, b = burst. Requests without a
// principal pass through.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok || p.ID == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(p.ID).Allow() {
			abortWith(c, middlewareerrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
