package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "too many requests"})
	}
}

type ipClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitPerIP 每 IP 限速，闲置桶定期回收
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*ipClient)
	)
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, cl := range buckets {
				if time.Since(cl.lastSeen) > 3*time.Minute {
					delete(buckets, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		cl, ok := buckets[ip]
		if !ok {
			cl = &ipClient{limiter: rate.NewLimiter(rps, burst)}
			buckets[ip] = cl
		}
		cl.lastSeen = time.Now()
		mu.Unlock()

		if cl.limiter.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "too many requests"})
	}
}
