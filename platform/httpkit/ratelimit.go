package httpkit

import (
	"net/http"
	"sync"
	"time"

	"koppara_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const clientIdleTTL = 10 * time.Minute

// RateLimiter throttles requests per client IP. Clients idle for longer
// than clientIdleTTL are forgotten.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rateClient
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	log       *logger.Logger
	now       func() time.Time
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit rate.Limit, burst int, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rateClient),
		limit:   limit,
		burst:   burst,
		log:     log,
		now:     time.Now,
	}
}

// NewPublicRateLimiter allows five unauthenticated lookups per minute.
func NewPublicRateLimiter(log *logger.Logger) *RateLimiter {
	return NewRateLimiter(rate.Every(12*time.Second), 5, log)
}

// RateLimit answers 429 once a client exceeds its budget.
func (r *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !r.allow(ip) {
			if r.log != nil {
				r.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastPrune) > clientIdleTTL {
		for key, cl := range r.clients {
			if now.Sub(cl.lastSeen) > clientIdleTTL {
				delete(r.clients, key)
			}
		}
		r.lastPrune = now
	}

	cl, ok := r.clients[ip]
	if !ok {
		cl = &rateClient{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}
