// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/i18n"
	"github.com/javajoker/readify-backend/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		now:      time.Now,
	}
}

// Cleanup drops visitors idle for longer than 3 minutes, once a minute,
// until stop is closed.
func (rl *RateLimiter) Cleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.evict(3 * time.Minute)
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > idle {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, rl.now()}
		return limiter
	}

	v.lastSeen = rl.now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getVisitor(c.ClientIP())

		if !limiter.Allow() {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				i18n.T(utils.GetLangFromContext(c), i18n.KeyRateLimited), nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimits holds the per-route-group limiters built from configuration.
type RateLimits struct {
	enabled bool
	general *RateLimiter
	auth    *RateLimiter
	upload  *RateLimiter
}

func NewRateLimits(cfg config.RateLimitConfig) *RateLimits {
	return &RateLimits{
		enabled: cfg.Enabled,
		general: NewRateLimiter(perSecond(cfg.GeneralPerSec), max(cfg.GeneralBurst, 1)),
		auth:    NewRateLimiter(perMinute(cfg.AuthPerMinute), max(cfg.AuthPerMinute, 1)),
		upload:  NewRateLimiter(perMinute(cfg.UploadPerMinute), max(cfg.UploadPerMinute, 1)),
	}
}

// Start runs visitor cleanup for every limiter until stop is closed.
func (r *RateLimits) Start(stop <-chan struct{}) {
	if !r.enabled {
		return
	}
	go r.general.Cleanup(stop)
	go r.auth.Cleanup(stop)
	go r.upload.Cleanup(stop)
}

func (r *RateLimits) General() gin.HandlerFunc {
	return r.middleware(r.general)
}

func (r *RateLimits) Auth() gin.HandlerFunc {
	return r.middleware(r.auth)
}

func (r *RateLimits) Upload() gin.HandlerFunc {
	return r.middleware(r.upload)
}

func (r *RateLimits) middleware(rl *RateLimiter) gin.HandlerFunc {
	if !r.enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.Middleware()
}

func perSecond(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(n)
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}
