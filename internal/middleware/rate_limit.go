package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"co2monitor/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LimiterIdleTTL: лимитер адреса, не встречавшегося дольше этого срока, удаляется.
const LimiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter держит отдельный лимитер на каждый адрес источника.
// Размер карты ограничен числом адресов, активных за LimiterIdleTTL.
type IPRateLimiter struct {
	ips       map[string]*visitor
	mu        sync.Mutex
	r         rate.Limit
	b         int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       make(map[string]*visitor),
		r:         r,
		b:         b,
		idleTTL:   LimiterIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	// Чистка не чаще раза за idleTTL, без отдельной горутины
	if now.Sub(i.lastSweep) >= i.idleTTL {
		i.evictIdle(now)
	}

	v, exists := i.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = now

	return v.limiter
}

func (i *IPRateLimiter) evictIdle(now time.Time) {
	for ip, v := range i.ips {
		if now.Sub(v.lastSeen) >= i.idleTTL {
			delete(i.ips, ip)
		}
	}
	i.lastSweep = now
}

// IPRateLimitMiddleware ограничивает запросы по адресу, определенному так же, как при приеме данных.
func IPRateLimitMiddleware(ipLimiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sourceIP := utils.ResolveSourceIP(c.Request)

		if !ipLimiter.GetLimiter(sourceIP).Allow() {
			log.Printf("Rate limit blocked IP: %s for path: %s", sourceIP, c.Request.URL.Path)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
