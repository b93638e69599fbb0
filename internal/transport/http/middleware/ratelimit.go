package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "go-gin-marketplace/internal/transport/http/response"
)

// RateLimit 全局令牌桶；rps<=0 不限流
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, resp.Error("too many requests"))
	}
}

const (
	bucketIdleTTL    = 3 * time.Minute
	bucketSweepEvery = time.Minute
	maxBuckets       = 10000
)

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipBuckets 每 IP 一个令牌桶；闲置超过 idle 的桶定期清掉，总数不超过 max
type ipBuckets struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idle      time.Duration
	max       int
	m         map[string]*ipBucket
	lastSweep time.Time
	now       func() time.Time
}

func newIPBuckets(rps rate.Limit, burst int) *ipBuckets {
	return &ipBuckets{
		rps: rps, burst: burst, idle: bucketIdleTTL, max: maxBuckets,
		m: make(map[string]*ipBucket), now: time.Now,
	}
}

func (b *ipBuckets) allow(ip string) bool {
	b.mu.Lock()
	now := b.now()
	if now.Sub(b.lastSweep) >= bucketSweepEvery || len(b.m) >= b.max {
		b.sweep(now)
	}
	bk, ok := b.m[ip]
	if !ok {
		if len(b.m) >= b.max {
			// 清完仍然满：不再建新桶，按超限处理
			b.mu.Unlock()
			return false
		}
		bk = &ipBucket{lim: rate.NewLimiter(b.rps, b.burst)}
		b.m[ip] = bk
	}
	bk.seen = now
	b.mu.Unlock()
	return bk.lim.AllowN(now, 1)
}

func (b *ipBuckets) sweep(now time.Time) {
	for ip, bk := range b.m {
		if now.Sub(bk.seen) > b.idle {
			delete(b.m, ip)
		}
	}
	b.lastSweep = now
}

func (b *ipBuckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}

// RateLimitPerIP 按 c.ClientIP() 分桶；只有受信代理的 X-Forwarded-For 才会被采信，见 engine.SetTrustedProxies
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	b := newIPBuckets(rps, burst)
	return func(c *gin.Context) {
		if b.allow(c.ClientIP()) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, resp.Error("too many requests"))
	}
}
