package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-marketplace/internal/core/config"
	"go-gin-marketplace/internal/core/server"
	mdw "go-gin-marketplace/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, lim config.Limits, mods ...APIModule) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = max(lim.MaxBodyMB, 1) << 20
	// 默认不信任任何代理，ClientIP 取连接地址，按 IP 限流不能被伪造的头绕过
	if err := r.SetTrustedProxies(lim.TrustedProxies); err != nil {
		l.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", lim.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst),
		mdw.ConcurrencyLimit(max(lim.MaxInflight, 1)),
		mdw.MaxBodyBytes(max(lim.MaxBodyMB, 1)<<20),
		mdw.Timeout(time.Duration(max(lim.TimeoutSec, 1))*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		server.CORS(),
	)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Server is running") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	var reg Registry
	reg.Register(mods...)
	reg.MountAll(r.Group("/api"))

	return r
}
