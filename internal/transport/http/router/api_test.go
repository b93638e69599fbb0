package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"go-gin-marketplace/internal/core/config"
)

func init() { gin.SetMode(gin.TestMode) }

type pingModule struct {
	path string
	prio int
	log  *[]string
}

func (m pingModule) Priority() int { return m.prio }

func (m pingModule) MountAPI(g *gin.RouterGroup) {
	*m.log = append(*m.log, m.path)
	g.GET(m.path, func(c *gin.Context) { c.String(http.StatusOK, m.path) })
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewAPIEngine(t *testing.T) {
	var mounted []string
	r := NewAPIEngine(zap.NewNop(), config.Limits{MaxInflight: 8, MaxBodyMB: 1, TimeoutSec: 1},
		pingModule{path: "/late", prio: 50, log: &mounted},
		pingModule{path: "/early", prio: 10, log: &mounted},
	)
	assert.Equal(t, []string{"/early", "/late"}, mounted)

	w := get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server is running", w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	assert.Equal(t, "/early", get(r, "/api/early").Body.String())

	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = get(r, "/api/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())
}

func TestPriorityDefault(t *testing.T) {
	assert.Equal(t, 100, priorityOf(struct{}{}))
	assert.Equal(t, 7, priorityOf(pingModule{prio: 7}))
}

func TestPerIPLimitIgnoresForwardedForByDefault(t *testing.T) {
	lim := config.Limits{PerIPRPS: 1, PerIPBurst: 1, MaxInflight: 8, MaxBodyMB: 1, TimeoutSec: 1}
	r := NewAPIEngine(zap.NewNop(), lim)

	ok := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
}

func TestPerIPLimitHonorsTrustedProxy(t *testing.T) {
	lim := config.Limits{PerIPRPS: 1, PerIPBurst: 1, MaxInflight: 8, MaxBodyMB: 1, TimeoutSec: 1,
		TrustedProxies: []string{"192.0.2.1"}}
	r := NewAPIEngine(zap.NewNop(), lim)

	from := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, from("203.0.113.1"))
	assert.Equal(t, http.StatusOK, from("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, from("203.0.113.1"))
}
