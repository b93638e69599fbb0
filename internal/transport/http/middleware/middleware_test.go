package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"go-gin-marketplace/internal/core/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))
	assert.Equal(t, w.Header().Get(KeyRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, strings.Repeat("x", 200))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return req
	}
	assert.Equal(t, http.StatusOK, serve(r, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, from("10.0.0.2")).Code)
}

func TestIPBucketsEvictIdle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := newIPBuckets(1, 1)
	b.now = func() time.Time { return now }

	assert.True(t, b.allow("10.0.0.1"))
	assert.True(t, b.allow("10.0.0.2"))
	assert.False(t, b.allow("10.0.0.1"))
	assert.Equal(t, 2, b.size())

	// 10.0.0.2 一直活跃，10.0.0.1 闲置超时后被清掉
	for i := 0; i < 4; i++ {
		now = now.Add(time.Minute)
		b.allow("10.0.0.2")
	}
	assert.Equal(t, 1, b.size())
	assert.True(t, b.allow("10.0.0.1"))
}

func TestIPBucketsCapped(t *testing.T) {
	b := newIPBuckets(1, 1)
	b.max = 2
	assert.True(t, b.allow("10.0.0.1"))
	assert.True(t, b.allow("10.0.0.2"))
	assert.False(t, b.allow("10.0.0.3"))
	assert.Equal(t, 2, b.size())
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(4))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

type staticVerifier map[string]string

func (v staticVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if uid, ok := v[token]; ok {
		return &auth.Identity{UID: uid}, nil
	}
	return nil, errors.New("unknown token")
}

func TestAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/", Authenticate(staticVerifier{"good": "u1"}), func(c *gin.Context) {
		c.String(http.StatusOK, UID(c))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestAuthenticate_Disabled(t *testing.T) {
	r := gin.New()
	r.GET("/", Authenticate(nil), func(c *gin.Context) { c.String(http.StatusOK, "uid=%s", UID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid=", w.Body.String())
}
