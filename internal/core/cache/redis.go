package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var lookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "cache_lookups_total", Help: "Cache lookups by result"},
	[]string{"result"}, // hit | miss | error
)

func init() { prometheus.MustRegister(lookups) }

// 共享回源与任何单个调用方的取消无关，只受这个上限约束
const defaultLoadTimeout = 10 * time.Second

// Cache 只给外部查询（地理编码）用，商品/用户读取不走缓存
type Cache struct {
	rdb         redis.UniversalClient
	prefix      string
	sf          singleflight.Group
	loadTimeout time.Duration
}

func New(addr, pass string, db int, prefix string) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), prefix)
}

func NewWithClient(rdb redis.UniversalClient, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, loadTimeout: defaultLoadTimeout}
}

func (c *Cache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.rdb.Close() }

// Delete 删除失败只影响命中率，不返回错误
func (c *Cache) Delete(ctx context.Context, key string) {
	_ = c.rdb.Del(ctx, c.prefix+key).Err()
}

// GetOrLoad 先读缓存；未命中时同 key 并发只回源一次，回源失败不写缓存
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	full := c.prefix + key
	b, err := c.rdb.Get(ctx, full).Bytes()
	if err == nil {
		lookups.WithLabelValues("hit").Inc()
		return b, nil
	}
	if !errors.Is(err, redis.Nil) {
		// redis 不可用时直接回源
		lookups.WithLabelValues("error").Inc()
		return load(ctx)
	}
	lookups.WithLabelValues("miss").Inc()
	ch := c.sf.DoChan(full, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		_ = c.rdb.Set(lctx, full, b, ttl).Err()
		return b, nil
	})
	// 调用方取消只让自己不再等，回源继续给其他等待者
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}
