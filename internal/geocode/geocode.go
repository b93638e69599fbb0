package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-gin-marketplace/internal/core/cache"
	"go-gin-marketplace/internal/domain"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geocoder interface {
	Lookup(ctx context.Context, query string) (*Coordinates, error)
}

// OpenCage https://opencagedata.com/api
type OpenCage struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewOpenCage(baseURL, apiKey string, timeout time.Duration) *OpenCage {
	return &OpenCage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: timeout},
	}
}

type openCageResp struct {
	Results []struct {
		Geometry Coordinates `json:"geometry"`
	} `json:"results"`
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

func (o *OpenCage) Lookup(ctx context.Context, query string) (*Coordinates, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("key", o.apiKey)
	q.Set("limit", "1")
	q.Set("no_annotations", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/geocode/v1/json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := o.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: geocode request: %v", domain.ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: geocode status %d", domain.ErrUnavailable, res.StatusCode)
	}
	var body openCageResp
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode geocode response: %v", domain.ErrUnavailable, err)
	}
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("location %q: %w", query, domain.ErrNotFound)
	}
	c := body.Results[0].Geometry
	return &c, nil
}

type cached struct {
	next  Geocoder
	cache *cache.Cache
	ttl   time.Duration
}

// WithCache c 为 nil 时原样返回 next
func WithCache(next Geocoder, c *cache.Cache, ttl time.Duration) Geocoder {
	if c == nil {
		return next
	}
	return &cached{next: next, cache: c, ttl: ttl}
}

func (g *cached) Lookup(ctx context.Context, query string) (*Coordinates, error) {
	return cache.GetOrLoadJSON(g.cache, ctx, "geocode:"+normalize(query), g.ttl,
		func(ctx context.Context) (*Coordinates, error) {
			return g.next.Lookup(ctx, query)
		})
}

func normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
