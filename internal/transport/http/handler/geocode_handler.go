package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-marketplace/internal/geocode"
	httpez "go-gin-marketplace/internal/transport/http/ez"
)

// GeocodeHandler 发布页按地名取坐标
type GeocodeHandler struct {
	geo geocode.Geocoder
}

func NewGeocodeHandler(geo geocode.Geocoder) *GeocodeHandler {
	return &GeocodeHandler{geo: geo}
}

func (h *GeocodeHandler) Priority() int { return 30 }

type geocodeQuery struct {
	Q string `form:"q"`
}

func (h *GeocodeHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	httpez.RegisterAction(ez, httpez.Action[geocodeQuery, *geocode.Coordinates]{
		Method: http.MethodGet,
		Path:   "/geocode",
		Binder: httpez.BindQuery,
		Messages: map[int]string{
			http.StatusNotFound:   "Location not found",
			http.StatusBadGateway: "Geocoding service unavailable",
		},
		Handler: func(c *gin.Context, in *geocodeQuery) (*geocode.Coordinates, error) {
			q := strings.TrimSpace(in.Q)
			if q == "" {
				return nil, httpez.BadRequest("Query is required")
			}
			return h.geo.Lookup(c.Request.Context(), q)
		},
	})
}
