package geo

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"alerthub_backend/platform/httpkit"
	"alerthub_backend/platform/logger"
)

// Handler exposes the geocoding endpoints.
type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Search handles GET /geo/search?q=...&limit=...&strict=...
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		httpkit.Error(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	strict := strings.EqualFold(c.Query("strict"), "true")

	payload, err := h.service.Search(c.Request.Context(), query, limit, strict)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, payload)
}

// Reverse handles GET /geo/reverse?lat=...&lon=...
func (h *Handler) Reverse(c *gin.Context) {
	rawLat := strings.TrimSpace(c.Query("lat"))
	rawLon := strings.TrimSpace(c.Query("lon"))
	if rawLat == "" || rawLon == "" {
		httpkit.Error(c, http.StatusBadRequest, "lat and lon parameters are required", nil)
		return
	}

	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)
	if latErr != nil || lonErr != nil {
		httpkit.Error(c, http.StatusBadRequest, "lat and lon must be valid numbers", nil)
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		httpkit.Error(c, http.StatusBadRequest, "lat and lon are out of range", nil)
		return
	}

	payload, err := h.service.Reverse(c.Request.Context(), lat, lon)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, payload)
}
