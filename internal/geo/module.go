// Package geo resolves free-form Colombian addresses and coordinates through
// the Geoapify geocoding API, with heuristic ranking tuned for Medellin.
package geo

import (
	"alerthub_backend/internal/geo/geoapify"
	apphttp "alerthub_backend/internal/http"
	"alerthub_backend/platform/config"
	"alerthub_backend/platform/logger"
)

// Module wires the geocoding HTTP routes.
type Module struct {
	handler *Handler
}

// NewModule builds the geocoding module. cache decides where resolved
// lookups live; pass a MemoryCache or a RedisCache.
func NewModule(cfg config.GeoConfig, cache Cache, log *logger.Logger) *Module {
	apiKey := cfg.GetGeoapifyAPIKey()
	client := geoapify.NewClient(apiKey)
	svc := NewService(client, cache, cfg.GetGeoCacheTTL(), apiKey != "", log)
	h := NewHandler(svc, log)
	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "geo"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/geo")
	group.GET("/search", m.handler.Search)
	group.GET("/reverse", m.handler.Reverse)
}

var _ apphttp.Module = (*Module)(nil)
