// Package alerts implements citizen incident reports: creation with evidence
// media, listing, owner edits and the admin review workflow.
package alerts

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"alerthub_backend/internal/alerts/handler"
	"alerthub_backend/internal/alerts/repository"
	"alerthub_backend/internal/alerts/service"
	apphttp "alerthub_backend/internal/http"
	"alerthub_backend/internal/storage"
	"alerthub_backend/platform/events"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

// NewModule wires the alert stack. store may be nil when object storage is
// disabled.
func NewModule(pool *pgxpool.Pool, store storage.ObjectStore, bus events.Bus, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, bus, log)
	return &Module{handler: handler.New(svc, validate)}
}

func (m *Module) Name() string { return "alerts" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	alerts := ctx.Protected.Group("/alerts")
	{
		alerts.POST("", m.handler.Create)
		alerts.GET("", m.handler.List)
		alerts.GET("/:id", m.handler.Get)
		alerts.PUT("/:id", m.handler.Update)
	}
	ctx.Admin.PATCH("/alerts/:id/status", m.handler.ChangeStatus)
}

var _ apphttp.Module = (*Module)(nil)
