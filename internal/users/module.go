// Package users provides account administration for admins and profile
// self-service for authenticated citizens.
package users

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "alerthub_backend/internal/http"
	"alerthub_backend/internal/users/handler"
	"alerthub_backend/internal/users/repository"
	"alerthub_backend/internal/users/service"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/validator"
)

// Module is the users bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, validate)
	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "users"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	admin := ctx.Admin.Group("/users")
	admin.GET("", m.handler.List)
	admin.POST("", m.handler.Create)
	admin.PATCH("/:id", m.handler.Update)
	admin.PATCH("/:id/status", m.handler.ChangeStatus)

	profile := ctx.Protected.Group("/profile")
	profile.GET("", m.handler.GetProfile)
	profile.PUT("", m.handler.UpdateProfile)
	profile.PUT("/change-password", m.handler.ChangePassword)
	profile.DELETE("", m.handler.DeleteAccount)
}

var _ apphttp.Module = (*Module)(nil)
