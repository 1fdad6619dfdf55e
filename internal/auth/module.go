// Package auth provides registration, credential and Google OAuth login,
// and the password recovery flow.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"alerthub_backend/internal/auth/handler"
	"alerthub_backend/internal/auth/repository"
	"alerthub_backend/internal/auth/service"
	"alerthub_backend/internal/email"
	apphttp "alerthub_backend/internal/http"
	"alerthub_backend/platform/config"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/validator"
)

// Module is the auth bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the auth module.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, mail email.Sender, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, mail, log)
	google := service.NewGoogleService(svc, repo, cfg, log)
	h := handler.New(svc, google, validate, cfg)

	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts the public auth routes with the stricter rate limit.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	group.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
