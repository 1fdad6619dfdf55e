package roles

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "alerthub_backend/internal/http"
	"alerthub_backend/platform/httpkit"
)

// Module wires the role catalog route.
type Module struct {
	repo *Repository
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: NewRepository(pool)}
}

func (m *Module) Name() string {
	return "roles"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/roles", m.list)
}

func (m *Module) list(c *gin.Context) {
	roles, err := m.repo.List(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, roles)
}

var _ apphttp.Module = (*Module)(nil)
