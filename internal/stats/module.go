package stats

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "alerthub_backend/internal/http"
	"alerthub_backend/platform/httpkit"
)

type Module struct {
	repo *Repository
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: NewRepository(pool)}
}

func (m *Module) Name() string { return "stats" }

// RegisterRoutes mounts the counters on the public group; the landing page
// shows them before login.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/stats", m.summary)
}

func (m *Module) summary(c *gin.Context) {
	summary, err := m.repo.Summary(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

var _ apphttp.Module = (*Module)(nil)
