package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-finance-tracker/internal/interface/http"
	"github.com/oksasatya/go-finance-tracker/internal/interface/middleware"
)

// TransactionModule mounts one transaction kind under /api/<kind>. Every
// route sits behind the authentication gate.
type TransactionModule struct {
	Handler *handlers.TransactionHandler
	Gate    gin.HandlerFunc
	RDB     *redis.Client
}

func NewTransactionModule(h *handlers.TransactionHandler, gate gin.HandlerFunc, rdb *redis.Client) *TransactionModule {
	return &TransactionModule{Handler: h, Gate: gate, RDB: rdb}
}

func (m *TransactionModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + m.Handler.Kind.Name)
	g.Use(m.Gate, middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUser(), nil))
	{
		g.GET("", m.Handler.List)
		g.GET("/recurring", m.Handler.Recurring)
		g.GET("/summary", m.Handler.Summary)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.POST(m.Handler.Kind.CreatePath, m.Handler.Create)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
