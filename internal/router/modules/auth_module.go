package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-finance-tracker/internal/interface/http"
	"github.com/oksasatya/go-finance-tracker/internal/interface/middleware"
)

// AuthModule mounts /api/auth.
// Public: POST /register, POST /login
// Protected: GET /profile, PUT /profile
type AuthModule struct {
	Handler *handlers.AuthHandler
	Gate    gin.HandlerFunc
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, gate gin.HandlerFunc, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Gate: gate, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	registerLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByRoute(), nil)
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByRoute(), nil)
	g.POST("/register", registerLimiter, m.Handler.Register)
	g.POST("/login", loginLimiter, m.Handler.Login)

	auth := g.Group("")
	auth.Use(m.Gate, middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByUser(), nil))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
	}
}
