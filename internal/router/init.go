package router

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-finance-tracker/internal/application"
	"github.com/oksasatya/go-finance-tracker/internal/container"
	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/internal/domain/repository"
	"github.com/oksasatya/go-finance-tracker/internal/infrastructure/cache"
	"github.com/oksasatya/go-finance-tracker/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-finance-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/go-finance-tracker/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-finance-tracker/internal/interface/http"
	"github.com/oksasatya/go-finance-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-finance-tracker/internal/router/modules"
)

// Optional integrations are only assigned to their interfaces when present,
// so services see a plain nil rather than a nil pointer wrapped in an
// interface.

func identityCache() application.IdentityCache {
	if rdb := container.GetRedis(); rdb != nil {
		return cache.NewIdentityCache(rdb, container.GetConfig().IdentityCacheTTL, container.GetLogger())
	}
	return nil
}

func auditRepository() repository.AuditRepository {
	if pool := container.GetPGPool(); pool != nil {
		return pginfra.NewAuditRepository(pool)
	}
	return nil
}

func notifier() application.Publisher {
	if pub := container.GetRabbitPub(); pub != nil && container.GetConfig().NotificationsEnabled() {
		return pub
	}
	return nil
}

func transactionIndex() application.TransactionIndex {
	if es := container.GetES(); es != nil {
		return search.NewTransactionIndex(es, container.GetConfig().ESTransactionsIndex)
	}
	return nil
}

func buildAuth() (*application.AuthService, *handlers.AuthHandler) {
	cfg := container.GetConfig()
	svc := application.NewAuthService(
		mongodb.NewUserRepository(container.GetMongo()),
		container.GetJWT(),
		identityCache(),
		auditRepository(),
		notifier(),
		container.GetLogger(),
		cfg.AppName,
		cfg.AppURL,
	)
	return svc, handlers.NewAuthHandler(svc, container.GetLogger())
}

func buildTransactions(kind entity.Kind, index application.TransactionIndex) *handlers.TransactionHandler {
	svc := application.NewTransactionService(
		kind,
		mongodb.NewTransactionRepository(container.GetMongo(), kind),
		index,
		container.GetLogger(),
	)
	return handlers.NewTransactionHandler(kind, svc, container.GetLogger())
}

// InitModules builds every feature module from the container and registers
// it. Call once at startup, after the container is populated.
func InitModules(r *Registry) {
	rdb := container.GetRedis()
	authSvc, authHandler := buildAuth()
	gate := middleware.Auth(container.GetJWT(), authSvc, container.GetLogger())
	index := transactionIndex()

	r.Add(modules.NewAuthModule(authHandler, gate, rdb))
	r.Add(modules.NewTransactionModule(buildTransactions(entity.ExpenseKind, index), gate, rdb))
	r.Add(modules.NewTransactionModule(buildTransactions(entity.IncomeKind, index), gate, rdb))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}

// NewEngine returns a gin engine with the middleware every route shares.
// Forwarding headers are honoured only from trustedProxies.
func NewEngine(trustedProxies []string, global ...gin.HandlerFunc) (*gin.Engine, error) {
	e := gin.New()
	if err := middleware.TrustProxies(e, trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	e.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RealIP())
	e.Use(global...)
	return e, nil
}
