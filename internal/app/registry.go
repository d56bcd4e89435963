package app

import (
	"database/sql"

	"hr-portal/internal/balance"
	"hr-portal/internal/blobstore"
	"hr-portal/internal/config"
	"hr-portal/internal/leave"
	"hr-portal/internal/messaging/kafka"
	"hr-portal/internal/middleware"
	"hr-portal/internal/observability"
	"hr-portal/internal/rbac"
	"hr-portal/internal/rbac/infra"
	"hr-portal/internal/reimbursement"
	"hr-portal/internal/roster"
	"hr-portal/internal/scope"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const uploadsPrefix = "/uploads"

type modules struct {
	cfg        *config.Config
	db         *sql.DB
	gormDB     *gorm.DB
	rdb        *redis.Client
	metrics    *observability.Metrics
	logger     *zap.Logger
	rateLimit  rate.Limit
	rateBursts int
}

func registerModules(router *gin.Engine, m modules) error {
	// --- Repositories ---
	balanceRepo := balance.NewRepository(m.gormDB)
	leaveRepo := leave.NewRepository(m.gormDB)
	reimbursementRepo := reimbursement.NewRepository(m.gormDB)
	categoryRepo := reimbursement.NewCategoryRepository(m.gormDB)
	rosterRepo := roster.NewRepository(m.gormDB)
	outboxRepo := kafka.NewOutboxRepository(m.db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, rbac.DefaultPolicy, m.logger)
	if err != nil {
		return err
	}
	resolver := scope.NewResolver()

	receipts, err := blobstore.NewLocalStore(m.cfg.UploadDir, uploadsPrefix, m.logger)
	if err != nil {
		return err
	}

	// --- Services ---
	balanceService := balance.NewService(balanceRepo, balance.DefaultPolicy, m.logger)
	rosterService := roster.NewService(m.db, rosterRepo, m.rdb, m.cfg.RosterCacheTTL, m.logger)
	leaveService := leave.NewService(m.db, leaveRepo, leave.Dependencies{
		Balances: balanceRepo,
		Ledger:   balanceService,
		Resolver: resolver,
		Outbox:   outboxRepo,
		Metrics:  m.metrics,
	}, m.logger)
	reimbursementService := reimbursement.NewService(m.db, reimbursementRepo, reimbursement.Dependencies{
		Categories:     categoryRepo,
		Resolver:       resolver,
		Outbox:         outboxRepo,
		Metrics:        m.metrics,
		EnforceReceipt: m.cfg.EnforceReceipt,
	}, m.logger)
	categoryService := reimbursement.NewCategoryService(categoryRepo, m.logger)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService, m.logger)
	reimbursementHandler := reimbursement.NewHandler(reimbursementService, categoryService, receipts, m.logger).
		WithMaxUploadBytes(m.cfg.MaxUploadBytes)
	rosterHandler := roster.NewHandler(rosterService, m.logger)

	router.Static(uploadsPrefix, m.cfg.UploadDir)

	// --- Routes Registration ---
	idempotency := middleware.Idempotency(m.rdb, m.logger)
	api := router.Group("/api/v1")
	api.Use(
		middleware.AuthMiddleware(m.cfg.JWTSecret, rosterService),
		middleware.ContextLogger(m.logger),
		middleware.RateLimitByUser(m.rateLimit, m.rateBursts),
	)
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, idempotency)
		reimbursement.RegisterRoutes(api, reimbursementHandler, rbacService, idempotency)
		roster.RegisterRoutes(api, rosterHandler, rbacService)
	}

	return nil
}
