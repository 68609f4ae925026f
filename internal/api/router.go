package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/internal/api/middleware"
	"github.com/sulphurninja/oceanlinux-sub001/internal/audit"
	"github.com/sulphurninja/oceanlinux-sub001/internal/catalog"
	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
	"github.com/sulphurninja/oceanlinux-sub001/internal/usecase/provisioning"
	"github.com/sulphurninja/oceanlinux-sub001/internal/wallet"
)

type Router struct {
	engine      *gin.Engine
	server      *http.Server
	cfg         *config.Config
	provisionUC *provisioning.ProvisionUseCase
	actionUC    *provisioning.ActionUseCase
	renewUC     *provisioning.RenewUseCase
	ledger      *wallet.Ledger
	registry    *catalog.Registry
	auditStore  *audit.GormStore
	logger      *zap.Logger
}

func NewRouter(
	cfg *config.Config,
	provisionUC *provisioning.ProvisionUseCase,
	actionUC *provisioning.ActionUseCase,
	renewUC *provisioning.RenewUseCase,
	ledger *wallet.Ledger,
	registry *catalog.Registry,
	auditStore *audit.GormStore,
	logger *zap.Logger,
) *Router {
	// Disable GIN default logger
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Add recovery middleware
	r.Use(gin.Recovery())

	// Add custom middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.Logger(logger))

	api := &Router{
		engine:      r,
		cfg:         cfg,
		provisionUC: provisionUC,
		actionUC:    actionUC,
		renewUC:     renewUC,
		ledger:      ledger,
		registry:    registry,
		auditStore:  auditStore,
		logger:      logger,
	}

	api.RegisterRoutes()
	return api
}

func (r *Router) RegisterRoutes() {
	// Simple health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus metrics endpoint
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// All broker operations are dashboard-to-service calls, protected by
	// the shared admin token.
	api := r.engine.Group("/api")
	api.Use(r.adminAuth())
	{
		orders := api.Group("/orders/:id")
		{
			orders.POST("/provision", r.ProvisionOrder)
			orders.POST("/renew", r.RenewOrder)
			orders.POST("/start", r.StartOrder)
			orders.POST("/stop", r.StopOrder)
			orders.POST("/reboot", r.RebootOrder)
			orders.POST("/password", r.ChangeOrderPassword)
			orders.POST("/reinstall", r.ReinstallOrder)
			orders.GET("/templates", r.ListOrderTemplates)
			orders.GET("/status", r.OrderStatus)
			orders.GET("/audits", r.ListOrderAudits)
		}

		resellers := api.Group("/resellers/:id/wallet")
		{
			resellers.GET("", r.WalletBalance)
			resellers.GET("/transactions", r.WalletTransactions)
			resellers.POST("/recharge", r.WalletRecharge)
		}

		api.GET("/catalog/:provider", r.ListCatalog)
		api.PUT("/catalog", r.UpsertCatalog)
	}
}

func (r *Router) Run() error {
	r.server = &http.Server{
		Addr:         ":" + r.cfg.Port,
		Handler:      r.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return r.server.ListenAndServe()
}

func (r *Router) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := strings.TrimSpace(r.cfg.AdminAPIToken)
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_token_not_configured"})
			return
		}

		provided := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if provided == "" {
			authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
			if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				provided = strings.TrimSpace(authHeader[7:])
			}
		}

		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// Shutdown gracefully shuts down the HTTP server
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}
