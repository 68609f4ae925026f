package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	hostycareAdapter "github.com/sulphurninja/oceanlinux-sub001/internal/adapter/provider/hostycare"
	smartvpsAdapter "github.com/sulphurninja/oceanlinux-sub001/internal/adapter/provider/smartvps"
	virtualizorAdapter "github.com/sulphurninja/oceanlinux-sub001/internal/adapter/provider/virtualizor"
	"github.com/sulphurninja/oceanlinux-sub001/internal/adapter/repository/postgres"
	"github.com/sulphurninja/oceanlinux-sub001/internal/api"
	"github.com/sulphurninja/oceanlinux-sub001/internal/audit"
	"github.com/sulphurninja/oceanlinux-sub001/internal/catalog"
	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/internal/scheduler"
	"github.com/sulphurninja/oceanlinux-sub001/internal/usecase/provisioning"
	"github.com/sulphurninja/oceanlinux-sub001/internal/wallet"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/db"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/hostycare"
	zaplog "github.com/sulphurninja/oceanlinux-sub001/pkg/log"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/smartvps"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/snowflake"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/virtualizor"
)

// RunServer starts the HTTP server and background workers.
func RunServer() {
	app := fx.New(
		fx.Provide(
			// Config
			config.Load,

			// Provider clients (Adapters)
			hostycare.NewFromEnv,
			smartvps.NewFromEnv,
			virtualizor.NewFromEnv,
			hostycareAdapter.New,
			smartvpsAdapter.New,
			virtualizorAdapter.New,
			newProviderClients,

			// Domain Adapters (Bind Interfaces)
			fx.Annotate(
				postgres.NewOrderRepository,
				fx.As(new(order.Repository)),
			),
			audit.NewGormStore,
			func(s *audit.GormStore) audit.Store { return s },
			catalog.NewRegistry,
			func(r *catalog.Registry) provisioning.Catalog { return r },
			wallet.NewLedger,
			func(l *wallet.Ledger) provisioning.Ledger { return l },

			// Background scheduling
			scheduler.NewBackfill,

			// Use Cases
			provisioning.NewProvisionUseCase,
			provisioning.NewActionUseCase,
			provisioning.NewRenewUseCase,

			// API
			api.NewRouter,
		),
		db.Module,        // Database Module
		snowflake.Module, // Snowflake ID Module
		zaplog.Module,    // Logger Module
		fx.Invoke(registerHooks),
	)

	app.Run()
}

// newProviderClients indexes the provider adapters by name so use cases
// can route on the provider an order carries.
func newProviderClients(
	h *hostycareAdapter.Adapter,
	s *smartvpsAdapter.Adapter,
	v *virtualizorAdapter.Adapter,
) map[provider.Name]provider.Client {
	return map[provider.Name]provider.Client{
		h.Name(): h,
		s.Name(): s,
		v.Name(): v,
	}
}

// RunMigrations applies the schema for every table this service owns.
func RunMigrations() error {
	cfg := config.Load()
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting database migration...")

	gdb, err := db.NewGorm(cfg)
	if err != nil {
		return err
	}

	if err := gdb.AutoMigrate(
		&postgres.OrderModel{},
		&wallet.Reseller{},
		&wallet.WalletTransaction{},
		&audit.RenewalAuditModel{},
		&catalog.ProductMapping{},
	); err != nil {
		return err
	}

	logger.Info("Migration applied successfully")
	return nil
}

func registerHooks(lc fx.Lifecycle, router *api.Router, backfill *scheduler.Backfill, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting HTTP server", zap.String("port", cfg.Port))

			go func() {
				if err := router.Run(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("Server failed to start", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server gracefully...")

			// Drop pending IP-backfill timers before the server goes away.
			backfill.Shutdown()

			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := router.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", zap.Error(err))
				return err
			}

			logger.Info("HTTP server stopped gracefully")
			return nil
		},
	})
}
