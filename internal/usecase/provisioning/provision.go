package provisioning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/internal/catalog"
	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/internal/scheduler"
)

// Catalog resolves a memory tier to the provider product fulfilling it.
type Catalog interface {
	Resolve(ctx context.Context, name provider.Name, memoryTier string) (*catalog.ProductMapping, error)
	ResolveDefault(ctx context.Context, memoryTier string) (*catalog.ProductMapping, error)
}

// Ledger is the wallet surface the orchestrator needs.
type Ledger interface {
	Deduct(ctx context.Context, resellerID, amount, orderID int64, description string) error
	Recharge(ctx context.Context, resellerID, amount int64, description string) error
}

type ProvisionUseCase struct {
	orders   order.Repository
	catalog  Catalog
	clients  map[provider.Name]provider.Client
	ledger   Ledger
	backfill *scheduler.Backfill
	cfg      *config.Config
	logger   *zap.Logger
}

func NewProvisionUseCase(
	orders order.Repository,
	cat Catalog,
	clients map[provider.Name]provider.Client,
	ledger Ledger,
	backfill *scheduler.Backfill,
	cfg *config.Config,
	logger *zap.Logger,
) *ProvisionUseCase {
	return &ProvisionUseCase{
		orders:   orders,
		catalog:  cat,
		clients:  clients,
		ledger:   ledger,
		backfill: backfill,
		cfg:      cfg,
		logger:   logger.Named("usecase.provision"),
	}
}

// Execute provisions the VM behind an order: pending -> provisioning ->
// active on success, -> failed with the error recorded otherwise. The
// wallet is debited up front; a provider failure refunds it.
func (uc *ProvisionUseCase) Execute(ctx context.Context, orderID int64) error {
	// 1. Load Order
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("order %d not found", orderID)
	}
	if o.Provisioned() {
		// The (provider, service) binding is immutable once set.
		return fmt.Errorf("order %d is already provisioned", orderID)
	}

	// 2. Resolve the product mapping for the order's tier
	mapping, err := uc.resolveMapping(ctx, o)
	if err != nil {
		return err
	}
	client, ok := uc.clients[provider.Name(mapping.Provider)]
	if !ok {
		return fmt.Errorf("no client configured for provider %s", mapping.Provider)
	}
	o.Provider = client.Name()

	// 3. Debit the wallet; the transactional deduct is the authoritative
	// balance check.
	description := fmt.Sprintf("VPS order #%d (%s %s)", o.ID, o.ProductName, o.MemoryTier)
	if err := uc.ledger.Deduct(ctx, o.ResellerID, o.Price, o.ID, description); err != nil {
		return err
	}

	// 4. Generate credentials and hostname
	username, err := generateUsername()
	if err != nil {
		return uc.failAndRefund(ctx, o, err)
	}
	password, err := generatePassword()
	if err != nil {
		return uc.failAndRefund(ctx, o, err)
	}
	hostname, err := generateHostname(o.ProductName, o.MemoryTier)
	if err != nil {
		return uc.failAndRefund(ctx, o, err)
	}

	o.MarkProvisioning()
	if err := uc.orders.Save(ctx, o); err != nil {
		return uc.refund(ctx, o, err)
	}

	// 5. Provision on the provider
	result, err := client.Provision(ctx, provider.ProvisionSpec{
		ProductID:  mapping.ProductID,
		Hostname:   hostname,
		Username:   username,
		Password:   password,
		TemplateID: mapping.TemplateID,
	})
	if err != nil {
		uc.logger.Error("provision failed",
			zap.Int64("order_id", o.ID),
			zap.String("provider", string(client.Name())),
			zap.Error(err),
		)
		return uc.failAndRefund(ctx, o, err)
	}

	o.MarkActive(result.ServiceID, result.IP, username, password, hostname)
	if err := uc.orders.Save(ctx, o); err != nil {
		return err
	}

	uc.logger.Info("order provisioned",
		zap.Int64("order_id", o.ID),
		zap.String("provider", string(client.Name())),
		zap.String("service_id", result.ServiceID),
		zap.String("ip", o.IPAddress),
	)

	// 6. If the provider assigns addresses asynchronously, schedule exactly
	// one delayed status check to backfill the IP. Best effort: a still
	// missing address leaves the order "Pending" until a manual refresh.
	if o.HasPendingIP() {
		uc.scheduleIPBackfill(o.ID, client, o.ServiceRef())
	}
	return nil
}

func (uc *ProvisionUseCase) resolveMapping(ctx context.Context, o *order.Order) (*catalog.ProductMapping, error) {
	if o.Provider != "" {
		return uc.catalog.Resolve(ctx, o.Provider, o.MemoryTier)
	}
	return uc.catalog.ResolveDefault(ctx, o.MemoryTier)
}

func (uc *ProvisionUseCase) failAndRefund(ctx context.Context, o *order.Order, cause error) error {
	o.MarkProvisionFailed(cause.Error())
	if err := uc.orders.Save(ctx, o); err != nil {
		uc.logger.Error("failed to record provision failure",
			zap.Int64("order_id", o.ID), zap.Error(err))
	}
	return uc.refund(ctx, o, cause)
}

func (uc *ProvisionUseCase) refund(ctx context.Context, o *order.Order, cause error) error {
	description := fmt.Sprintf("Refund for failed VPS order #%d", o.ID)
	if err := uc.ledger.Recharge(ctx, o.ResellerID, o.Price, description); err != nil {
		uc.logger.Error("refund failed after provisioning error",
			zap.Int64("order_id", o.ID),
			zap.Int64("reseller_id", o.ResellerID),
			zap.Error(err),
		)
	}
	return cause
}

func (uc *ProvisionUseCase) scheduleIPBackfill(orderID int64, client provider.Client, ref string) {
	delay := time.Duration(uc.cfg.IPBackfillDelaySeconds) * time.Second
	uc.backfill.Schedule(orderID, delay, func(ctx context.Context) {
		status, err := client.GetStatus(ctx, ref)
		if err != nil {
			uc.logger.Warn("ip backfill status check failed",
				zap.Int64("order_id", orderID), zap.Error(err))
			return
		}
		if status.IP == "" {
			uc.logger.Info("ip still pending after backfill check",
				zap.Int64("order_id", orderID))
			return
		}
		if err := uc.orders.UpdateIPAddress(ctx, orderID, status.IP); err != nil {
			uc.logger.Error("ip backfill write failed",
				zap.Int64("order_id", orderID), zap.Error(err))
			return
		}
		uc.logger.Info("ip backfilled",
			zap.Int64("order_id", orderID), zap.String("ip", status.IP))
	})
}
