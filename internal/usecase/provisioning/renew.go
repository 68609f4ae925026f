package provisioning

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/internal/audit"
	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
)

// RenewUseCase renews an order: debits the wallet, extends the expiry, and
// calls the provider's renewal hook where one exists. The whole attempt is
// wrapped in an audit trail that survives regardless of outcome.
type RenewUseCase struct {
	orders     order.Repository
	clients    map[provider.Name]provider.Client
	ledger     Ledger
	auditStore audit.Store
	cfg        *config.Config
	logger     *zap.Logger
}

func NewRenewUseCase(
	orders order.Repository,
	clients map[provider.Name]provider.Client,
	ledger Ledger,
	auditStore audit.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *RenewUseCase {
	return &RenewUseCase{
		orders:     orders,
		clients:    clients,
		ledger:     ledger,
		auditStore: auditStore,
		cfg:        cfg,
		logger:     logger.Named("usecase.renew"),
	}
}

// Execute renews an order for the given number of periods (months).
func (uc *RenewUseCase) Execute(ctx context.Context, orderID int64, months int) (err error) {
	if months < 1 {
		months = 1
	}

	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("order %d not found", orderID)
	}

	trail := audit.NewLogger(uc.auditStore, uc.logger, o.ID, o.ResellerID)
	trail.Info("renewal started", map[string]any{
		"months":   months,
		"provider": string(o.Provider),
	})
	defer func() {
		if r := recover(); r != nil {
			trail.Error("renewal panicked", map[string]any{"panic": fmt.Sprint(r)})
			trail.Finalize(context.WithoutCancel(ctx), false, nil, fmt.Sprint(r), string(debug.Stack()))
			panic(r)
		}
	}()

	amount := o.Price * int64(months)

	// 1. Debit the wallet
	description := fmt.Sprintf("Renewal of order #%d (%d month(s))", o.ID, months)
	if err := uc.ledger.Deduct(ctx, o.ResellerID, amount, o.ID, description); err != nil {
		trail.Error("wallet deduction failed", map[string]any{"error": err.Error()})
		trail.Finalize(context.WithoutCancel(ctx), false, nil, err.Error(), "")
		return err
	}
	trail.SetPaymentInfo(audit.PaymentInfo{
		ResellerID: o.ResellerID,
		Amount:     amount,
		Method:     "wallet",
	})
	trail.Success("wallet debited", map[string]any{"amount": amount})

	// 2. Provider-side renewal, where the panel supports it
	if client, ok := uc.clients[o.Provider]; ok {
		if renewer, ok := client.(provider.Renewer); ok {
			started := time.Now()
			renewErr := renewer.Renew(ctx, o.ServiceRef(), months)
			result := audit.ProviderResult{
				Success:  renewErr == nil,
				Duration: time.Since(started),
			}
			if renewErr != nil {
				result.Error = renewErr.Error()
				trail.SetProviderResult(result)
				trail.Error("provider renewal failed", map[string]any{"error": renewErr.Error()})
				uc.refund(ctx, o, amount, trail)
				trail.Finalize(context.WithoutCancel(ctx), false, nil, renewErr.Error(), "")
				return renewErr
			}
			result.Summary = "provider renewal accepted"
			trail.SetProviderResult(result)
			trail.Success("provider renewed", nil)
		}
	}

	// 3. Extend the expiry and persist
	newExpiry := o.ExtendExpiry(months * uc.cfg.RenewalPeriodDays)
	if err := uc.orders.Save(ctx, o); err != nil {
		trail.Error("failed to persist new expiry", map[string]any{"error": err.Error()})
		trail.Finalize(context.WithoutCancel(ctx), false, nil, err.Error(), "")
		return err
	}

	trail.Success("renewal complete", map[string]any{"new_expiry": newExpiry})
	trail.Finalize(context.WithoutCancel(ctx), true, &newExpiry, "", "")

	uc.logger.Info("order renewed",
		zap.Int64("order_id", o.ID),
		zap.Int("months", months),
		zap.Time("new_expiry", newExpiry),
	)
	return nil
}

func (uc *RenewUseCase) refund(ctx context.Context, o *order.Order, amount int64, trail *audit.Logger) {
	description := fmt.Sprintf("Refund for failed renewal of order #%d", o.ID)
	if err := uc.ledger.Recharge(ctx, o.ResellerID, amount, description); err != nil {
		trail.Error("refund failed", map[string]any{"error": err.Error()})
		uc.logger.Error("refund failed after renewal error",
			zap.Int64("order_id", o.ID), zap.Error(err))
		return
	}
	trail.Warning("wallet refunded after provider failure", map[string]any{"amount": amount})
}
