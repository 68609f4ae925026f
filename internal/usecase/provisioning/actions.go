package provisioning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
)

// ActionUseCase routes lifecycle actions on an existing order to the
// provider backing it, resolving the provider-specific reference first.
type ActionUseCase struct {
	orders  order.Repository
	clients map[provider.Name]provider.Client
	logger  *zap.Logger
}

func NewActionUseCase(orders order.Repository, clients map[provider.Name]provider.Client, logger *zap.Logger) *ActionUseCase {
	return &ActionUseCase{
		orders:  orders,
		clients: clients,
		logger:  logger.Named("usecase.actions"),
	}
}

// resolve loads the order and resolves (client, ref) for it. Providers that
// address VMs by an internal id resolve it from the order's IP/hostname.
func (uc *ActionUseCase) resolve(ctx context.Context, orderID int64) (provider.Client, string, error) {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if o == nil {
		return nil, "", fmt.Errorf("order %d not found", orderID)
	}

	client, ok := uc.clients[o.Provider]
	if !ok {
		return nil, "", fmt.Errorf("no client configured for provider %s", o.Provider)
	}

	if ref := o.ServiceRef(); ref != "" {
		return client, ref, nil
	}

	resolver, ok := client.(provider.Resolver)
	if !ok {
		return nil, "", fmt.Errorf("order %d has no service reference", orderID)
	}

	ip := o.IPAddress
	if o.HasPendingIP() {
		ip = ""
	}
	ref, found, err := resolver.ResolveRef(ctx, ip, o.Hostname)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", fmt.Errorf("order %d: no VM found for ip %q hostname %q", orderID, ip, o.Hostname)
	}
	uc.logger.Debug("resolved service reference",
		zap.Int64("order_id", orderID),
		zap.String("ref", ref),
	)
	return client, ref, nil
}

func (uc *ActionUseCase) Start(ctx context.Context, orderID int64) error {
	client, ref, err := uc.resolve(ctx, orderID)
	if err != nil {
		return err
	}
	return client.Start(ctx, ref)
}

func (uc *ActionUseCase) Stop(ctx context.Context, orderID int64) error {
	client, ref, err := uc.resolve(ctx, orderID)
	if err != nil {
		return err
	}
	return client.Stop(ctx, ref)
}

func (uc *ActionUseCase) Reboot(ctx context.Context, orderID int64) error {
	client, ref, err := uc.resolve(ctx, orderID)
	if err != nil {
		return err
	}
	return client.Reboot(ctx, ref)
}

// ChangePassword sets a new root password and records it on the order.
func (uc *ActionUseCase) ChangePassword(ctx context.Context, orderID int64, newPassword string) error {
	client, ref, err := uc.resolve(ctx, orderID)
	if err != nil {
		return err
	}
	if err := client.ChangePassword(ctx, ref, newPassword); err != nil {
		return err
	}
	return uc.updatePassword(ctx, orderID, newPassword)
}

func (uc *ActionUseCase) ListTemplates(ctx context.Context, orderID int64) ([]provider.Template, error) {
	client, ref, err := uc.resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return client.ListTemplates(ctx, ref)
}

// Reinstall rebuilds the VM from a template with a fresh random password.
func (uc *ActionUseCase) Reinstall(ctx context.Context, orderID int64, templateID string) (newPassword string, err error) {
	client, ref, err := uc.resolve(ctx, orderID)
	if err != nil {
		return "", err
	}
	newPassword, err = generatePassword()
	if err != nil {
		return "", err
	}
	if err := client.Reinstall(ctx, ref, templateID, newPassword); err != nil {
		return "", err
	}
	return newPassword, uc.updatePassword(ctx, orderID, newPassword)
}

func (uc *ActionUseCase) Status(ctx context.Context, orderID int64) (*provider.Status, error) {
	client, ref, err := uc.resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return client.GetStatus(ctx, ref)
}

func (uc *ActionUseCase) updatePassword(ctx context.Context, orderID int64, newPassword string) error {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		// The provider already accepted the new password; losing the order
		// here must be loud, or the stored credential silently goes stale.
		return fmt.Errorf("order %d not found while recording new password", orderID)
	}
	o.Password = newPassword
	return uc.orders.Save(ctx, o)
}
