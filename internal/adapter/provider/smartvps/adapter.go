package smartvps

import (
	"context"
	"fmt"
	"strings"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/smartvps"
)

// Adapter exposes SmartVPS through the common provider contract. SmartVPS
// addresses machines by IP, so ref is always the VM's address.
type Adapter struct {
	client *smartvps.Client
}

func New(client *smartvps.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() provider.Name { return provider.SmartVPS }

func (a *Adapter) Provision(ctx context.Context, spec provider.ProvisionSpec) (*provider.ProvisionResult, error) {
	result, err := a.client.BuyVPS(ctx, smartvps.BuyRequest{
		Pool:     spec.ProductID,
		Hostname: spec.Hostname,
		Password: spec.Password,
		OS:       spec.TemplateID,
	})
	if err != nil {
		return nil, err
	}
	// The IP doubles as the service id; it may lag the purchase.
	return &provider.ProvisionResult{ServiceID: result.IP, IP: result.IP}, nil
}

func (a *Adapter) Start(ctx context.Context, ref string) error {
	return a.client.Start(ctx, ref)
}

func (a *Adapter) Stop(ctx context.Context, ref string) error {
	return a.client.Stop(ctx, ref)
}

// Reboot is emulated: the provider exposes no single restart call.
func (a *Adapter) Reboot(ctx context.Context, ref string) error {
	if err := a.client.Stop(ctx, ref); err != nil {
		return err
	}
	return a.client.Start(ctx, ref)
}

func (a *Adapter) ChangePassword(ctx context.Context, ref, newPassword string) error {
	return fmt.Errorf("smartvps: change password: %w", provider.ErrUnsupported)
}

func (a *Adapter) ListTemplates(ctx context.Context, ref string) ([]provider.Template, error) {
	return nil, fmt.Errorf("smartvps: list templates: %w", provider.ErrUnsupported)
}

// Reinstall rebuilds the VM. With a template it switches OS; without one it
// formats in place with the current OS. The provider keeps its own root
// password on rebuild, so newPassword is not forwarded.
func (a *Adapter) Reinstall(ctx context.Context, ref, templateID, _ string) error {
	if templateID != "" {
		return a.client.ChangeOS(ctx, ref, templateID)
	}
	return a.client.Format(ctx, ref)
}

func (a *Adapter) GetStatus(ctx context.Context, ref string) (*provider.Status, error) {
	status, err := a.client.Status(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &provider.Status{State: mapState(status.Status), IP: status.IP}, nil
}

// Renew extends the VM on the provider side. The panel renews a fixed
// period per call, so months maps to repeated calls.
func (a *Adapter) Renew(ctx context.Context, ref string, months int) error {
	if months < 1 {
		months = 1
	}
	for i := 0; i < months; i++ {
		if err := a.client.RenewVPS(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

func mapState(raw string) provider.State {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "running", "online", "active", "up":
		return provider.StateRunning
	case "stopped", "offline", "down", "suspended":
		return provider.StateStopped
	case "pending", "installing", "provisioning":
		return provider.StatePending
	default:
		return provider.StateUnknown
	}
}
