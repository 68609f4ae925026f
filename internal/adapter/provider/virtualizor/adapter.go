package virtualizor

import (
	"context"
	"fmt"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/virtualizor"
)

// Adapter exposes one-or-more Virtualizor panel accounts through the common
// provider contract. The ref argument is a vpsid; orders that only know an
// IP or hostname resolve the vpsid first via ResolveRef.
type Adapter struct {
	client *virtualizor.Client
}

func New(client *virtualizor.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() provider.Name { return provider.Virtualizor }

// Provision is not exposed: Virtualizor-backed VMs are created out of band
// on the panels and only managed here.
func (a *Adapter) Provision(ctx context.Context, spec provider.ProvisionSpec) (*provider.ProvisionResult, error) {
	return nil, fmt.Errorf("virtualizor: provision: %w", provider.ErrUnsupported)
}

func (a *Adapter) Start(ctx context.Context, ref string) error {
	return a.client.Start(ctx, ref)
}

func (a *Adapter) Stop(ctx context.Context, ref string) error {
	return a.client.Stop(ctx, ref)
}

func (a *Adapter) Reboot(ctx context.Context, ref string) error {
	return a.client.Restart(ctx, ref)
}

// ChangePassword on a panel VM requires a rebuild; use Reinstall instead.
func (a *Adapter) ChangePassword(ctx context.Context, ref, newPassword string) error {
	return fmt.Errorf("virtualizor: change password: %w", provider.ErrUnsupported)
}

func (a *Adapter) ListTemplates(ctx context.Context, ref string) ([]provider.Template, error) {
	templates, err := a.client.Templates(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := make([]provider.Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, provider.Template{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (a *Adapter) Reinstall(ctx context.Context, ref, templateID, newPassword string) error {
	return a.client.Reinstall(ctx, ref, templateID, newPassword)
}

func (a *Adapter) GetStatus(ctx context.Context, ref string) (*provider.Status, error) {
	vm, err := a.client.StatusOf(ctx, ref)
	if err != nil {
		return nil, err
	}
	if vm == nil {
		return &provider.Status{State: provider.StateUnknown}, nil
	}
	state := provider.StateStopped
	if vm.Running {
		state = provider.StateRunning
	}
	status := &provider.Status{State: state}
	if ips := vm.IPList(); len(ips) > 0 {
		status.IP = ips[0]
	}
	return status, nil
}

// ResolveRef maps an IP and/or hostname to the owning vpsid. A miss is a
// normal outcome, reported as found=false with no error.
func (a *Adapter) ResolveRef(ctx context.Context, ip, hostname string) (string, bool, error) {
	match, err := a.client.FindVpsID(ctx, ip, hostname)
	if err != nil {
		return "", false, err
	}
	if match == nil {
		return "", false, nil
	}
	return match.VpsID, true, nil
}
