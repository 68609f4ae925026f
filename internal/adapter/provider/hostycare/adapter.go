package hostycare

import (
	"context"
	"strings"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/hostycare"
)

// Adapter exposes a Hostycare reseller account through the common provider
// contract. The ref argument is the Hostycare service id.
type Adapter struct {
	client *hostycare.Client
}

func New(client *hostycare.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() provider.Name { return provider.Hostycare }

func (a *Adapter) Provision(ctx context.Context, spec provider.ProvisionSpec) (*provider.ProvisionResult, error) {
	params := map[string]string{
		"hostname": spec.Hostname,
		"username": spec.Username,
		"password": spec.Password,
	}
	if spec.TemplateID != "" {
		params["osid"] = spec.TemplateID
	}
	serviceID, ip, err := a.client.CreateService(ctx, spec.ProductID, params)
	if err != nil {
		return nil, err
	}
	return &provider.ProvisionResult{ServiceID: serviceID, IP: ip}, nil
}

func (a *Adapter) Start(ctx context.Context, ref string) error {
	return a.client.Start(ctx, ref)
}

func (a *Adapter) Stop(ctx context.Context, ref string) error {
	return a.client.Stop(ctx, ref)
}

func (a *Adapter) Reboot(ctx context.Context, ref string) error {
	return a.client.Reboot(ctx, ref)
}

func (a *Adapter) ChangePassword(ctx context.Context, ref, newPassword string) error {
	return a.client.ChangePassword(ctx, ref, newPassword)
}

func (a *Adapter) ListTemplates(ctx context.Context, ref string) ([]provider.Template, error) {
	templates, err := a.client.Templates(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := make([]provider.Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, provider.Template{ID: t.ID.String(), Name: t.Name})
	}
	return out, nil
}

func (a *Adapter) Reinstall(ctx context.Context, ref, templateID, newPassword string) error {
	return a.client.Reinstall(ctx, ref, templateID, newPassword)
}

func (a *Adapter) GetStatus(ctx context.Context, ref string) (*provider.Status, error) {
	svc, err := a.client.GetService(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &provider.Status{State: mapState(svc.Status), IP: svc.DedicatedIP}, nil
}

// Suspend pauses the service on the panel without releasing it.
func (a *Adapter) Suspend(ctx context.Context, ref string) error {
	return a.client.Suspend(ctx, ref)
}

// Unsuspend resumes a suspended service.
func (a *Adapter) Unsuspend(ctx context.Context, ref string) error {
	return a.client.Unsuspend(ctx, ref)
}

// Terminate releases the service permanently.
func (a *Adapter) Terminate(ctx context.Context, ref string) error {
	return a.client.Terminate(ctx, ref)
}

func mapState(raw string) provider.State {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "running", "online":
		return provider.StateRunning
	case "suspended", "terminated", "cancelled", "stopped", "offline":
		return provider.StateStopped
	case "pending":
		return provider.StatePending
	default:
		return provider.StateUnknown
	}
}
