package provider

import (
	"context"
	"errors"
)

// ErrUnsupported marks a lifecycle operation the provider's panel does not
// expose. Callers should surface it as a client error, not retry it.
var ErrUnsupported = errors.New("operation not supported by provider")

// Name identifies a hosting provider back-end.
type Name string

const (
	Hostycare   Name = "hostycare"
	SmartVPS    Name = "smartvps"
	Virtualizor Name = "virtualizor"
)

// ProvisionSpec carries everything a provider needs to create a VM.
type ProvisionSpec struct {
	ProductID string
	Hostname  string
	Username  string
	Password  string
	// TemplateID selects the OS image where the provider supports it.
	TemplateID string
}

// ProvisionResult is the immediate outcome of a provision call. IP may be
// empty when the provider assigns addresses asynchronously.
type ProvisionResult struct {
	ServiceID string
	IP        string
}

// Template is an OS template/image offered by a provider.
type Template struct {
	ID   string
	Name string
}

// State is the coarse lifecycle state of a remote VM.
type State string

const (
	StateRunning State = "running"
	StateStopped State = "stopped"
	StatePending State = "pending"
	StateUnknown State = "unknown"
)

// Status is a point-in-time view of a remote VM.
type Status struct {
	State State
	IP    string
}

// Client is the common lifecycle operation set every provider adapter
// implements. The ref argument is provider-specific: a service id for
// Hostycare, an IP address for SmartVPS, a vpsid for Virtualizor. Callers
// must track which kind of reference an order holds.
type Client interface {
	Name() Name
	Provision(ctx context.Context, spec ProvisionSpec) (*ProvisionResult, error)
	Start(ctx context.Context, ref string) error
	Stop(ctx context.Context, ref string) error
	Reboot(ctx context.Context, ref string) error
	ChangePassword(ctx context.Context, ref, newPassword string) error
	ListTemplates(ctx context.Context, ref string) ([]Template, error)
	Reinstall(ctx context.Context, ref, templateID, newPassword string) error
	GetStatus(ctx context.Context, ref string) (*Status, error)
}

// Renewer is implemented by providers whose panel exposes a renewal call.
// Renewal for other providers is a wallet/expiry operation only.
type Renewer interface {
	Renew(ctx context.Context, ref string, months int) error
}

// Resolver is implemented by providers that address VMs by an internal id
// which must first be resolved from an IP or hostname. A (nil, nil) style
// empty-ref return marks a resolution miss, which is a normal outcome.
type Resolver interface {
	ResolveRef(ctx context.Context, ip, hostname string) (ref string, found bool, err error)
}
