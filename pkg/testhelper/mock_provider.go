package testhelper

import (
	"context"
	"fmt"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
)

// MockProviderClient is a mock implementation of provider.Client for testing
type MockProviderClient struct {
	ProviderName provider.Name

	ProvisionCalls []provider.ProvisionSpec
	ActionCalls    []string
	ShouldFail     bool
	FailWith       error

	// ProvisionResult is returned on success; zero value yields a result
	// with a service id but no IP (async-address providers).
	ProvisionResult provider.ProvisionResult
	StatusResult    provider.Status
}

func (m *MockProviderClient) fail(op string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	return fmt.Errorf("mock provider: %s failed", op)
}

func (m *MockProviderClient) Name() provider.Name {
	if m.ProviderName == "" {
		return provider.Hostycare
	}
	return m.ProviderName
}

// Provision mocks the Provision method
func (m *MockProviderClient) Provision(ctx context.Context, spec provider.ProvisionSpec) (*provider.ProvisionResult, error) {
	if m.ShouldFail {
		return nil, m.fail("provision")
	}
	m.ProvisionCalls = append(m.ProvisionCalls, spec)
	result := m.ProvisionResult
	if result.ServiceID == "" {
		result.ServiceID = "svc-1001"
	}
	return &result, nil
}

func (m *MockProviderClient) Start(ctx context.Context, ref string) error {
	return m.record("start", ref)
}

func (m *MockProviderClient) Stop(ctx context.Context, ref string) error {
	return m.record("stop", ref)
}

func (m *MockProviderClient) Reboot(ctx context.Context, ref string) error {
	return m.record("reboot", ref)
}

func (m *MockProviderClient) ChangePassword(ctx context.Context, ref, newPassword string) error {
	return m.record("changepassword", ref)
}

func (m *MockProviderClient) ListTemplates(ctx context.Context, ref string) ([]provider.Template, error) {
	if m.ShouldFail {
		return nil, m.fail("listtemplates")
	}
	return []provider.Template{{ID: "101", Name: "Ubuntu 22.04"}}, nil
}

func (m *MockProviderClient) Reinstall(ctx context.Context, ref, templateID, newPassword string) error {
	return m.record("reinstall", ref)
}

func (m *MockProviderClient) GetStatus(ctx context.Context, ref string) (*provider.Status, error) {
	if m.ShouldFail {
		return nil, m.fail("getstatus")
	}
	status := m.StatusResult
	if status.State == "" {
		status.State = provider.StateRunning
	}
	return &status, nil
}

func (m *MockProviderClient) record(op, ref string) error {
	if m.ShouldFail {
		return m.fail(op)
	}
	m.ActionCalls = append(m.ActionCalls, op+":"+ref)
	return nil
}

// MockRenewer adds a renewal hook on top of the mock client.
type MockRenewer struct {
	MockProviderClient
	RenewCalls []string
}

func (m *MockRenewer) Renew(ctx context.Context, ref string, months int) error {
	if m.ShouldFail {
		return m.fail("renew")
	}
	m.RenewCalls = append(m.RenewCalls, fmt.Sprintf("%s:%d", ref, months))
	return nil
}
