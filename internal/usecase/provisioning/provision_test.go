package provisioning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/internal/catalog"
	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/internal/scheduler"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/testhelper"
)

// mockCatalog maps every tier to one fixed product.
type mockCatalog struct {
	mapping catalog.ProductMapping
}

func (m *mockCatalog) Resolve(ctx context.Context, name provider.Name, memoryTier string) (*catalog.ProductMapping, error) {
	mapping := m.mapping
	mapping.Provider = string(name)
	return &mapping, nil
}

func (m *mockCatalog) ResolveDefault(ctx context.Context, memoryTier string) (*catalog.ProductMapping, error) {
	mapping := m.mapping
	return &mapping, nil
}

// mockLedger records wallet movements in memory.
type mockLedger struct {
	deducts    []int64
	recharges  []int64
	failDeduct error
}

func (m *mockLedger) Deduct(ctx context.Context, resellerID, amount, orderID int64, description string) error {
	if m.failDeduct != nil {
		return m.failDeduct
	}
	m.deducts = append(m.deducts, amount)
	return nil
}

func (m *mockLedger) Recharge(ctx context.Context, resellerID, amount int64, description string) error {
	m.recharges = append(m.recharges, amount)
	return nil
}

func seedOrder(t *testing.T, repo *testhelper.MockOrderRepository) *order.Order {
	t.Helper()
	o := &order.Order{
		ID:          1,
		ResellerID:  7,
		Provider:    provider.Hostycare,
		ProductName: "Ocean Linux",
		MemoryTier:  "4 GB",
		Price:       50000,
		Status:      order.StatusPending,
	}
	require.NoError(t, repo.Save(context.Background(), o))
	return o
}

func newUseCase(repo *testhelper.MockOrderRepository, client provider.Client, ledger *mockLedger, backfillDelay int) (*ProvisionUseCase, *scheduler.Backfill) {
	backfill := scheduler.NewBackfill(zap.NewNop())
	uc := NewProvisionUseCase(
		repo,
		&mockCatalog{mapping: catalog.ProductMapping{Provider: string(provider.Hostycare), MemoryTier: "4gb", ProductID: "prod-42"}},
		map[provider.Name]provider.Client{client.Name(): client},
		ledger,
		backfill,
		&config.Config{IPBackfillDelaySeconds: backfillDelay, RenewalPeriodDays: 30},
		zap.NewNop(),
	)
	return uc, backfill
}

func TestProvision_Success(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	seedOrder(t, repo)
	client := &testhelper.MockProviderClient{
		ProvisionResult: provider.ProvisionResult{ServiceID: "svc-9", IP: "203.0.113.9"},
	}
	ledger := &mockLedger{}
	uc, backfill := newUseCase(repo, client, ledger, 30)
	defer backfill.Shutdown()

	require.NoError(t, uc.Execute(context.Background(), 1))

	o, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, order.StatusActive, o.Status)
	assert.Equal(t, order.StatusActive, o.ProvisioningStatus)
	assert.Equal(t, "svc-9", o.HostycareServiceID)
	assert.Equal(t, "203.0.113.9", o.IPAddress)
	assert.NotEmpty(t, o.Username)
	assert.NotEmpty(t, o.Password)
	assert.NotEmpty(t, o.Hostname)

	require.Len(t, client.ProvisionCalls, 1)
	assert.Equal(t, "prod-42", client.ProvisionCalls[0].ProductID)

	assert.Equal(t, []int64{50000}, ledger.deducts)
	assert.Empty(t, ledger.recharges)
	// IP arrived synchronously: no follow-up scheduled.
	assert.Equal(t, 0, backfill.Pending())
}

func TestProvision_ProviderFailureRefundsAndMarksFailed(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	seedOrder(t, repo)
	client := &testhelper.MockProviderClient{ShouldFail: true}
	ledger := &mockLedger{}
	uc, backfill := newUseCase(repo, client, ledger, 30)
	defer backfill.Shutdown()

	err := uc.Execute(context.Background(), 1)
	require.Error(t, err)

	o, ferr := repo.FindByID(context.Background(), 1)
	require.NoError(t, ferr)
	assert.Equal(t, order.StatusFailed, o.Status)
	assert.Equal(t, order.StatusFailed, o.ProvisioningStatus)
	assert.Contains(t, o.ProvisioningError, "provision failed")

	assert.Equal(t, []int64{50000}, ledger.deducts)
	assert.Equal(t, []int64{50000}, ledger.recharges)
}

func TestProvision_InsufficientBalanceAborts(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	seedOrder(t, repo)
	client := &testhelper.MockProviderClient{}
	ledger := &mockLedger{failDeduct: errors.New("Insufficient wallet balance. Available: ₹400, Required: ₹500")}
	uc, backfill := newUseCase(repo, client, ledger, 30)
	defer backfill.Shutdown()

	err := uc.Execute(context.Background(), 1)
	require.Error(t, err)

	// Nothing touched the provider, order stays pending.
	assert.Empty(t, client.ProvisionCalls)
	o, ferr := repo.FindByID(context.Background(), 1)
	require.NoError(t, ferr)
	assert.Equal(t, order.StatusPending, o.Status)
}

func TestProvision_AlreadyProvisionedIsRejected(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	o := seedOrder(t, repo)
	o.MarkActive("svc-1", "203.0.113.1", "user", "pass", "host")
	require.NoError(t, repo.Save(context.Background(), o))

	client := &testhelper.MockProviderClient{}
	ledger := &mockLedger{}
	uc, backfill := newUseCase(repo, client, ledger, 30)
	defer backfill.Shutdown()

	err := uc.Execute(context.Background(), 1)
	require.Error(t, err)
	assert.Empty(t, ledger.deducts)
	assert.Empty(t, client.ProvisionCalls)
}

func TestProvision_PendingIPBackfilled(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	seedOrder(t, repo)
	client := &testhelper.MockProviderClient{
		ProvisionResult: provider.ProvisionResult{ServiceID: "svc-9"}, // no IP yet
		StatusResult:    provider.Status{State: provider.StateRunning, IP: "203.0.113.77"},
	}
	ledger := &mockLedger{}
	uc, backfill := newUseCase(repo, client, ledger, 0) // fire immediately
	defer backfill.Shutdown()

	require.NoError(t, uc.Execute(context.Background(), 1))

	o, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, order.PendingIP, o.IPAddress)

	// The single delayed check fills the address in.
	require.Eventually(t, func() bool {
		o, _ := repo.FindByID(context.Background(), 1)
		return o.IPAddress == "203.0.113.77"
	}, time.Second, 10*time.Millisecond)
}

func TestGenerateCredentials(t *testing.T) {
	username, err := generateUsername()
	require.NoError(t, err)
	assert.Regexp(t, fmt.Sprintf(`^%s\d{4}$`, usernamePrefix), username)

	password, err := generatePassword()
	require.NoError(t, err)
	assert.Len(t, password, passwordLength)

	hostname, err := generateHostname("Ocean Linux", "4 GB")
	require.NoError(t, err)
	assert.Regexp(t, `^ocean-linux-4-gb-[0-9a-f]{4}$`, hostname)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ocean-linux", slugify("  Ocean Linux  "))
	assert.Equal(t, "8gb-nvme", slugify("8GB/NVMe!"))
	assert.Equal(t, "", slugify("!!!"))
}
