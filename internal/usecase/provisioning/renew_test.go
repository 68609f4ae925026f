package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/internal/audit"
	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/testhelper"
)

type memAuditStore struct {
	records []*audit.Record
	err     error
}

func (s *memAuditStore) Save(ctx context.Context, record *audit.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func seedActiveOrder(t *testing.T, repo *testhelper.MockOrderRepository) *order.Order {
	t.Helper()
	expiry := time.Now().UTC().AddDate(0, 0, 10)
	o := &order.Order{
		ID:                1,
		ResellerID:        7,
		Provider:          provider.SmartVPS,
		ProductName:       "Ocean Linux",
		Price:             50000,
		Status:            order.StatusActive,
		SmartVPSServiceID: "203.0.113.9",
		IPAddress:         "203.0.113.9",
		ExpiryDate:        &expiry,
	}
	require.NoError(t, repo.Save(context.Background(), o))
	return o
}

func newRenewUseCase(repo *testhelper.MockOrderRepository, client provider.Client, ledger *mockLedger, store audit.Store) *RenewUseCase {
	return NewRenewUseCase(
		repo,
		map[provider.Name]provider.Client{client.Name(): client},
		ledger,
		store,
		&config.Config{RenewalPeriodDays: 30},
		zap.NewNop(),
	)
}

func TestRenew_Success(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	original := seedActiveOrder(t, repo)
	client := &testhelper.MockRenewer{MockProviderClient: testhelper.MockProviderClient{ProviderName: provider.SmartVPS}}
	ledger := &mockLedger{}
	store := &memAuditStore{}

	require.NoError(t, newRenewUseCase(repo, client, ledger, store).Execute(context.Background(), 1, 2))

	assert.Equal(t, []int64{100000}, ledger.deducts)
	assert.Equal(t, []string{"203.0.113.9:2"}, client.RenewCalls)

	o, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, o.ExpiryDate)
	// 2 months = 60 days past the previous expiry.
	assert.WithinDuration(t, original.ExpiryDate.AddDate(0, 0, 60), *o.ExpiryDate, time.Minute)

	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.True(t, record.Success)
	require.NotNil(t, record.Payment)
	assert.Equal(t, int64(100000), record.Payment.Amount)
	require.NotNil(t, record.Provider)
	assert.True(t, record.Provider.Success)
}

func TestRenew_DeductFailureShortCircuits(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	seedActiveOrder(t, repo)
	client := &testhelper.MockRenewer{MockProviderClient: testhelper.MockProviderClient{ProviderName: provider.SmartVPS}}
	ledger := &mockLedger{failDeduct: errors.New("Insufficient wallet balance. Available: ₹400, Required: ₹500")}
	store := &memAuditStore{}

	err := newRenewUseCase(repo, client, ledger, store).Execute(context.Background(), 1, 1)
	require.Error(t, err)

	assert.Empty(t, client.RenewCalls)
	require.Len(t, store.records, 1)
	assert.False(t, store.records[0].Success)
	assert.Contains(t, store.records[0].ErrorMessage, "Insufficient wallet balance")
}

func TestRenew_ProviderFailureRefunds(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	original := seedActiveOrder(t, repo)
	client := &testhelper.MockRenewer{MockProviderClient: testhelper.MockProviderClient{ProviderName: provider.SmartVPS, ShouldFail: true}}
	ledger := &mockLedger{}
	store := &memAuditStore{}

	err := newRenewUseCase(repo, client, ledger, store).Execute(context.Background(), 1, 1)
	require.Error(t, err)

	assert.Equal(t, []int64{50000}, ledger.deducts)
	assert.Equal(t, []int64{50000}, ledger.recharges)

	// Expiry untouched on failure.
	o, ferr := repo.FindByID(context.Background(), 1)
	require.NoError(t, ferr)
	assert.WithinDuration(t, *original.ExpiryDate, *o.ExpiryDate, time.Second)

	require.Len(t, store.records, 1)
	assert.False(t, store.records[0].Success)
	require.NotNil(t, store.records[0].Provider)
	assert.False(t, store.records[0].Provider.Success)
}

func TestRenew_AuditStoreFailureDoesNotAbort(t *testing.T) {
	repo := testhelper.NewMockOrderRepository()
	seedActiveOrder(t, repo)
	client := &testhelper.MockRenewer{MockProviderClient: testhelper.MockProviderClient{ProviderName: provider.SmartVPS}}
	ledger := &mockLedger{}
	store := &memAuditStore{err: errors.New("audit database unavailable")}

	// The renewal itself must still succeed.
	require.NoError(t, newRenewUseCase(repo, client, ledger, store).Execute(context.Background(), 1, 1))
	assert.Equal(t, []int64{50000}, ledger.deducts)
}
