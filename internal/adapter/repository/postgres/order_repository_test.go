package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sulphurninja/oceanlinux-sub001/internal/adapter/repository/postgres"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/testhelper"
)

func newRepo(t *testing.T) *postgres.OrderRepository {
	t.Helper()
	db := testhelper.OpenSQLite(t, &postgres.OrderModel{})
	return postgres.NewOrderRepository(db)
}

func TestOrderRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	o := &order.Order{
		ID:          1,
		ResellerID:  7,
		Provider:    provider.Hostycare,
		ProductName: "Ocean Linux",
		MemoryTier:  "4gb",
		Price:       50000,
		Status:      order.StatusPending,
	}
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, provider.Hostycare, found.Provider)
	assert.Equal(t, int64(50000), found.Price)
	assert.Equal(t, order.StatusPending, found.Status)
}

func TestOrderRepository_FindMissingIsNilNil(t *testing.T) {
	repo := newRepo(t)

	found, err := repo.FindByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestOrderRepository_UpdateIPAddress(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	o := &order.Order{ID: 1, Provider: provider.SmartVPS, IPAddress: order.PendingIP, Status: order.StatusActive}
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, repo.UpdateIPAddress(ctx, 1, "203.0.113.9"))

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", found.IPAddress)
}

func TestOrderRepository_ListExpiringBefore(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	soon := time.Now().UTC().AddDate(0, 0, 3)
	later := time.Now().UTC().AddDate(0, 0, 45)
	require.NoError(t, repo.Save(ctx, &order.Order{ID: 1, Status: order.StatusActive, ExpiryDate: &soon}))
	require.NoError(t, repo.Save(ctx, &order.Order{ID: 2, Status: order.StatusActive, ExpiryDate: &later}))
	require.NoError(t, repo.Save(ctx, &order.Order{ID: 3, Status: order.StatusFailed, ExpiryDate: &soon}))

	expiring, err := repo.ListExpiringBefore(ctx, time.Now().UTC().AddDate(0, 0, 7), 10)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, int64(1), expiring[0].ID)
}
