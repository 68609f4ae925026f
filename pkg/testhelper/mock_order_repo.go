package testhelper

import (
	"context"
	"sync"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
)

// MockOrderRepository is a simple in-memory repository for testing
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[int64]*order.Order

	IPUpdates []string
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[int64]*order.Order)}
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	clone := *o
	return &clone, nil
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *o
	m.orders[o.ID] = &clone
	return nil
}

func (m *MockOrderRepository) UpdateIPAddress(ctx context.Context, id int64, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.IPAddress = ip
	}
	m.IPUpdates = append(m.IPUpdates, ip)
	return nil
}
