package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/order"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
)

// OrderModel is the database DTO with Gorm tags.
type OrderModel struct {
	ID         int64  `gorm:"primaryKey"`
	ResellerID int64  `gorm:"index"`
	Provider   string `gorm:"type:varchar(50)"`

	ProductName string `gorm:"type:varchar(255)"`
	MemoryTier  string `gorm:"type:varchar(50)"`
	Price       int64

	Status             string `gorm:"type:varchar(50);index"`
	ProvisioningStatus string `gorm:"type:varchar(50)"`
	ProvisioningError  string `gorm:"type:text"`

	HostycareServiceID string `gorm:"type:varchar(255)"`
	SmartVPSServiceID  string `gorm:"type:varchar(255)"`

	Hostname  string `gorm:"type:varchar(255)"`
	IPAddress string `gorm:"type:varchar(64)"`
	Username  string `gorm:"type:varchar(64)"`
	Password  string `gorm:"type:varchar(255)"`

	ExpiryDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(model), nil
}

func (r *OrderRepository) Save(ctx context.Context, entity *order.Order) error {
	model := toModel(entity)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return err
	}
	// Propagate ID back to entity if new
	entity.ID = model.ID
	return nil
}

func (r *OrderRepository) UpdateIPAddress(ctx context.Context, id int64, ip string) error {
	return r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"ip_address": ip,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListExpiringBefore returns active orders whose expiry falls before the
// cutoff, oldest first.
func (r *OrderRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time, limit int) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", string(order.StatusActive), cutoff).
		Order("expiry_date asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []OrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	items := make([]*order.Order, 0, len(models))
	for _, model := range models {
		items = append(items, toDomain(model))
	}
	return items, nil
}

// Mappers

func toDomain(m OrderModel) *order.Order {
	return &order.Order{
		ID:                 m.ID,
		ResellerID:         m.ResellerID,
		Provider:           provider.Name(m.Provider),
		ProductName:        m.ProductName,
		MemoryTier:         m.MemoryTier,
		Price:              m.Price,
		Status:             order.Status(m.Status),
		ProvisioningStatus: order.Status(m.ProvisioningStatus),
		ProvisioningError:  m.ProvisioningError,
		HostycareServiceID: m.HostycareServiceID,
		SmartVPSServiceID:  m.SmartVPSServiceID,
		Hostname:           m.Hostname,
		IPAddress:          m.IPAddress,
		Username:           m.Username,
		Password:           m.Password,
		ExpiryDate:         m.ExpiryDate,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toModel(d *order.Order) OrderModel {
	return OrderModel{
		ID:                 d.ID,
		ResellerID:         d.ResellerID,
		Provider:           string(d.Provider),
		ProductName:        d.ProductName,
		MemoryTier:         d.MemoryTier,
		Price:              d.Price,
		Status:             string(d.Status),
		ProvisioningStatus: string(d.ProvisioningStatus),
		ProvisioningError:  d.ProvisioningError,
		HostycareServiceID: d.HostycareServiceID,
		SmartVPSServiceID:  d.SmartVPSServiceID,
		Hostname:           d.Hostname,
		IPAddress:          d.IPAddress,
		Username:           d.Username,
		Password:           d.Password,
		ExpiryDate:         d.ExpiryDate,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}
