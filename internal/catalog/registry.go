package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
)

// ProductMapping maps a memory tier to the provider-side product that
// fulfils it. One tier may be offered by several providers; the mapping
// flagged as default wins when the order does not pin a provider.
type ProductMapping struct {
	Provider   string `gorm:"primaryKey;type:varchar(50)"`
	MemoryTier string `gorm:"primaryKey;type:varchar(50)"`
	ProductID  string `gorm:"type:varchar(255);not null"`
	// TemplateID is the default OS image for this product, if any.
	TemplateID string `gorm:"type:varchar(255)"`
	IsDefault  bool   `gorm:"default:false"`
	Active     bool   `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName sets the table name for GORM.
func (ProductMapping) TableName() string {
	return "product_mappings"
}

// Registry resolves memory tiers to provider products.
type Registry struct {
	db *gorm.DB
}

// NewRegistry creates a new catalog registry.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Resolve returns the mapping for a tier on a specific provider.
func (r *Registry) Resolve(ctx context.Context, name provider.Name, memoryTier string) (*ProductMapping, error) {
	var mapping ProductMapping
	err := r.db.WithContext(ctx).
		Where("provider = ? AND memory_tier = ? AND active = ?", string(name), normalizeTier(memoryTier), true).
		First(&mapping).Error
	if err != nil {
		return nil, fmt.Errorf("no product mapped for %s/%s: %w", name, memoryTier, err)
	}
	return &mapping, nil
}

// ResolveDefault returns the default mapping for a tier across providers.
func (r *Registry) ResolveDefault(ctx context.Context, memoryTier string) (*ProductMapping, error) {
	var mapping ProductMapping
	err := r.db.WithContext(ctx).
		Where("memory_tier = ? AND is_default = ? AND active = ?", normalizeTier(memoryTier), true, true).
		First(&mapping).Error
	if err != nil {
		return nil, fmt.Errorf("no default product for tier %s: %w", memoryTier, err)
	}
	return &mapping, nil
}

// ListByProvider returns all active mappings for one provider.
func (r *Registry) ListByProvider(ctx context.Context, name provider.Name) ([]ProductMapping, error) {
	var mappings []ProductMapping
	err := r.db.WithContext(ctx).
		Where("provider = ? AND active = ?", string(name), true).
		Order("memory_tier asc").
		Find(&mappings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings for %s: %w", name, err)
	}
	return mappings, nil
}

// Upsert creates or replaces a mapping.
func (r *Registry) Upsert(ctx context.Context, mapping *ProductMapping) error {
	mapping.MemoryTier = normalizeTier(mapping.MemoryTier)
	mapping.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(mapping).Error
}

// normalizeTier canonicalizes tier labels ("4 GB", "4gb" -> "4gb") so
// lookups are insensitive to how the dashboard spells them.
func normalizeTier(tier string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tier), " ", ""))
}
