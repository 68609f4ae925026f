package audit

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sulphurninja/oceanlinux-sub001/pkg/snowflake"
)

// Record is the in-memory form of one finished renewal audit trail.
type Record struct {
	OrderID    int64
	ResellerID int64

	Entries  []Entry
	Payment  *PaymentInfo
	Provider *ProviderResult

	Success      bool
	NewExpiry    *time.Time
	ErrorMessage string
	ErrorStack   string

	StartedAt  time.Time
	FinishedAt time.Time
	DurationMS int64
}

// Store persists finished audit records.
type Store interface {
	Save(ctx context.Context, record *Record) error
}

// RenewalAuditModel is the database DTO. The trail and structured blobs
// are stored as JSON columns; records are write-once.
type RenewalAuditModel struct {
	ID         int64 `gorm:"primaryKey"`
	OrderID    int64 `gorm:"index;not null"`
	ResellerID int64 `gorm:"index"`

	Entries  datatypes.JSON `gorm:"type:jsonb"`
	Payment  datatypes.JSON `gorm:"type:jsonb"`
	Provider datatypes.JSON `gorm:"type:jsonb"`

	Success      bool
	NewExpiry    *time.Time
	ErrorMessage string `gorm:"type:text"`
	ErrorStack   string `gorm:"type:text"`

	StartedAt  time.Time
	FinishedAt time.Time
	DurationMS int64

	CreatedAt time.Time
}

// TableName sets the table name for GORM.
func (RenewalAuditModel) TableName() string {
	return "renewal_audits"
}

// GormStore persists audit records to the database. Record ids come from
// the snowflake node so they stay unique across service replicas.
type GormStore struct {
	db  *gorm.DB
	ids *snowflake.Node
}

func NewGormStore(db *gorm.DB, ids *snowflake.Node) *GormStore {
	return &GormStore{db: db, ids: ids}
}

func (s *GormStore) Save(ctx context.Context, record *Record) error {
	model := RenewalAuditModel{
		ID:           s.ids.GenerateID(),
		OrderID:      record.OrderID,
		ResellerID:   record.ResellerID,
		Success:      record.Success,
		NewExpiry:    record.NewExpiry,
		ErrorMessage: record.ErrorMessage,
		ErrorStack:   record.ErrorStack,
		StartedAt:    record.StartedAt,
		FinishedAt:   record.FinishedAt,
		DurationMS:   record.DurationMS,
	}

	var err error
	if model.Entries, err = marshalJSON(record.Entries); err != nil {
		return err
	}
	if record.Payment != nil {
		if model.Payment, err = marshalJSON(record.Payment); err != nil {
			return err
		}
	}
	if record.Provider != nil {
		if model.Provider, err = marshalJSON(record.Provider); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Create(&model).Error
}

// ListByOrder returns the audit history for one order, newest first.
func (s *GormStore) ListByOrder(ctx context.Context, orderID int64, limit int) ([]RenewalAuditModel, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []RenewalAuditModel
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func marshalJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
