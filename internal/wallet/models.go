package wallet

import "time"

// Reseller holds the wallet state for one reseller. All amounts are in
// paise; rendering to rupees happens only at the formatting edge.
type Reseller struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(255)"`
	Balance     int64  `gorm:"not null;default:0"`
	CreditLimit int64  `gorm:"not null;default:0"`
	// MinBalance overrides the global alert threshold when > 0.
	MinBalance  int64 `gorm:"not null;default:0"`
	TotalSpent  int64 `gorm:"not null;default:0"`
	TotalOrders int64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName sets the table name for GORM.
func (Reseller) TableName() string {
	return "resellers"
}

// Transaction type constants.
const (
	TxnDebit  = "debit"
	TxnCredit = "credit"
)

// WalletTransaction is one append-only ledger row. Rows are never updated
// or deleted; balances derive from the reseller row, the ledger is the
// audit trail.
type WalletTransaction struct {
	ID              int64  `gorm:"primaryKey"`
	ResellerID      int64  `gorm:"index;not null"`
	OrderID         int64  `gorm:"index"`
	Type            string `gorm:"type:varchar(20);not null"`
	Amount          int64  `gorm:"not null"`
	PreviousBalance int64  `gorm:"not null"`
	NewBalance      int64  `gorm:"not null"`
	Description     string `gorm:"type:text"`
	CreatedAt       time.Time
}

// TableName sets the table name for GORM.
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
