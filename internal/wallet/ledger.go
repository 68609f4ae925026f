package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
)

var ErrResellerNotFound = errors.New("reseller not found")

// InsufficientBalanceError aborts a deduction when the available balance
// (balance + credit limit) cannot cover the amount. Amounts are in paise.
type InsufficientBalanceError struct {
	Available int64
	Required  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient wallet balance. Available: %s, Required: %s",
		FormatINR(e.Available), FormatINR(e.Required))
}

// Ledger owns all wallet mutations. The transactional Deduct is the single
// source of truth for spending; HasSufficientBalance is a UI-grade
// pre-check only.
type Ledger struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *zap.Logger
}

func NewLedger(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, cfg: cfg, logger: logger.Named("wallet.ledger")}
}

// Deduct atomically debits a reseller's wallet and appends a ledger row.
// Available balance is balance + credit limit; a shortfall aborts the
// whole transaction with an InsufficientBalanceError carrying both values.
// The low-balance alert runs after commit and never rolls the debit back.
func (l *Ledger) Deduct(ctx context.Context, resellerID, amount, orderID int64, description string) error {
	if amount <= 0 {
		return fmt.Errorf("deduct amount must be positive, got %d", amount)
	}

	var newBalance, minBalance int64
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update: the guard rides inside the UPDATE so two
		// concurrent debits cannot both pass a stale read.
		res := tx.Model(&Reseller{}).
			Where("id = ? AND balance + credit_limit >= ?", resellerID, amount).
			Updates(map[string]any{
				"balance":      gorm.Expr("balance - ?", amount),
				"total_spent":  gorm.Expr("total_spent + ?", amount),
				"total_orders": gorm.Expr("total_orders + 1"),
				"updated_at":   time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Distinguish a missing reseller from a shortfall.
			var reseller Reseller
			if err := tx.Where("id = ?", resellerID).First(&reseller).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrResellerNotFound
				}
				return err
			}
			return &InsufficientBalanceError{
				Available: reseller.Balance + reseller.CreditLimit,
				Required:  amount,
			}
		}

		var reseller Reseller
		if err := tx.Where("id = ?", resellerID).First(&reseller).Error; err != nil {
			return err
		}
		newBalance = reseller.Balance
		minBalance = reseller.MinBalance

		return tx.Create(&WalletTransaction{
			ResellerID:      resellerID,
			OrderID:         orderID,
			Type:            TxnDebit,
			Amount:          amount,
			PreviousBalance: newBalance + amount,
			NewBalance:      newBalance,
			Description:     description,
			CreatedAt:       time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return err
	}

	l.alertIfLow(resellerID, newBalance, minBalance)
	return nil
}

// Recharge atomically credits a reseller's wallet and appends a ledger row.
func (l *Ledger) Recharge(ctx context.Context, resellerID, amount int64, description string) error {
	if amount <= 0 {
		return fmt.Errorf("recharge amount must be positive, got %d", amount)
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Reseller{}).
			Where("id = ?", resellerID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", amount),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResellerNotFound
		}

		var reseller Reseller
		if err := tx.Where("id = ?", resellerID).First(&reseller).Error; err != nil {
			return err
		}

		return tx.Create(&WalletTransaction{
			ResellerID:      resellerID,
			Type:            TxnCredit,
			Amount:          amount,
			PreviousBalance: reseller.Balance - amount,
			NewBalance:      reseller.Balance,
			Description:     description,
			CreatedAt:       time.Now().UTC(),
		}).Error
	})
}

// HasSufficientBalance is a fast, non-transactional pre-check for request
// validation. It can go stale immediately; Deduct is authoritative.
func (l *Ledger) HasSufficientBalance(ctx context.Context, resellerID, amount int64) (bool, error) {
	var reseller Reseller
	if err := l.db.WithContext(ctx).Where("id = ?", resellerID).First(&reseller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrResellerNotFound
		}
		return false, err
	}
	return reseller.Balance+reseller.CreditLimit >= amount, nil
}

// Balance returns the current wallet row.
func (l *Ledger) Balance(ctx context.Context, resellerID int64) (*Reseller, error) {
	var reseller Reseller
	if err := l.db.WithContext(ctx).Where("id = ?", resellerID).First(&reseller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResellerNotFound
		}
		return nil, err
	}
	return &reseller, nil
}

// Transactions lists recent ledger rows for a reseller, newest first.
func (l *Ledger) Transactions(ctx context.Context, resellerID int64, limit int) ([]WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var txns []WalletTransaction
	err := l.db.WithContext(ctx).
		Where("reseller_id = ?", resellerID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

// alertIfLow warns when a debit drops the balance under the reseller's
// own threshold, falling back to the global one.
func (l *Ledger) alertIfLow(resellerID, newBalance, minBalance int64) {
	threshold := l.cfg.WalletMinBalance
	if minBalance > 0 {
		threshold = minBalance
	}
	if threshold <= 0 {
		return
	}
	if newBalance < threshold {
		l.logger.Warn("wallet balance below minimum",
			zap.Int64("reseller_id", resellerID),
			zap.String("balance", FormatINR(newBalance)),
			zap.String("minimum", FormatINR(threshold)),
		)
	}
}
