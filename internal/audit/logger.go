package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Log levels for renewal audit entries.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelDebug   = "debug"
)

// Entry is one timestamped line in a renewal attempt's audit trail.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// PaymentInfo captures the wallet movement behind a renewal.
type PaymentInfo struct {
	ResellerID int64  `json:"reseller_id"`
	Amount     int64  `json:"amount"`
	Method     string `json:"method"`
	Reference  string `json:"reference,omitempty"`
}

// ProviderResult captures the provider API call outcome, sanitized: raw
// payloads never land in the audit trail, only summaries.
type ProviderResult struct {
	Success  bool          `json:"success"`
	Summary  string        `json:"summary,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Logger accumulates the audit trail of one renewal attempt and writes a
// single immutable record on Finalize. A Logger is single-use and not safe
// for concurrent use; each attempt gets its own.
type Logger struct {
	store  Store
	zlog   *zap.Logger
	start  time.Time
	record Record
}

// NewLogger opens an audit trail for one renewal attempt.
func NewLogger(store Store, zlog *zap.Logger, orderID, resellerID int64) *Logger {
	return &Logger{
		store: store,
		zlog:  zlog.Named("audit.renewal"),
		start: time.Now().UTC(),
		record: Record{
			OrderID:    orderID,
			ResellerID: resellerID,
			StartedAt:  time.Now().UTC(),
		},
	}
}

func (l *Logger) add(level, message string, data map[string]any) {
	l.record.Entries = append(l.record.Entries, Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Data:      data,
	})
}

func (l *Logger) Info(message string, data map[string]any)    { l.add(LevelInfo, message, data) }
func (l *Logger) Success(message string, data map[string]any) { l.add(LevelSuccess, message, data) }
func (l *Logger) Warning(message string, data map[string]any) { l.add(LevelWarning, message, data) }
func (l *Logger) Error(message string, data map[string]any)   { l.add(LevelError, message, data) }
func (l *Logger) Debug(message string, data map[string]any)   { l.add(LevelDebug, message, data) }

// SetPaymentInfo records the wallet movement behind this renewal.
func (l *Logger) SetPaymentInfo(info PaymentInfo) {
	l.record.Payment = &info
}

// SetProviderResult records the provider API call outcome.
func (l *Logger) SetProviderResult(result ProviderResult) {
	l.record.Provider = &result
}

// Finalize closes the trail and persists one immutable record. Persistence
// failures are logged and swallowed: auditing must never abort or fail the
// renewal it describes.
func (l *Logger) Finalize(ctx context.Context, success bool, newExpiry *time.Time, errorMessage, errorStack string) {
	now := time.Now().UTC()
	l.record.Success = success
	l.record.NewExpiry = newExpiry
	l.record.ErrorMessage = errorMessage
	l.record.ErrorStack = errorStack
	l.record.FinishedAt = now
	l.record.DurationMS = now.Sub(l.start).Milliseconds()

	if err := l.store.Save(ctx, &l.record); err != nil {
		l.zlog.Error("failed to persist renewal audit record",
			zap.Int64("order_id", l.record.OrderID),
			zap.Bool("success", success),
			zap.Error(err),
		)
	}
}
