// Package outbox keeps a durable local queue of ledger operations that could
// not reach the store, and replays them once connectivity returns. Entries
// carry the fully-typed operation input, including the client-chosen record
// ids, so a replay dispatches unambiguously and never double-applies.
package outbox

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpType names the consistency operation an entry replays into.
type OpType string

const (
	OpRecordDailyLog OpType = "record_daily_log"
	OpUpdateDailyLog OpType = "update_daily_log"
	OpDeleteDailyLog OpType = "delete_daily_log"
	OpRecordSale     OpType = "record_sale"
	OpUpdateSale     OpType = "update_sale"
	OpDeleteSale     OpType = "delete_sale"
	OpRecordConsume  OpType = "record_consumption"
	OpRecordExpense  OpType = "record_expense"
)

// PendingOperation is one queued ledger operation.
type PendingOperation struct {
	ID        string `gorm:"primaryKey"`
	Type      OpType `gorm:"index"`
	Payload   string
	UserID    string
	UserName  string
	UserRole  string
	Attempts  int
	LastError string
	Synced    bool `gorm:"index"`
	CreatedAt time.Time
	SyncedAt  *time.Time
}

// Queue is the sqlite-backed durable queue.
type Queue struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewQueue opens (creating if needed) the local queue database.
func NewQueue(path string, logger *zap.Logger) (*Queue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create outbox directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open outbox database: %w", err)
	}
	if err := db.AutoMigrate(&PendingOperation{}); err != nil {
		return nil, fmt.Errorf("migrate outbox schema: %w", err)
	}

	return &Queue{db: db, logger: logger}, nil
}

// Enqueue appends an operation with a locally generated entry id.
func (q *Queue) Enqueue(opType OpType, payload string, userID, userName, userRole string) (*PendingOperation, error) {
	entry := PendingOperation{
		ID:       uuid.NewString(),
		Type:     opType,
		Payload:  payload,
		UserID:   userID,
		UserName: userName,
		UserRole: userRole,
	}
	if err := q.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", opType, err)
	}
	q.logger.Info("operation queued offline", zap.String("type", string(opType)), zap.String("entry_id", entry.ID))
	return &entry, nil
}

// Pending returns unsynced entries in insertion order.
func (q *Queue) Pending() ([]PendingOperation, error) {
	var entries []PendingOperation
	err := q.db.Where("synced = ?", false).Order("created_at").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load pending entries: %w", err)
	}
	return entries, nil
}

// PendingCount reports how many entries wait for replay.
func (q *Queue) PendingCount() (int64, error) {
	var count int64
	err := q.db.Model(&PendingOperation{}).Where("synced = ?", false).Count(&count).Error
	return count, err
}

// MarkSynced flags an entry as committed remotely.
func (q *Queue) MarkSynced(id string) error {
	now := time.Now().UTC()
	return q.db.Model(&PendingOperation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "synced_at": now, "last_error": ""}).Error
}

// MarkFailed records a replay failure, leaving the entry for a later retry.
func (q *Queue) MarkFailed(id string, cause error) error {
	return q.db.Model(&PendingOperation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause.Error(),
		}).Error
}

// CleanSynced removes synced entries older than the retention window.
func (q *Queue) CleanSynced(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	return q.db.Where("synced = ? AND synced_at < ?", true, cutoff).Delete(&PendingOperation{}).Error
}

// Close releases the underlying sqlite handle.
func (q *Queue) Close() error {
	sqlDB, err := q.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
