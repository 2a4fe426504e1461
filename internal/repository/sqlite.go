package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/pkg/logger"
)

// SqliteDB is the local history cache. It only ever stores resolved
// (drawn) lotteries, which are immutable on chain, so records are
// written once and never updated.
type SqliteDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

// NewSqliteDB opens (or creates) the cache database at path. Use
// ":memory:" for an ephemeral cache.
func NewSqliteDB(path string, appLogger *logger.Logger) (models.HistoryRepository, error) {
	gl := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true, // cache misses are expected
		},
	)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("failed to open history cache at %s: %w", path, err)
	}

	if err := db.AutoMigrate(&models.HistoryRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate history cache: %w", err)
	}
	appLogger.Infow("history cache opened", "path", path)
	return &SqliteDB{Conn: db, logger: appLogger}, nil
}

func (db *SqliteDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// GetRecord returns the cached record for the lottery id, or (nil, nil)
// on a cache miss.
func (db *SqliteDB) GetRecord(lotteryID uint32) (*models.HistoryRecord, error) {
	var record models.HistoryRecord
	if err := db.Conn.Where("lottery_id = ?", lotteryID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history record %d: %w", lotteryID, err)
	}
	return &record, nil
}

// SaveRecord stores a resolved lottery. Saving the same id again is a
// no-op (the record cannot have changed).
func (db *SqliteDB) SaveRecord(record *models.HistoryRecord) error {
	existing, err := db.GetRecord(record.LotteryID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if err := db.Conn.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store history record %d: %w", record.LotteryID, err)
	}
	return nil
}
