package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

// OpenSQLite opens (or creates) the cache database and applies PRAGMAs
// suitable for concurrent webhook workers.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if the parent directory does not exist (instead of the
	// sqlite "out of memory (14)" error on some platforms).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.AutoMigrate(&domain.CacheEntry{}); err != nil {
		return nil, err
	}

	return db, nil
}

// SQLite is a Store backed by a single cache_entries table. Each operation
// is one statement, so per-key atomicity comes from SQLite itself.
type SQLite struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLite wraps an opened database in a Store.
func NewSQLite(db *gorm.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

// Get implements Store. Expired rows are treated as absent and deleted in
// passing so the table stays bounded.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var rec domain.CacheEntry
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now().UTC()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Reap the dead row if one exists; best effort.
		s.db.WithContext(ctx).
			Where("key = ? AND expires_at <= ?", key, s.now().UTC()).
			Delete(&domain.CacheEntry{})
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

// Set implements Store via an upsert on the primary key.
func (s *SQLite) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	rec := domain.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: s.now().UTC().Add(ttl),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&domain.CacheEntry{}).Error
}
