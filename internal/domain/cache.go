package domain

import "time"

// CacheEntry is the persistence model for the SQLite-backed config store.
// Entries are ephemeral: an entry whose ExpiresAt has passed is treated as
// absent and reaped lazily. Settings cache and antispam state share this
// table, keyed by their namespaced keys.
type CacheEntry struct {
	Key       string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Value     string    `gorm:"type:TEXT NOT NULL"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
	UpdatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (CacheEntry) TableName() string { return "cache_entries" }
