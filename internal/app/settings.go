package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/smartstore/smartstore/internal/domain"
)

// settingSchema describes one runtime setting row seeded into sys_config.
type settingSchema struct {
	Key         string
	Default     string
	Description string
}

var settingSchemas = []settingSchema{
	{"cart.draft_ttl_hours", "24", "Draft cart lifetime in hours"},
	{"stock.low_threshold", "5", "Stock level that triggers a low-stock warning"},
	{"audit.retention_days", "365", "Days to keep staff operation logs"},
	{"web.page_size", "20", "Default page size for list endpoints"},
}

// SettingsManager reads runtime settings from the sys_config table with a
// short-lived cache.
type SettingsManager struct {
	db *gorm.DB

	mu     sync.Mutex
	cache  map[string]string
	loaded time.Time
	maxAge time.Duration
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, maxAge: 30 * time.Second}
}

func (m *SettingsManager) value(category, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil || time.Since(m.loaded) > m.maxAge {
		var rows []domain.SysConfig
		if err := m.db.Find(&rows).Error; err == nil {
			m.cache = make(map[string]string, len(rows))
			for _, r := range rows {
				m.cache[r.Type+"."+r.Name] = r.Value
			}
			m.loaded = time.Now()
		}
	}
	return m.cache[category+"."+name]
}

func (m *SettingsManager) GetString(category, name string) string {
	return m.value(category, name)
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.value(category, name))
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.value(category, name))
}

// Invalidate drops the cache so the next read hits the database.
func (m *SettingsManager) Invalidate() {
	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()
}
