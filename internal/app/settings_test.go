package app

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smartstore/smartstore/internal/domain"
)

func settingsDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "settings.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.SysConfig{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSettingsManager(t *testing.T) {
	db := settingsDB(t)
	db.Create(&domain.SysConfig{ID: 1, Type: "stock", Name: "low_threshold", Value: "7"})
	db.Create(&domain.SysConfig{ID: 2, Type: "cart", Name: "draft_ttl_hours", Value: "12"})

	m := NewSettingsManager(db)
	if got := m.GetInt64("stock", "low_threshold"); got != 7 {
		t.Errorf("GetInt64 = %d, want 7", got)
	}
	if got := m.GetString("cart", "draft_ttl_hours"); got != "12" {
		t.Errorf("GetString = %q, want 12", got)
	}
	if got := m.GetInt64("stock", "missing"); got != 0 {
		t.Errorf("missing key = %d, want 0", got)
	}

	// updates are visible after invalidation
	db.Model(&domain.SysConfig{}).Where("id = ?", 1).Update("value", "9")
	m.Invalidate()
	if got := m.GetInt64("stock", "low_threshold"); got != 9 {
		t.Errorf("GetInt64 after update = %d, want 9", got)
	}
}
