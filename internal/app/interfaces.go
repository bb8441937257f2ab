package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/smartstore/smartstore/config"
	"github.com/smartstore/smartstore/internal/cart"
	"github.com/smartstore/smartstore/internal/checkout"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider

	// Drafts is the per-user draft cart store
	Drafts() cart.Store
	// Checkout is the checkout engine
	Checkout() *checkout.Service

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
