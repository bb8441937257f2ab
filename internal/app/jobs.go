package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/smartstore/smartstore/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@hourly", func() {
		if n := a.drafts.Purge(); n > 0 {
			zap.L().Info("purged expired draft carts", zap.Int("count", n))
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		days := a.GetSettingsInt64Value("audit", "retention_days")
		if days <= 0 {
			days = 365
		}
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*time.Duration(days))).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 10m", func() {
		a.scanLowStock()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// scanLowStock logs products at or below the configured low-stock threshold
// so the back office can restock before checkouts start failing.
func (a *Application) scanLowStock() {
	threshold := a.GetSettingsInt64Value("stock", "low_threshold")
	if threshold <= 0 {
		threshold = 5
	}

	var products []domain.Product
	if err := a.gormDB.Where("stock <= ?", threshold).Find(&products).Error; err != nil {
		zap.L().Error("low stock scan failed", zap.Error(err))
		return
	}
	for _, p := range products {
		zap.L().Warn("low stock",
			zap.Int64("product_id", p.ID),
			zap.String("sku", p.Sku),
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock))
	}
}
