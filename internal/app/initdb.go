package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "smartstore"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default password", zap.Error(err))
		return
	}

	var adminType domain.StaffType
	if err := a.gormDB.Where("name = ?", string(domain.RoleAdmin)).First(&adminType).Error; err != nil {
		zap.L().Error("admin staff type missing", zap.Error(err))
		return
	}

	var staff domain.Staff
	err = a.gormDB.Where("username = ?", superUsername).First(&staff).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.Staff{
			ID:        common.UUIDint64(),
			TypeID:    adminType.ID,
			Username:  superUsername,
			Password:  string(hashed),
			Realname:  "administrator",
			Email:     "N/A",
			Mobile:    "0000",
			IsAdmin:   true,
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetStatus := !strings.EqualFold(staff.Status, common.ENABLED)
	resetAdmin := !staff.IsAdmin
	if !resetStatus && !resetAdmin {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}
	if resetAdmin {
		updates["is_admin"] = true
	}
	if err := a.gormDB.Model(&domain.Staff{}).Where("id = ?", staff.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("statusEnabled", resetStatus),
		zap.Bool("adminReset", resetAdmin))
}

func (a *Application) checkSettings() {
	for sortid, schema := range settingSchemas {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid setting key format", zap.String("key", schema.Key))
			continue
		}
		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized setting",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkStaffTypes initializes the closed role set
func (a *Application) checkStaffTypes() {
	defaultTypes := []domain.StaffType{
		{Name: string(domain.RoleAdmin), Remark: "Full access including staff management"},
		{Name: string(domain.RoleStoreManager), Remark: "Catalog and stock management"},
		{Name: string(domain.RoleStaff), Remark: "Read-only access plus cart and checkout"},
	}

	for _, st := range defaultTypes {
		var count int64
		a.gormDB.Model(&domain.StaffType{}).Where("name = ?", st.Name).Count(&count)
		if count == 0 {
			st.CreatedAt = time.Now()
			st.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&st).Error; err != nil {
				zap.L().Error("failed to create default staff type", zap.String("name", st.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default staff type", zap.String("name", st.Name))
			}
		}
	}
}

// checkCatalog seeds a demo category tree and a few products on first run
func (a *Application) checkCatalog() {
	var count int64
	a.gormDB.Model(&domain.Category{}).Count(&count)
	if count > 0 {
		return
	}

	grocery := domain.Category{Name: "grocery"}
	if err := a.gormDB.Create(&grocery).Error; err != nil {
		zap.L().Error("failed to seed category", zap.Error(err))
		return
	}
	snacks := domain.SubCategory{CategoryID: grocery.ID, Name: "snacks"}
	drinks := domain.SubCategory{CategoryID: grocery.ID, Name: "drinks"}
	if err := a.gormDB.Create(&snacks).Error; err != nil {
		zap.L().Error("failed to seed sub-category", zap.Error(err))
		return
	}
	if err := a.gormDB.Create(&drinks).Error; err != nil {
		zap.L().Error("failed to seed sub-category", zap.Error(err))
		return
	}

	demoProducts := []domain.Product{
		{ID: common.UUIDint64(), SubCategoryID: snacks.ID, Sku: common.MakeSku("demo-chips"), Name: "demo-chips", Stock: 100, Price: 1500},
		{ID: common.UUIDint64(), SubCategoryID: snacks.ID, Sku: common.MakeSku("demo-cookies"), Name: "demo-cookies", Stock: 50, Price: 2500},
		{ID: common.UUIDint64(), SubCategoryID: drinks.ID, Sku: common.MakeSku("demo-cola"), Name: "demo-cola", Stock: 200, Price: 1200},
	}
	for _, p := range demoProducts {
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to seed product", zap.String("name", p.Name), zap.Error(err))
		} else {
			zap.L().Info("initialized demo product", zap.String("name", p.Name))
		}
	}
}
