package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/internal/webserver"
	"github.com/smartstore/smartstore/pkg/common"
)

func registerStaffRoutes() {
	webserver.ApiGET("/staff-types", listStaffTypes)
	webserver.ApiPOST("/staff-types", createStaffType)
	webserver.ApiDELETE("/staff-types/:id", deleteStaffType)

	webserver.ApiGET("/staff", listStaff)
	webserver.ApiGET("/staff/:id", getStaff)
	webserver.ApiPOST("/staff", createStaff)
	webserver.ApiPUT("/staff/:id", updateStaff)
	webserver.ApiDELETE("/staff/:id", deleteStaff)
}

func listStaffTypes(c echo.Context) error {
	var types []domain.StaffType
	if err := GetDB(c).Order("id").Find(&types).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query staff types", err.Error())
	}
	return ok(c, types)
}

func createStaffType(c echo.Context) error {
	var payload domain.StaffType
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse staff type", nil)
	}
	payload.Name = strings.ToLower(strings.TrimSpace(payload.Name))
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Staff type name is required", nil)
	}
	payload.ID = 0
	payload.CreatedAt = time.Now()
	payload.UpdatedAt = time.Now()
	if err := GetDB(c).Create(&payload).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_TYPE", "Staff type already exists", nil)
	}
	auditLog(c, "create", "staff type "+payload.Name)
	return ok(c, payload)
}

func deleteStaffType(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff type ID", nil)
	}
	var inUse int64
	GetDB(c).Model(&domain.Staff{}).Where("type_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return fail(c, http.StatusConflict, "TYPE_IN_USE", "Staff type is referenced by staff accounts", nil)
	}
	if err := GetDB(c).Delete(&domain.StaffType{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete staff type", err.Error())
	}
	auditLog(c, "delete", "staff type")
	return ok(c, echo.Map{"id": id})
}

type staffPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Realname string `json:"realname"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	TypeID   int64  `json:"type_id,string"`
	IsAdmin  bool   `json:"is_admin"`
	Status   string `json:"status"`
	Remark   string `json:"remark"`
}

func listStaff(c echo.Context) error {
	page, pageSize := parsePagination(c)
	base := GetDB(c).Model(&domain.Staff{})

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		base = base.Where("LOWER(username) LIKE ? OR LOWER(realname) LIKE ?",
			"%"+strings.ToLower(q)+"%", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query staff", err.Error())
	}
	var staff []domain.Staff
	if err := base.Preload("Type").Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&staff).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query staff", err.Error())
	}
	return paged(c, staff, total, page, pageSize)
}

func getStaff(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID", nil)
	}
	var staff domain.Staff
	if err := GetDB(c).Preload("Type").Where("id = ?", id).First(&staff).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query staff", err.Error())
	}
	return ok(c, staff)
}

func createStaff(c echo.Context) error {
	var payload staffPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse staff parameters", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}
	var stype domain.StaffType
	if err := GetDB(c).Where("id = ?", payload.TypeID).First(&stype).Error; err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_TYPE", "Unknown staff type", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
	}

	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}
	staff := domain.Staff{
		ID:        common.UUIDint64(),
		TypeID:    stype.ID,
		Username:  payload.Username,
		Password:  string(hashed),
		Realname:  payload.Realname,
		Email:     payload.Email,
		Mobile:    payload.Mobile,
		IsAdmin:   payload.IsAdmin,
		Status:    status,
		Remark:    payload.Remark,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&staff).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_STAFF", "Staff with this username already exists", nil)
	}
	auditLog(c, "create", "staff "+staff.Username)
	return ok(c, staff)
}

func updateStaff(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID", nil)
	}
	var staff domain.Staff
	if err := GetDB(c).Where("id = ?", id).First(&staff).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query staff", err.Error())
	}

	var payload staffPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse staff parameters", nil)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if payload.Realname != "" {
		updates["realname"] = payload.Realname
	}
	if payload.Email != "" {
		updates["email"] = payload.Email
	}
	if payload.Mobile != "" {
		updates["mobile"] = payload.Mobile
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.TypeID != 0 {
		var stype domain.StaffType
		if err := GetDB(c).Where("id = ?", payload.TypeID).First(&stype).Error; err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_TYPE", "Unknown staff type", nil)
		}
		updates["type_id"] = stype.ID
	}
	if payload.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
		}
		updates["password"] = string(hashed)
	}

	if err := GetDB(c).Model(&domain.Staff{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update staff", err.Error())
	}
	auditLog(c, "update", "staff "+staff.Username)
	return ok(c, echo.Map{"id": id})
}

func deleteStaff(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid staff ID", nil)
	}
	ident := webserver.GetIdentity(c)
	if ident != nil && ident.ID == id {
		return fail(c, http.StatusBadRequest, "SELF_DELETE", "Cannot delete the current account", nil)
	}
	if err := GetDB(c).Delete(&domain.Staff{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete staff", err.Error())
	}
	auditLog(c, "delete", "staff")
	return ok(c, echo.Map{"id": id})
}
