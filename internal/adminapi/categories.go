package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/internal/webserver"
)

func registerCategoryRoutes() {
	webserver.ApiGET("/category", listCategories)
	webserver.ApiPOST("/category", createCategory)
	webserver.ApiPUT("/category/:id", updateCategory)
	webserver.ApiDELETE("/category/:id", deleteCategory)

	webserver.ApiGET("/sub-category", listSubCategories)
	webserver.ApiPOST("/sub-category", createSubCategory)
	webserver.ApiPUT("/sub-category/:id", updateSubCategory)
	webserver.ApiDELETE("/sub-category/:id", deleteSubCategory)
}

func listCategories(c echo.Context) error {
	var categories []domain.Category
	if err := GetDB(c).Order("name").Find(&categories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return ok(c, categories)
}

func createCategory(c echo.Context) error {
	var payload domain.Category
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", nil)
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Category name is required", nil)
	}
	payload.ID = 0
	payload.CreatedAt = time.Now()
	payload.UpdatedAt = time.Now()
	if err := GetDB(c).Create(&payload).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CATEGORY", "Category already exists", nil)
	}
	auditLog(c, "create", "category "+payload.Name)
	return ok(c, payload)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var category domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&category).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}

	var payload domain.Category
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", nil)
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Category name is required", nil)
	}

	category.Name = payload.Name
	category.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&category).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CATEGORY", "Category name already in use", nil)
	}
	auditLog(c, "update", "category "+category.Name)
	return ok(c, category)
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var inUse int64
	GetDB(c).Model(&domain.SubCategory{}).Where("category_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return fail(c, http.StatusConflict, "CATEGORY_IN_USE", "Category has sub-categories", nil)
	}
	if err := GetDB(c).Delete(&domain.Category{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	auditLog(c, "delete", "category")
	return ok(c, echo.Map{"id": id})
}

func listSubCategories(c echo.Context) error {
	base := GetDB(c).Model(&domain.SubCategory{}).Preload("Category")
	if cid := strings.TrimSpace(c.QueryParam("category_id")); cid != "" {
		base = base.Where("category_id = ?", cid)
	}
	var subs []domain.SubCategory
	if err := base.Order("name").Find(&subs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sub-categories", err.Error())
	}
	return ok(c, subs)
}

func createSubCategory(c echo.Context) error {
	var payload domain.SubCategory
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sub-category", nil)
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Sub-category name is required", nil)
	}
	var parent domain.Category
	if err := GetDB(c).Where("id = ?", payload.CategoryID).First(&parent).Error; err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown parent category", nil)
	}
	payload.ID = 0
	payload.Category = parent
	payload.CreatedAt = time.Now()
	payload.UpdatedAt = time.Now()
	if err := GetDB(c).Omit("Category").Create(&payload).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_SUBCATEGORY", "Sub-category already exists", nil)
	}
	auditLog(c, "create", "sub-category "+payload.Name)
	return ok(c, payload)
}

func updateSubCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sub-category ID", nil)
	}
	var sub domain.SubCategory
	if err := GetDB(c).Where("id = ?", id).First(&sub).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SUBCATEGORY_NOT_FOUND", "Sub-category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sub-category", err.Error())
	}

	var payload domain.SubCategory
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sub-category", nil)
	}
	if payload.Name = strings.TrimSpace(payload.Name); payload.Name != "" {
		sub.Name = payload.Name
	}
	if payload.CategoryID != 0 {
		var parent domain.Category
		if err := GetDB(c).Where("id = ?", payload.CategoryID).First(&parent).Error; err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown parent category", nil)
		}
		sub.CategoryID = parent.ID
	}
	sub.UpdatedAt = time.Now()
	if err := GetDB(c).Omit("Category").Save(&sub).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_SUBCATEGORY", "Sub-category name already in use", nil)
	}
	auditLog(c, "update", "sub-category "+sub.Name)
	return ok(c, sub)
}

func deleteSubCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sub-category ID", nil)
	}
	var inUse int64
	GetDB(c).Model(&domain.Product{}).Where("sub_category_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return fail(c, http.StatusConflict, "SUBCATEGORY_IN_USE", "Sub-category has products", nil)
	}
	if err := GetDB(c).Delete(&domain.SubCategory{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete sub-category", err.Error())
	}
	auditLog(c, "delete", "sub-category")
	return ok(c, echo.Map{"id": id})
}
