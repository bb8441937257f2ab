package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/internal/webserver"
	"github.com/smartstore/smartstore/pkg/common"
)

type productPayload struct {
	SubCategoryID int64  `json:"sub_category_id,string"`
	Sku           string `json:"sku"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Stock         *int   `json:"stock"`
	Price         int64  `json:"price"`
}

// registerProductRoutes registers product CRUD plus the SKU QR endpoint
func registerProductRoutes() {
	webserver.ApiGET("/product", listProducts)
	webserver.ApiGET("/product/:id", getProduct)
	webserver.ApiPOST("/product", createProduct)
	webserver.ApiPUT("/product/:id", updateProduct)
	webserver.ApiDELETE("/product/:id", deleteProduct)
	webserver.ApiGET("/product/:id/qr", productQr)
}

func listProducts(c echo.Context) error {
	pageStr := c.QueryParam("page")
	page := 1
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	_, pageSize := parsePagination(c)
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}

	// Filters: q or name or sub-category
	q := strings.TrimSpace(c.QueryParam("q"))
	nameFilter := strings.TrimSpace(c.QueryParam("name"))
	subCategory := strings.TrimSpace(c.QueryParam("sub_category_id"))

	// Sorting: field and order
	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, okCol := allowed[sortField]
	if !okCol || sortCol == "" {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("name ILIKE ? OR sku ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?",
				"%"+strings.ToLower(q)+"%", "%"+strings.ToLower(q)+"%")
		}
	}
	if nameFilter != "" {
		db = db.Where("name = ?", nameFilter)
	}
	if subCategory != "" {
		db = db.Where("sub_category_id = ?", subCategory)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Preload("SubCategory").Preload("SubCategory.Category").
		Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Preload("SubCategory").Preload("SubCategory.Category").
		Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must not be negative", nil)
	}
	stock := 0
	if payload.Stock != nil {
		if *payload.Stock < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must be >= 0", nil)
		}
		stock = *payload.Stock
	}
	var sub domain.SubCategory
	if err := GetDB(c).Where("id = ?", payload.SubCategoryID).First(&sub).Error; err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_SUBCATEGORY", "Unknown sub-category", nil)
	}

	sku := strings.TrimSpace(payload.Sku)
	if sku == "" {
		sku = common.MakeSku(payload.Name)
	}

	now := time.Now()
	p := domain.Product{
		ID:            common.UUIDint64(),
		SubCategoryID: sub.ID,
		Sku:           sku,
		Name:          payload.Name,
		Description:   strings.TrimSpace(payload.Description),
		Stock:         stock,
		Price:         payload.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_PRODUCT", "Product name or SKU already exists", nil)
	}
	auditLog(c, "create", "product "+p.Name)
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if name := strings.TrimSpace(payload.Name); name != "" {
		p.Name = name
	}
	if sku := strings.TrimSpace(payload.Sku); sku != "" {
		p.Sku = sku
	}
	if payload.Description != "" {
		p.Description = strings.TrimSpace(payload.Description)
	}
	if payload.Price > 0 {
		p.Price = payload.Price
	}
	// Restock path: an explicit stock value replaces the current count.
	// Checkout decrements happen only inside the checkout transaction.
	if payload.Stock != nil {
		if *payload.Stock < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must be >= 0", nil)
		}
		p.Stock = *payload.Stock
	}
	if payload.SubCategoryID != 0 {
		var sub domain.SubCategory
		if err := GetDB(c).Where("id = ?", payload.SubCategoryID).First(&sub).Error; err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_SUBCATEGORY", "Unknown sub-category", nil)
		}
		p.SubCategoryID = sub.ID
	}
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Omit("SubCategory").Save(&p).Error; err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_PRODUCT", "Product name or SKU already in use", nil)
	}
	auditLog(c, "update", "product "+p.Name)
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	auditLog(c, "delete", "product")
	return ok(c, map[string]interface{}{"id": id})
}

// productQr renders the product SKU as a scannable PNG
func productQr(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	size := 256
	if s, err := strconv.Atoi(c.QueryParam("size")); err == nil && s >= 64 && s <= 1024 {
		size = s
	}
	png, err := qrcode.Encode(p.Sku, qrcode.Medium, size)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "QR_ERROR", "Failed to render QR code", nil)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
