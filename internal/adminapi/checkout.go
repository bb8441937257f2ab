package adminapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/smartstore/smartstore/internal/checkout"
	"github.com/smartstore/smartstore/internal/webserver"
	"github.com/smartstore/smartstore/pkg/metrics"
)

func registerCheckoutRoutes() {
	webserver.ApiPOST("/transactions", createTransaction)
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/export", exportOrders)
}

type checkoutPayload struct {
	Items []checkout.Item `json:"items"`
}

// createTransaction submits the requested items to the checkout engine.
// All-or-nothing: any failure leaves no persisted side effects.
func createTransaction(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		metrics.Incr(metrics.MetricCheckoutReject)
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout items", nil)
	}

	ident := webserver.GetIdentity(c)
	receipt, err := webserver.GetApp(c).Checkout().Checkout(c.Request().Context(), ident.ID, payload.Items)
	if err != nil {
		var notFound *checkout.ProductNotFoundError
		var insufficient *checkout.InsufficientStockError
		switch {
		case errors.Is(err, checkout.ErrValidation):
			metrics.Incr(metrics.MetricCheckoutReject)
			return fail(c, http.StatusBadRequest, "INVALID_ITEMS", err.Error(), nil)
		case errors.As(err, &notFound):
			metrics.Incr(metrics.MetricCheckoutReject)
			return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", notFound.Error(), echo.Map{
				"product_id": fmt.Sprintf("%d", notFound.ProductID),
			})
		case errors.As(err, &insufficient):
			metrics.Incr(metrics.MetricCheckoutReject)
			metrics.Incr(metrics.MetricInsufficientStock)
			return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", insufficient.Error(), insufficient)
		default:
			metrics.Incr(metrics.MetricCheckoutReject)
			zap.L().Error("checkout failed", zap.Int64("user_id", ident.ID), zap.Error(err))
			return fail(c, http.StatusInternalServerError, "CHECKOUT_ERROR", "Checkout failed", nil)
		}
	}

	metrics.Incr(metrics.MetricCheckoutAccept)
	return created(c, receipt)
}

// listOrders returns the caller's order history, newest first, with derived
// totals per sale.
func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	ident := webserver.GetIdentity(c)

	views, total, err := webserver.GetApp(c).Checkout().ListSales(c.Request().Context(), ident.ID, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, views, total, page, pageSize)
}

// exportOrders renders the caller's order history as an xlsx workbook.
func exportOrders(c echo.Context) error {
	ident := webserver.GetIdentity(c)
	views, _, err := webserver.GetApp(c).Checkout().ListSales(c.Request().Context(), ident.ID, 1, 500)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	xlsx := excelize.NewFile()
	const sheet = "Sheet1"
	headers := []string{"Sale ID", "Created At", "Product", "SKU", "Quantity", "Unit Price", "Line Amount"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		xlsx.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, sale := range views {
		for _, line := range sale.Items {
			xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%d", sale.ID))
			xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), sale.CreatedAt.Format("2006-01-02 15:04:05"))
			xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), line.Product.Name)
			xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), line.Product.Sku)
			xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), line.Quantity)
			xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), line.Product.Price)
			xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), line.Product.Price*int64(line.Quantity))
			row++
		}
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render workbook", nil)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
