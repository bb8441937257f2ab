package adminapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smartstore/smartstore/config"
	"github.com/smartstore/smartstore/internal/app"
	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/internal/webserver"
)

var (
	setupOnce   sync.Once
	testApp     *app.Application
	testServer  *webserver.WebServer
	adminToken  string
	staffToken  string
	testProduct domain.Product
)

func setup(t *testing.T) {
	t.Helper()
	setupOnce.Do(func() {
		cfg := &config.AppConfig{
			System: config.SysConfig{Appid: "smartstore-test", Location: "UTC", Workdir: filepath.Dir(testDBPath)},
			Web:    config.WebConfig{Host: "127.0.0.1", Port: 0, Secret: "test-secret", JwtDays: 1},
		}
		db, err := gorm.Open(sqlite.Open(testDBPath+"?_busy_timeout=5000"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			panic(err)
		}
		testApp = app.NewApplication(cfg)
		testApp.OverrideDB(db)
		testApp.InitDb()

		testServer = webserver.Init(testApp)
		InitRouter()

		adminToken = mustLogin("admin", "smartstore")
		seedStaffAccount()
		staffToken = mustLogin("clerk", "clerk-pass")
		seedTestProduct()
	})
}

var testDBPath = filepath.Join(os.TempDir(), fmt.Sprintf("smartstore-api-%d.db", os.Getpid()))

func doJSON(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	testServer.Echo().ServeHTTP(rec, req)
	return rec
}

func mustLogin(username, password string) string {
	rec := doJSON(http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		panic(fmt.Sprintf("login %s: status %d body %s", username, rec.Code, rec.Body.String()))
	}
	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out.Data.Token
}

func seedStaffAccount() {
	db := testApp.DB()
	var staffType domain.StaffType
	if err := db.Where("name = ?", string(domain.RoleStaff)).First(&staffType).Error; err != nil {
		panic(err)
	}
	rec := doJSON(http.MethodPost, "/api/staff", adminToken, map[string]interface{}{
		"username": "clerk",
		"password": "clerk-pass",
		"realname": "Clerk",
		"type_id":  fmt.Sprintf("%d", staffType.ID),
	})
	if rec.Code != http.StatusOK {
		panic("seed clerk: " + rec.Body.String())
	}
}

func seedTestProduct() {
	db := testApp.DB()
	var sub domain.SubCategory
	if err := db.First(&sub).Error; err != nil {
		panic(err)
	}
	rec := doJSON(http.MethodPost, "/api/product", adminToken, map[string]interface{}{
		"sub_category_id": fmt.Sprintf("%d", sub.ID),
		"name":            "test-widget",
		"sku":             "TST-0001",
		"stock":           50,
		"price":           1250,
	})
	if rec.Code != http.StatusOK {
		panic("seed product: " + rec.Body.String())
	}
	if err := db.Where("sku = ?", "TST-0001").First(&testProduct).Error; err != nil {
		panic(err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setup(t)
	rec := doJSON(http.MethodPost, "/api/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	setup(t)
	rec := doJSON(http.MethodGet, "/api/me", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Data webserver.Identity `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Data.Username != "admin" || !out.Data.IsAdmin {
		t.Errorf("identity = %+v", out.Data)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	setup(t)
	rec := doJSON(http.MethodGet, "/api/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWriteGateBlocksStaffRole(t *testing.T) {
	setup(t)
	rec := doJSON(http.MethodPost, "/api/category", staffToken, map[string]string{"name": "forbidden"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
	// reads are allowed
	rec = doJSON(http.MethodGet, "/api/product", staffToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read status = %d, want 200", rec.Code)
	}
}

func TestDraftCartRoundTrip(t *testing.T) {
	setup(t)
	items := []map[string]interface{}{
		{"product_id": fmt.Sprintf("%d", testProduct.ID), "quantity": 2},
	}
	rec := doJSON(http.MethodPost, "/api/cart", staffToken, map[string]interface{}{"items": items})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(http.MethodGet, "/api/cart", staffToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var out struct {
		Data struct {
			Items []struct {
				ProductID string `json:"product_id"`
				Quantity  int    `json:"quantity"`
			} `json:"items"`
		} `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if len(out.Data.Items) != 1 || out.Data.Items[0].Quantity != 2 {
		t.Fatalf("draft = %+v", out.Data.Items)
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	setup(t)
	items := []map[string]interface{}{
		{"product_id": fmt.Sprintf("%d", testProduct.ID), "quantity": 3},
	}
	rec := doJSON(http.MethodPost, "/api/transactions", adminToken, map[string]interface{}{"items": items})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Data struct {
			CartID string `json:"cart_id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Data.CartID == "" {
		t.Fatal("no cart_id in response")
	}

	// order history reflects the sale
	rec = doJSON(http.MethodGet, "/api/orders", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("orders status = %d", rec.Code)
	}
	var orders struct {
		Data []struct {
			TotalAmount int64 `json:"total_amount"`
			ItemCount   int   `json:"item_count"`
		} `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &orders)
	if len(orders.Data) == 0 {
		t.Fatal("no orders returned")
	}
	if orders.Data[0].TotalAmount != 3*1250 || orders.Data[0].ItemCount != 3 {
		t.Errorf("latest order = %+v, want total 3750 count 3", orders.Data[0])
	}
}

func TestCheckoutEndpointErrors(t *testing.T) {
	setup(t)

	// unknown product
	rec := doJSON(http.MethodPost, "/api/transactions", adminToken, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": "999999", "quantity": 1}},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404: %s", rec.Code, rec.Body.String())
	}

	// empty items
	rec = doJSON(http.MethodPost, "/api/transactions", adminToken, map[string]interface{}{
		"items": []map[string]interface{}{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty items status = %d, want 400", rec.Code)
	}

	// more than available
	rec = doJSON(http.MethodPost, "/api/transactions", adminToken, map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": fmt.Sprintf("%d", testProduct.ID), "quantity": 100000},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("insufficient status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Code   string `json:"code"`
		Detail struct {
			Requested int `json:"requested"`
			Available int `json:"available"`
		} `json:"detail"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Code != "INSUFFICIENT_STOCK" || out.Detail.Requested != 100000 {
		t.Errorf("error body = %s", rec.Body.String())
	}
}

func TestProductQr(t *testing.T) {
	setup(t)
	rec := doJSON(http.MethodGet, fmt.Sprintf("/api/product/%d/qr", testProduct.ID), staffToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %s, want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty image body")
	}
}
