package checkout

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartstore/smartstore/internal/cart"
	"github.com/smartstore/smartstore/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id int64, stock int, price int64) {
	t.Helper()
	p := domain.Product{
		ID:    id,
		Sku:   fmt.Sprintf("SKU-%d", id),
		Name:  fmt.Sprintf("product-%d", id),
		Stock: stock,
		Price: price,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func productStock(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var p domain.Product
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("read product %d: %v", id, err)
	}
	return p.Stock
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCheckoutSuccess(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 10, 250)
	seedProduct(t, db, 2, 4, 1000)
	svc := NewService(db, nil)

	receipt, err := svc.Checkout(context.Background(), 42, []Item{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if receipt.SaleID == 0 {
		t.Fatal("receipt has no sale id")
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("confirmed %d items, want 2", len(receipt.Items))
	}
	if got := productStock(t, db, 1); got != 7 {
		t.Errorf("product 1 stock = %d, want 7", got)
	}
	if got := productStock(t, db, 2); got != 2 {
		t.Errorf("product 2 stock = %d, want 2", got)
	}
	if n := countRows(t, db, &domain.Sale{}); n != 1 {
		t.Errorf("sale rows = %d, want 1", n)
	}
	if n := countRows(t, db, &domain.Transaction{}); n != 2 {
		t.Errorf("transaction rows = %d, want 2", n)
	}
}

func TestCheckoutDefaultsQuantityToOne(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 5, 100)
	svc := NewService(db, nil)

	receipt, err := svc.Checkout(context.Background(), 1, []Item{{ProductID: 1}})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if receipt.Items[0].Quantity != 1 {
		t.Errorf("confirmed qty = %d, want 1", receipt.Items[0].Quantity)
	}
	if got := productStock(t, db, 1); got != 4 {
		t.Errorf("stock = %d, want 4", got)
	}
}

func TestCheckoutValidation(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 5, 100)
	svc := NewService(db, nil)

	if _, err := svc.Checkout(context.Background(), 1, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty items: err = %v, want ErrValidation", err)
	}
	if _, err := svc.Checkout(context.Background(), 1, []Item{{ProductID: 1, Quantity: -2}}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative qty: err = %v, want ErrValidation", err)
	}
	if got := productStock(t, db, 1); got != 5 {
		t.Errorf("stock changed on validation failure: %d", got)
	}
}

func TestCheckoutProductNotFound(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 5, 100)
	svc := NewService(db, nil)

	_, err := svc.Checkout(context.Background(), 1, []Item{
		{ProductID: 1, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	var nf *ProductNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ProductNotFoundError", err)
	}
	if nf.ProductID != 999 {
		t.Errorf("ProductID = %d, want 999", nf.ProductID)
	}
	// the whole unit of work rolled back
	if got := productStock(t, db, 1); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
	if n := countRows(t, db, &domain.Sale{}); n != 0 {
		t.Errorf("sale rows = %d, want 0", n)
	}
}

func TestCheckoutInsufficientStockAtomicity(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 10, 100)
	seedProduct(t, db, 2, 1, 100)
	svc := NewService(db, nil)

	_, err := svc.Checkout(context.Background(), 1, []Item{
		{ProductID: 1, Quantity: 2}, // would succeed alone
		{ProductID: 2, Quantity: 5}, // exceeds stock
	})
	var ins *InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if ins.ProductID != 2 || ins.Requested != 5 || ins.Available != 1 {
		t.Errorf("unexpected error detail: %+v", ins)
	}
	if got := productStock(t, db, 1); got != 10 {
		t.Errorf("product 1 stock = %d, want 10 (rollback)", got)
	}
	if got := productStock(t, db, 2); got != 1 {
		t.Errorf("product 2 stock = %d, want 1", got)
	}
	if n := countRows(t, db, &domain.Sale{}); n != 0 {
		t.Errorf("sale rows = %d, want 0", n)
	}
	if n := countRows(t, db, &domain.Transaction{}); n != 0 {
		t.Errorf("transaction rows = %d, want 0", n)
	}
}

func TestCheckoutRepeatedDrainsStock(t *testing.T) {
	// stock=5, checkout qty=3 succeeds leaving 2, second qty=3 fails with
	// requested=3 available=2 and stock stays 2.
	db := testDB(t)
	seedProduct(t, db, 1, 5, 100)
	svc := NewService(db, nil)

	if _, err := svc.Checkout(context.Background(), 1, []Item{{ProductID: 1, Quantity: 3}}); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	if got := productStock(t, db, 1); got != 2 {
		t.Fatalf("stock after first = %d, want 2", got)
	}

	_, err := svc.Checkout(context.Background(), 1, []Item{{ProductID: 1, Quantity: 3}})
	var ins *InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if ins.Requested != 3 || ins.Available != 2 {
		t.Errorf("detail = %+v, want requested 3 available 2", ins)
	}
	if got := productStock(t, db, 1); got != 2 {
		t.Errorf("stock = %d, want 2", got)
	}
}

func TestCheckoutConcurrentSameProduct(t *testing.T) {
	// With stock N and two concurrent checkouts each requesting N, exactly
	// one succeeds; final stock is zero.
	const n = 4
	db := testDB(t)
	seedProduct(t, db, 1, n, 100)
	svc := NewService(db, nil)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), uid, []Item{{ProductID: 1, Quantity: n}})
			errCh <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errCh)

	var succeeded, insufficient int
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		default:
			var ins *InsufficientStockError
			if !errors.As(err, &ins) {
				t.Fatalf("unexpected error: %v", err)
			}
			insufficient++
		}
	}
	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("succeeded=%d insufficient=%d, want 1/1", succeeded, insufficient)
	}
	if got := productStock(t, db, 1); got != 0 {
		t.Errorf("final stock = %d, want 0", got)
	}
	if sales := countRows(t, db, &domain.Sale{}); sales != 1 {
		t.Errorf("sale rows = %d, want 1", sales)
	}
}

func TestCheckoutClearsDraftCart(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 5, 100)
	drafts := cart.NewMemoryStore(time.Hour)
	drafts.Put(7, []cart.Item{{ProductID: 1, Quantity: 2}})
	drafts.Put(8, []cart.Item{{ProductID: 1, Quantity: 1}})
	svc := NewService(db, drafts)

	if _, err := svc.Checkout(context.Background(), 7, []Item{{ProductID: 1, Quantity: 2}}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got := drafts.Get(7); len(got) != 0 {
		t.Errorf("draft for user 7 not cleared: %v", got)
	}
	// other users' drafts are untouched
	if got := drafts.Get(8); len(got) != 1 {
		t.Errorf("draft for user 8 affected: %v", got)
	}
}

func TestCheckoutFailureKeepsDraftCart(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 1, 100)
	drafts := cart.NewMemoryStore(time.Hour)
	drafts.Put(7, []cart.Item{{ProductID: 1, Quantity: 5}})
	svc := NewService(db, drafts)

	if _, err := svc.Checkout(context.Background(), 7, []Item{{ProductID: 1, Quantity: 5}}); err == nil {
		t.Fatal("expected insufficient stock")
	}
	if got := drafts.Get(7); len(got) != 1 {
		t.Errorf("draft cleared on failed checkout: %v", got)
	}
}

func TestListSales(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 100, 250)
	seedProduct(t, db, 2, 100, 1000)
	svc := NewService(db, nil)

	first, err := svc.Checkout(context.Background(), 42, []Item{
		{ProductID: 1, Quantity: 2}, // 500
	})
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	second, err := svc.Checkout(context.Background(), 42, []Item{
		{ProductID: 1, Quantity: 1}, // 250
		{ProductID: 2, Quantity: 3}, // 3000
	})
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}
	// another user's sale must not appear
	if _, err := svc.Checkout(context.Background(), 99, []Item{{ProductID: 2, Quantity: 1}}); err != nil {
		t.Fatalf("other user checkout: %v", err)
	}

	views, total, err := svc.ListSales(context.Background(), 42, 1, 20)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("got %d sales (total %d), want 2", len(views), total)
	}
	if views[0].ID != second.SaleID || views[1].ID != first.SaleID {
		t.Errorf("sales not newest first: %d, %d", views[0].ID, views[1].ID)
	}
	if views[0].TotalAmount != 3250 || views[0].ItemCount != 4 {
		t.Errorf("second sale total=%d count=%d, want 3250/4", views[0].TotalAmount, views[0].ItemCount)
	}
	if views[1].TotalAmount != 500 || views[1].ItemCount != 2 {
		t.Errorf("first sale total=%d count=%d, want 500/2", views[1].TotalAmount, views[1].ItemCount)
	}
	for _, line := range views[0].Items {
		if line.Product.ID == 0 {
			t.Errorf("line product not resolved: %+v", line)
		}
	}
}

func TestReserveStockRejectsNonPositive(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, 1, 5, 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := reserveStock(tx, 1, 0)
		return err
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
