// Package checkout implements the checkout engine and the stock ledger: the
// unit of work that converts a list of requested line items into a persisted
// Sale with its Transaction rows while decrementing product stock, guaranteeing
// no product is oversold under concurrent checkouts.
package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	errs "github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartstore/smartstore/internal/cart"
	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/pkg/common"
)

// Item is one requested checkout line.
type Item struct {
	ProductID int64 `json:"product_id,string"`
	Quantity  int   `json:"quantity"`
}

// Receipt is the confirmation returned on a successful checkout.
type Receipt struct {
	SaleID int64  `json:"cart_id,string"`
	Items  []Item `json:"items"`
}

// SaleView is a Sale projected for the order history, with derived totals.
type SaleView struct {
	ID          int64                `json:"id,string"`
	CreatedAt   time.Time            `json:"created_at"`
	Items       []domain.Transaction `json:"items"`
	TotalAmount int64                `json:"total_amount"`
	ItemCount   int                  `json:"item_count"`
}

// Service is the checkout engine. One instance is shared by all requests.
type Service struct {
	db     *gorm.DB
	drafts cart.Store

	// productLocks serializes same-process checkouts that touch the
	// same product, keyed by product id.
	productLocks sync.Map // map[int64]*sync.Mutex
}

func NewService(db *gorm.DB, drafts cart.Store) *Service {
	return &Service{db: db, drafts: drafts}
}

// Checkout validates the requested items, then in one transaction creates the
// sale header, reserves stock and inserts one line row per item, in the order
// supplied. Any failure aborts the whole unit of work; nothing partial is ever
// persisted. Only after a successful commit is the user's draft cart cleared.
// Resubmitting the same items creates a second sale: there is no
// deduplication key.
func (s *Service) Checkout(ctx context.Context, userID int64, items []Item) (*Receipt, error) {
	if len(items) == 0 {
		return nil, errs.Wrap(ErrValidation, "empty item list")
	}
	for i := range items {
		if items[i].Quantity == 0 {
			items[i].Quantity = 1
		}
		if items[i].Quantity < 0 {
			return nil, errs.Wrapf(ErrValidation, "quantity %d for product %d", items[i].Quantity, items[i].ProductID)
		}
	}

	unlock := s.lockProducts(items)
	defer unlock()

	receipt := &Receipt{Items: make([]Item, 0, len(items))}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale := domain.Sale{
			ID:        common.UUIDint64(),
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		if err := tx.Omit("Items").Create(&sale).Error; err != nil {
			return errs.Wrap(err, "failed to create sale")
		}

		for _, item := range items {
			if _, err := reserveStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			line := domain.Transaction{
				ID:        common.UUIDint64(),
				SaleID:    sale.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			}
			if err := tx.Omit("Product").Create(&line).Error; err != nil {
				return errs.Wrap(err, "failed to create sale line")
			}
			receipt.Items = append(receipt.Items, item)
		}

		receipt.SaleID = sale.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Draft cleanup is a side effect outside the transactional boundary.
	if s.drafts != nil {
		s.drafts.Clear(userID)
	}

	zap.L().Info("checkout committed",
		zap.Int64("user_id", userID),
		zap.Int64("sale_id", receipt.SaleID),
		zap.Int("lines", len(receipt.Items)))
	return receipt, nil
}

// lockProducts takes the in-process mutex of every distinct product in the
// request and returns a release func. Acquisition is in ascending id order so
// overlapping checkouts in one process can never deadlock on these.
func (s *Service) lockProducts(items []Item) func() {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ProductID]; !dup {
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		v, _ := s.productLocks.LoadOrStore(id, &sync.Mutex{})
		m := v.(*sync.Mutex)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// ListSales returns the user's order history, newest first, with line items
// and their products batch-resolved and totals derived at read time.
func (s *Service) ListSales(ctx context.Context, userID int64, page, pageSize int) ([]SaleView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	repo := NewGormSaleRepository(s.db)
	sales, total, err := repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, errs.Wrap(err, "failed to query sales")
	}

	views := make([]SaleView, 0, len(sales))
	for _, sale := range sales {
		v := SaleView{
			ID:        sale.ID,
			CreatedAt: sale.CreatedAt,
			Items:     sale.Items,
		}
		for _, line := range sale.Items {
			v.TotalAmount += line.Product.Price * int64(line.Quantity)
			v.ItemCount += line.Quantity
		}
		views = append(views, v)
	}
	return views, total, nil
}
