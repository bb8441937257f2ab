package checkout

import (
	"context"
	"errors"

	errs "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartstore/smartstore/internal/domain"
)

// SaleRepository handles database operations for persisted sales.
type SaleRepository interface {
	// Create inserts a sale header
	Create(ctx context.Context, sale *domain.Sale) error

	// ListByUser retrieves a user's sales newest first, each with its
	// transactions and resolved products batch-loaded.
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*domain.Sale, int64, error)
}

// GormSaleRepository is the GORM implementation of SaleRepository
type GormSaleRepository struct {
	db *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *GormSaleRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*domain.Sale, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Sale{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []*domain.Sale
	err := base.
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// reserveStock is the stock ledger primitive: read the product row under an
// exclusive row lock, verify the floor, and decrement. Must run inside the
// same transaction as the sale line insert so an abort rolls the decrement
// back too. Returns the new stock level.
func reserveStock(tx *gorm.DB, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, errs.Wrapf(ErrValidation, "quantity must be positive, got %d", quantity)
	}

	q := tx
	if supportsRowLock(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p domain.Product
	if err := q.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &ProductNotFoundError{ProductID: productID}
		}
		return 0, errs.Wrap(err, "stock read failed")
	}

	if p.Stock < quantity {
		return 0, &InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: p.Stock,
		}
	}

	newStock := p.Stock - quantity
	if err := tx.Model(&domain.Product{}).
		Where("id = ?", productID).
		Update("stock", newStock).Error; err != nil {
		return 0, errs.Wrap(err, "stock decrement failed")
	}
	return newStock, nil
}

// supportsRowLock reports whether the dialect understands SELECT ... FOR
// UPDATE. SQLite does not, but it serializes writers at the database level,
// and same-process checkouts are serialized by the service's product locks.
func supportsRowLock(tx *gorm.DB) bool {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return true
	default:
		return false
	}
}
