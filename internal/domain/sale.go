package domain

import "time"

// Sale is the persisted header of one completed checkout. Created exactly once
// per successful checkout and immutable thereafter.
type Sale struct {
	ID        int64         `json:"id,string"`
	UserID    int64         `gorm:"index" json:"user_id"`
	Items     []Transaction `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
}

func (Sale) TableName() string {
	return "sale"
}

// Transaction is one product+quantity line belonging to a Sale. The product is
// referenced, not owned: its lifecycle is independent of historical sales.
type Transaction struct {
	ID        int64   `json:"id,string"`
	SaleID    int64   `gorm:"index" json:"sale_id,string"`
	ProductID int64   `gorm:"index" json:"product_id,string"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int     `json:"quantity"`
}

func (Transaction) TableName() string {
	return "sale_transaction"
}
