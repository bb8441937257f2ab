package domain

import "time"

type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:20;uniqueIndex" json:"name" form:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "category"
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID int64     `gorm:"index" json:"category_id" form:"category_id"`
	Category   Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`
	Name       string    `gorm:"size:50;uniqueIndex" json:"name" form:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SubCategory) TableName() string {
	return "sub_category"
}

// Product carries the authoritative stock count. Stock is mutated only inside
// a checkout unit of work (and by explicit restock updates through the API).
type Product struct {
	ID            int64       `json:"id,string" form:"id"`
	SubCategoryID int64       `gorm:"index" json:"sub_category_id" form:"sub_category_id"`
	SubCategory   SubCategory `gorm:"foreignKey:SubCategoryID" json:"sub_category"`
	Sku           string      `gorm:"size:40;uniqueIndex" json:"sku" form:"sku"`
	Name          string      `gorm:"size:50;uniqueIndex" json:"name" form:"name"`
	Description   string      `gorm:"size:500" json:"description" form:"description"`
	Stock         int         `gorm:"default:0" json:"stock" form:"stock"`
	Price         int64       `json:"price" form:"price"` // minor currency units
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}
