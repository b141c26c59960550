package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog record. The order pipeline reads it when taking
// snapshots and writes stock/sold_count exactly once at settlement; the
// catalog service owns everything else.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Slug         string          `gorm:"column:slug" json:"slug"`
	Description  string          `gorm:"column:description;not null;default:''" json:"description"`
	Image        string          `gorm:"column:image;not null;default:''" json:"image"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	MRP          decimal.Decimal `gorm:"column:mrp;type:numeric(12,2);not null" json:"mrp"`
	Category     string          `gorm:"column:category;not null;default:''" json:"category"`
	CountInStock int             `gorm:"column:count_in_stock;not null;default:0" json:"countInStock"`
	SoldCount    int             `gorm:"column:sold_count;not null;default:0" json:"soldCount"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
