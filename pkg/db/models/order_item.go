package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is the per-line snapshot taken at order time. Name, price and
// image are copies, not live references: later catalog edits never alter a
// placed order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"orderId"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	Image     string          `gorm:"column:image;not null;default:''" json:"image"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"price"`
	Qty       int             `gorm:"column:qty;not null" json:"qty"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// LineTotal is unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}
