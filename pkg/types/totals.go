package types

import "github.com/shopspring/decimal"

// Totals is the server-computed money breakdown, stored in major units and
// immutable after order creation.
type Totals struct {
	SubTotal   decimal.Decimal `gorm:"column:sub_total;type:numeric(12,2);not null" json:"subTotal"`
	Discount   decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null" json:"discount"`
	Shipping   decimal.Decimal `gorm:"column:shipping;type:numeric(12,2);not null" json:"shipping"`
	Tax        decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null" json:"tax"`
	GrandTotal decimal.Decimal `gorm:"column:grand_total;type:numeric(12,2);not null" json:"grandTotal"`
}

// GrandTotalPaise converts the grand total to the currency minor unit for the
// payment gateway.
func (t Totals) GrandTotalPaise() int64 {
	return t.GrandTotal.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
