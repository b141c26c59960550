package invoice

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/enums"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
	"github.com/rikscandle/rikscandle-backend/pkg/types"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func testCompany() config.CompanyConfig {
	return config.CompanyConfig{
		Name:    "RiksCandle",
		Address: "14 Craft Street, Pune, MH 411001",
	}
}

func sampleOrder() *models.Order {
	paidAt := time.Date(2025, 8, 14, 10, 30, 0, 0, time.UTC)
	return &models.Order{
		ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Contact: types.Contact{
			Name:  "Riya Sharma",
			Email: "riya@example.com",
			Phone: "9876543210",
		},
		ShippingAddress: types.ShippingAddress{
			Address: "12 Rose Lane",
			City:    "Pune",
			State:   "MH",
			Pin:     "411001",
		},
		PaymentMethod: enums.PaymentMethodRazorpay,
		Totals: types.Totals{
			SubTotal:   decimal.NewFromInt(598),
			Shipping:   decimal.NewFromInt(49),
			GrandTotal: decimal.NewFromInt(647),
		},
		Status: enums.OrderStatusConfirmed,
		IsPaid: true,
		PaidAt: &paidAt,
		Items: []models.OrderItem{
			{Name: "Lavender Jar Candle", UnitPrice: decimal.NewFromInt(299), Qty: 2},
		},
		CreatedAt: time.Date(2025, 8, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r, err := NewRenderer(context.Background(), testCompany(), quietLogger())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	data, err := r.Render(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF document")
	}
	if len(data) < 1000 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestRenderIsDeterministicForSameOrder(t *testing.T) {
	r, _ := NewRenderer(context.Background(), testCompany(), quietLogger())
	order := sampleOrder()

	first, err := r.Render(context.Background(), order)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := r.Render(context.Background(), order)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("repeated downloads of the same invoice should be byte-identical")
	}
}

func TestRenderMissingLogoFallsBackToText(t *testing.T) {
	company := testCompany()
	company.LogoPath = filepath.Join(t.TempDir(), "missing.png")

	r, err := NewRenderer(context.Background(), company, quietLogger())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	data, err := r.Render(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("render without logo: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("fallback output is not a PDF document")
	}
}

func TestRenderGuestOrderWithoutDiscountOrTax(t *testing.T) {
	r, _ := NewRenderer(context.Background(), testCompany(), quietLogger())

	order := sampleOrder()
	order.IsPaid = false
	order.PaymentMethod = enums.PaymentMethodCOD
	order.Totals.Discount = decimal.Zero
	order.Totals.Tax = decimal.Zero

	if _, err := r.Render(context.Background(), order); err != nil {
		t.Fatalf("render COD order: %v", err)
	}
}

func TestRenderNilOrderRejected(t *testing.T) {
	r, _ := NewRenderer(context.Background(), testCompany(), quietLogger())
	if _, err := r.Render(context.Background(), nil); err == nil {
		t.Fatal("nil order should be rejected")
	}
}
