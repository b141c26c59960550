package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/enums"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/pagination"
	"github.com/rikscandle/rikscandle-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  contact_name TEXT NOT NULL,
  contact_email TEXT NOT NULL,
  contact_phone TEXT NOT NULL,
  ship_address TEXT NOT NULL,
  ship_city TEXT NOT NULL,
  ship_state TEXT NOT NULL,
  ship_pin TEXT NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'COD',
  sub_total NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  shipping NUMERIC NOT NULL DEFAULT 0,
  tax NUMERIC NOT NULL DEFAULT 0,
  grand_total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'Placed',
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  razorpay_order_id TEXT,
  razorpay_payment_id TEXT,
  razorpay_signature TEXT,
  delivered_at DATETIME,
  settled_at DATETIME,
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  unit_price NUMERIC NOT NULL,
  qty INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()

	now := time.Now().UTC()
	order := &models.Order{
		ID: uuid.New(),
		Contact: types.Contact{
			Name:  "Riya",
			Email: "riya@example.com",
			Phone: "9876543210",
		},
		ShippingAddress: types.ShippingAddress{
			Address: "12 Rose Lane",
			City:    "Pune",
			State:   "MH",
			Pin:     "411001",
		},
		PaymentMethod: enums.PaymentMethodCOD,
		Totals: types.Totals{
			SubTotal:   decimal.NewFromInt(598),
			Shipping:   decimal.NewFromInt(49),
			GrandTotal: decimal.NewFromInt(647),
		},
		Status:    enums.OrderStatusPlaced,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(order)
	}

	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepoCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := &models.Order{
		ID:            uuid.New(),
		Contact:       types.Contact{Name: "Riya", Email: "riya@example.com", Phone: "9876543210"},
		ShippingAddress: types.ShippingAddress{
			Address: "12 Rose Lane", City: "Pune", State: "MH", Pin: "411001",
		},
		PaymentMethod: enums.PaymentMethodCOD,
		Totals: types.Totals{
			SubTotal:   decimal.NewFromInt(299),
			Shipping:   decimal.NewFromInt(49),
			GrandTotal: decimal.NewFromInt(348),
		},
		Status: enums.OrderStatusPlaced,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Rose Jar", UnitPrice: decimal.NewFromInt(299), Qty: 1},
		},
	}

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Rose Jar", found.Items[0].Name)
	assert.True(t, found.Totals.GrandTotal.Equal(decimal.NewFromInt(348)))
}

func TestRepoFindByIDNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepoFindByRazorpayOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gatewayID := "order_" + uuid.NewString()
	order := seedOrder(t, db, func(o *models.Order) {
		o.PaymentMethod = enums.PaymentMethodRazorpay
		o.Status = enums.OrderStatusPending
		o.RazorpayOrderID = &gatewayID
	})

	found, err := repo.FindByRazorpayOrderID(ctx, gatewayID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByRazorpayOrderID(ctx, "order_missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepoClaimSettlementIsAtMostOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, nil)

	claimed, err := repo.ClaimSettlement(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, claimed, "first claim should win")

	claimed, err = repo.ClaimSettlement(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.SettledAt)
}

func TestRepoClaimGuestOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	guest := seedOrder(t, db, func(o *models.Order) { o.Contact.Email = email })
	seedOrder(t, db, func(o *models.Order) { o.Contact.Email = "other-" + email })
	owner := uuid.New()
	seedOrder(t, db, func(o *models.Order) {
		o.Contact.Email = email
		o.UserID = &owner
	})

	userID := uuid.New()
	claimed, err := repo.ClaimGuestOrders(ctx, email, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, claimed)

	found, err := repo.FindByID(ctx, guest.ID)
	require.NoError(t, err)
	require.NotNil(t, found.UserID)
	assert.Equal(t, userID, *found.UserID)
}

func TestRepoListByUserPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		seedOrder(t, db, func(o *models.Order) {
			o.UserID = &userID
			o.CreatedAt = created
			o.UpdatedAt = created
		})
	}

	page, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.True(t, page.Orders[0].CreatedAt.After(page.Orders[1].CreatedAt))

	rest, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestRepoListAllFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	shipped := seedOrder(t, db, func(o *models.Order) {
		o.Contact.Email = email
		o.Status = enums.OrderStatusShipped
	})
	seedOrder(t, db, func(o *models.Order) {
		o.Contact.Email = email
		o.Status = enums.OrderStatusPlaced
	})

	status := enums.OrderStatusShipped
	page, err := repo.ListAll(ctx, pagination.Params{}, ListFilters{Status: &status, Email: email})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, shipped.ID, page.Orders[0].ID)
}

func TestRepoUpdateFieldsAndDelete(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, nil)

	err := repo.UpdateFields(ctx, order.ID, map[string]any{"status": enums.OrderStatusConfirmed})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.FindByID(ctx, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = repo.UpdateFields(ctx, order.ID, map[string]any{"status": enums.OrderStatusShipped})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
