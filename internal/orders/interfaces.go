package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/pagination"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByRazorpayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ClaimSettlement(ctx context.Context, id uuid.UUID) (bool, error)
	ClaimGuestOrders(ctx context.Context, email string, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
