package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
)

// Repository provides the catalog reads the order pipeline depends on plus
// the single settlement write.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": id.String()})
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads every product in ids. Missing ids are simply absent from
// the result; callers decide whether that is an error.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	out := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		p := rows[i]
		out[p.ID] = &p
	}
	return out, nil
}

// ApplySettlement decrements stock and bumps sold_count for one product.
// Stock is clamped at zero in SQL so oversold lines never drive it negative.
func (r *Repository) ApplySettlement(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"count_in_stock": gorm.Expr("CASE WHEN count_in_stock > ? THEN count_in_stock - ? ELSE 0 END", qty, qty),
			"sold_count":     gorm.Expr("sold_count + ?", qty),
		}).Error
}

// List returns active catalog rows ordered by creation time.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
