package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	"github.com/phamiz/ecommerce-backend/pkg/pagination"
)

// Repository persists orders and their immutable line snapshots.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts an order; line items cascade through the association.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByPublicID loads an order by its external identifier.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "public_id = ?", publicID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save persists all fields of an existing order.
func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// Delete removes an order; line items cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListFilters narrows order listings.
type ListFilters struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
}

// ListResult is one page of orders plus the token for the next page.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

// List returns orders newest first using (created_at, id) keyset
// pagination, optionally scoped to a user and a status.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})

	if filters.UserID != nil {
		tx = tx.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		tx = tx.Where("status = ?", *filters.Status)
	}
	if cursor != nil {
		tx = tx.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	err = tx.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{Orders: rows}
	if len(rows) > limit {
		result.Orders = rows[:limit]
		last := result.Orders[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}
