package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns every cart mutation. Totals are never adjusted
// incrementally: after any change the aggregate is recomputed from the
// full set of lines.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// AddItemInput identifies the product and quantity to merge into the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo     *Repository
	products *products.Repository
	tx       txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, productsRepo *products.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: productsRepo, tx: tx}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadOrCreate(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return FromCartModel(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.loadOrCreate(ctx, repo, userID)
		if err != nil {
			return err
		}

		product, err := s.products.WithTx(tx).FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		// Requested line quantity after merging with an existing line.
		requested := input.Quantity
		existing, err := repo.FindItemByProduct(ctx, cart.ID, input.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
		}
		if existing != nil {
			requested += existing.Quantity
		}

		// Courtesy check only. The order workflow re-validates under a
		// row lock; this just keeps obviously doomed carts honest.
		if requested > product.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
				WithDetails(map[string]any{
					"product_id": product.ID,
					"requested":  requested,
					"available":  product.Quantity,
				})
		}

		if existing != nil {
			existing.Quantity = requested
			existing.UnitPrice = product.Price
			if err := repo.SaveItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart line")
			}
		} else {
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Quantity:  requested,
				UnitPrice: product.Price,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart line")
			}
		}

		refreshed, err := s.recompute(ctx, repo, userID)
		if err != nil {
			return err
		}
		result = FromCartModel(refreshed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}

		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
		}

		product, err := s.products.WithTx(tx).FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if quantity > product.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
				WithDetails(map[string]any{
					"product_id": product.ID,
					"requested":  quantity,
					"available":  product.Quantity,
				})
		}

		item.Quantity = quantity
		item.UnitPrice = product.Price
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart line")
		}

		refreshed, err := s.recompute(ctx, repo, userID)
		if err != nil {
			return err
		}
		result = FromCartModel(refreshed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	var result *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}

		removed, err := repo.DeleteItem(ctx, cart.ID, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		refreshed, err := s.recompute(ctx, repo, userID)
		if err != nil {
			return err
		}
		result = FromCartModel(refreshed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}

		if err := repo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}

		_, err = s.recompute(ctx, repo, userID)
		return err
	})
}

// loadOrCreate returns the user's cart, creating an empty one when the
// user has none yet. Registration normally creates the cart; this keeps
// cart reads total for accounts that predate that.
func (s *service) loadOrCreate(ctx context.Context, repo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	cart = &models.Cart{UserID: userID}
	if err := repo.Create(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	cart.Items = []models.CartItem{}
	return cart, nil
}

// recompute reloads the cart and rebuilds the aggregate totals from the
// current set of lines, never from the previous totals.
func (s *service) recompute(ctx context.Context, repo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading cart")
	}

	totalItem, totalPrice := Totals(cart.Items)
	cart.TotalItem = totalItem
	cart.TotalPrice = totalPrice

	if err := repo.SaveTotals(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart totals")
	}
	return cart, nil
}
