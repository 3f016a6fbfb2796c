package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/internal/addresses"
	"github.com/phamiz/ecommerce-backend/internal/cart"
	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
	"github.com/phamiz/ecommerce-backend/pkg/logger"
	"github.com/phamiz/ecommerce-backend/pkg/metrics"
	"github.com/phamiz/ecommerce-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies who is performing an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) isAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CreateOrderInput carries the checkout payload. Either an existing
// address id or a new inline address must be provided.
type CreateOrderInput struct {
	AddressID     *uuid.UUID
	Address       *addresses.AddressInput
	PaymentMethod enums.PaymentMethod
}

// UpdatePaymentInput carries a payment settlement notification.
type UpdatePaymentInput struct {
	Status        enums.PaymentStatus
	TransactionID *string
}

// Service exposes the order workflow: atomic creation from the cart,
// lifecycle transitions, cancellation with stock restoration, and
// payment settlement.
type Service interface {
	CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, actor Actor, publicID string) (*OrderDTO, error)
	ListOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderListDTO, error)
	ListAllOrders(ctx context.Context, actor Actor, status *enums.OrderStatus, params pagination.Params) (*OrderListDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, publicID string, target enums.OrderStatus) (*OrderDTO, error)
	CancelOrder(ctx context.Context, actor Actor, publicID string) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, actor Actor, publicID string) error
	UpdatePaymentStatus(ctx context.Context, publicID string, input UpdatePaymentInput) (*OrderDTO, error)
}

type service struct {
	repo      *Repository
	carts     *cart.Repository
	products  *products.Repository
	addresses *addresses.Repository
	tx        txRunner
	metrics   *metrics.OrderMetrics
	log       *logger.Logger
}

// NewService builds an order service backed by the provided stack.
func NewService(
	repo *Repository,
	carts *cart.Repository,
	productsRepo *products.Repository,
	addressesRepo *addresses.Repository,
	tx txRunner,
	orderMetrics *metrics.OrderMetrics,
	log *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if addressesRepo == nil {
		return nil, fmt.Errorf("addresses repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		carts:     carts,
		products:  productsRepo,
		addresses: addressesRepo,
		tx:        tx,
		metrics:   orderMetrics,
		log:       log,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDTO, error) {
	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCOD
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	addressID, err := s.resolveAddress(ctx, actor.UserID, input)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)
		orderRepo := s.repo.WithTx(tx)

		userCart, err := cartRepo.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		// Lock rows in a stable order so concurrent checkouts of
		// overlapping products cannot deadlock each other.
		lines := append([]models.CartItem(nil), userCart.Items...)
		sort.Slice(lines, func(i, j int) bool {
			return lines[i].ProductID.String() < lines[j].ProductID.String()
		})

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, err := productRepo.FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product no longer available").
						WithDetails(map[string]any{"product_id": line.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking product")
			}

			if product.Quantity < line.Quantity {
				return insufficientStock(product.ID, line.Quantity, product.Quantity)
			}

			decremented, err := productRepo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
			}
			if !decremented {
				return insufficientStock(product.ID, line.Quantity, product.Quantity)
			}

			// Line price comes from the product at commit time, not
			// from whatever the cart captured earlier.
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
		}

		totalItem, totalPrice := orderTotals(items)
		order = &models.Order{
			PublicID:      uuid.NewString(),
			UserID:        actor.UserID,
			AddressID:     addressID,
			Status:        enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusPending,
			PaymentMethod: method,
			TotalItem:     totalItem,
			TotalPrice:    totalPrice,
			OrderDate:     time.Now().UTC(),
			Items:         items,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
		}

		if err := cartRepo.DeleteItems(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		userCart.TotalItem = 0
		userCart.TotalPrice = decimal.Zero
		if err := cartRepo.SaveTotals(ctx, userCart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resetting cart totals")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock()
		}
		if pkgerrors.IsLockContention(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order creation timed out waiting for stock locks")
		}
		return nil, err
	}

	s.metrics.IncCreated()
	if s.log != nil {
		s.log.Info(s.log.WithOrderID(ctx, order.PublicID), "order created")
	}
	return FromOrderModel(order), nil
}

func (s *service) GetOrder(ctx context.Context, actor Actor, publicID string) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, s.repo, actor, publicID)
	if err != nil {
		return nil, err
	}
	return FromOrderModel(order), nil
}

func (s *service) ListOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderListDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	userID := actor.UserID
	page, err := s.repo.List(ctx, ListFilters{UserID: &userID}, params)
	if err != nil {
		return nil, listError(err)
	}
	return toListDTO(page), nil
}

func (s *service) ListAllOrders(ctx context.Context, actor Actor, status *enums.OrderStatus, params pagination.Params) (*OrderListDTO, error) {
	if !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	page, err := s.repo.List(ctx, ListFilters{Status: status}, params)
	if err != nil {
		return nil, listError(err)
	}
	return toListDTO(page), nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, publicID string, target enums.OrderStatus) (*OrderDTO, error) {
	if !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !target.IsValid() || target == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.findOrder(ctx, repo, actor, publicID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, target) {
			return transitionError(order.Status, target)
		}

		order.Status = target
		if target == enums.OrderStatusDelivered {
			now := time.Now().UTC()
			order.DeliveryDate = &now
		}
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromOrderModel(updated), nil
}

func (s *service) CancelOrder(ctx context.Context, actor Actor, publicID string) (*OrderDTO, error) {
	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		order, err := s.findOrder(ctx, repo, actor, publicID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, enums.OrderStatusCancelled) {
			return transitionError(order.Status, enums.OrderStatusCancelled)
		}

		// Return every decremented line before flipping the status.
		// Running inside the same transaction keeps restore-then-fail
		// impossible to observe.
		for _, item := range order.Items {
			if err := productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restoring stock")
			}
		}

		order.Status = enums.OrderStatusCancelled
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancelled()
	if s.log != nil {
		s.log.Info(s.log.WithOrderID(ctx, cancelled.PublicID), "order cancelled, stock restored")
	}
	return FromOrderModel(cancelled), nil
}

func (s *service) DeleteOrder(ctx context.Context, actor Actor, publicID string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		order, err := s.findOrder(ctx, repo, actor, publicID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending or cancelled orders can be deleted").
				WithDetails(map[string]any{"status": order.Status})
		}

		// A pending order still holds its stock; give it back before
		// the rows disappear. A cancelled order already restored it.
		if order.Status == enums.OrderStatusPending {
			for _, item := range order.Items {
				if err := productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restoring stock")
				}
			}
		}

		deleted, err := repo.Delete(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting order")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil
	})
}

func (s *service) UpdatePaymentStatus(ctx context.Context, publicID string, input UpdatePaymentInput) (*OrderDTO, error) {
	if input.Status != enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByPublicID(ctx, publicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		if order.PaymentStatus == enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment already settled")
		}

		order.PaymentStatus = enums.PaymentStatusPaid
		order.TransactionID = input.TransactionID
		// Settled payment promotes the order straight to CONFIRMED
		// when the lifecycle still allows it.
		if CanTransition(order.Status, enums.OrderStatusConfirmed) {
			order.Status = enums.OrderStatusConfirmed
		}
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromOrderModel(updated), nil
}

func (s *service) resolveAddress(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (uuid.UUID, error) {
	if input.AddressID != nil {
		address, err := s.addresses.FindByID(ctx, *input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
		}
		if address.UserID != userID {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to user")
		}
		return address.ID, nil
	}

	if input.Address == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	address := &models.Address{
		UserID:     userID,
		Street:     input.Address.Street,
		City:       input.Address.City,
		State:      input.Address.State,
		PostalCode: input.Address.PostalCode,
		Country:    input.Address.Country,
		Phone:      input.Address.Phone,
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting address")
	}
	return address.ID, nil
}

// findOrder loads an order and enforces that the actor may see it.
func (s *service) findOrder(ctx context.Context, repo *Repository, actor Actor, publicID string) (*models.Order, error) {
	order, err := repo.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if !actor.isAdmin() && order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func orderTotals(items []models.OrderItem) (int, decimal.Decimal) {
	totalItem := 0
	total := decimal.Zero
	for _, item := range items {
		totalItem += item.Quantity
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return totalItem, total
}

func insufficientStock(productID uuid.UUID, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
		WithDetails(map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		})
}

func transitionError(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "illegal order status transition").
		WithDetails(map[string]any{"from": from, "to": to})
}

func listError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
}

func toListDTO(page *ListResult) *OrderListDTO {
	dtos := make([]OrderDTO, 0, len(page.Orders))
	for i := range page.Orders {
		dtos = append(dtos, *FromOrderModel(&page.Orders[i]))
	}
	return &OrderListDTO{Orders: dtos, NextCursor: page.NextCursor}
}
