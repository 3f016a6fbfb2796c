package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/pkg/db"
	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

func setupCartTest(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(conn), products.NewRepository(conn), db.NewFromConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, price string, qty int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		IsActive: true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestAddItemMergesLines(t *testing.T) {
	svc, conn := setupCartTest(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 10)

	first, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(first.Items) != 1 || first.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart after first add: %+v", first)
	}

	merged, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(merged.Items) != 1 {
		t.Fatalf("expected single merged line, got %d", len(merged.Items))
	}
	if merged.Items[0].Quantity != 5 {
		t.Fatalf("merged quantity = %d, want 5", merged.Items[0].Quantity)
	}
	if merged.TotalItem != 5 {
		t.Fatalf("total item = %d, want 5", merged.TotalItem)
	}
	if !merged.TotalPrice.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("total price = %s, want 50.00", merged.TotalPrice)
	}
}

func TestAddItemRejectsOverstock(t *testing.T) {
	svc, conn := setupCartTest(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 4)

	if _, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	cart, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if cart.TotalItem != 3 {
		t.Fatalf("failed add must not change the cart, total item = %d", cart.TotalItem)
	}
}

func TestTotalsRecomputedAfterEveryMutation(t *testing.T) {
	svc, conn := setupCartTest(t)
	ctx := context.Background()
	userID := uuid.New()
	cheap := mustCreateProduct(t, conn, "2.50", 10)
	dear := mustCreateProduct(t, conn, "99.99", 10)

	if _, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: cheap.ID, Quantity: 4}); err != nil {
		t.Fatalf("add cheap: %v", err)
	}
	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: dear.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add dear: %v", err)
	}
	if cart.TotalItem != 5 || !cart.TotalPrice.Equal(decimal.RequireFromString("109.99")) {
		t.Fatalf("totals = %d / %s", cart.TotalItem, cart.TotalPrice)
	}

	var itemID uuid.UUID
	for _, item := range cart.Items {
		if item.ProductID == cheap.ID {
			itemID = item.ID
		}
	}

	cart, err = svc.UpdateItem(ctx, userID, itemID, 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.TotalItem != 2 || !cart.TotalPrice.Equal(decimal.RequireFromString("102.49")) {
		t.Fatalf("totals after update = %d / %s", cart.TotalItem, cart.TotalPrice)
	}

	cart, err = svc.RemoveItem(ctx, userID, itemID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if cart.TotalItem != 1 || !cart.TotalPrice.Equal(decimal.RequireFromString("99.99")) {
		t.Fatalf("totals after remove = %d / %s", cart.TotalItem, cart.TotalPrice)
	}
}

func TestUpdateItemValidation(t *testing.T) {
	svc, conn := setupCartTest(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 10)

	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = svc.UpdateItem(ctx, userID, cart.Items[0].ID, 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.UpdateItem(ctx, userID, uuid.New(), 2)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}
}

func TestClearCart(t *testing.T) {
	svc, conn := setupCartTest(t)
	ctx := context.Background()
	userID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 10)

	if _, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.ClearCart(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cart, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalItem != 0 || !cart.TotalPrice.IsZero() {
		t.Fatalf("cart not cleared: %+v", cart)
	}
}

func TestAddItemInactiveProduct(t *testing.T) {
	svc, conn := setupCartTest(t)
	ctx := context.Background()
	product := mustCreateProduct(t, conn, "10.00", 10)
	if err := conn.Model(product).UpdateColumn("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := svc.AddItem(ctx, uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
}
