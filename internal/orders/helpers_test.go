package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/internal/addresses"
	"github.com/phamiz/ecommerce-backend/internal/cart"
	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/pkg/db"
	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	"github.com/phamiz/ecommerce-backend/pkg/pagination"
)

type orderTestEnv struct {
	svc      Service
	conn     *gorm.DB
	carts    *cart.Repository
	products *products.Repository
}

func allModels() []any {
	return []any{
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	}
}

func newOrderTestEnv(t *testing.T, dsn string) *orderTestEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cartRepo := cart.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	addressRepo := addresses.NewRepository(conn)
	svc, err := NewService(
		NewRepository(conn),
		cartRepo,
		productRepo,
		addressRepo,
		db.NewFromConn(conn),
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &orderTestEnv{svc: svc, conn: conn, carts: cartRepo, products: productRepo}
}

func setupOrdersTest(t *testing.T) *orderTestEnv {
	t.Helper()
	return newOrderTestEnv(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}

func (e *orderTestEnv) createProduct(t *testing.T, price string, qty int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		IsActive: true,
	}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (e *orderTestEnv) fillCart(t *testing.T, userID uuid.UUID, lines map[uuid.UUID]int) {
	t.Helper()
	ctx := context.Background()

	userCart := &models.Cart{UserID: userID}
	if err := e.carts.Create(ctx, userCart); err != nil {
		t.Fatalf("create cart: %v", err)
	}
	for productID, qty := range lines {
		var product models.Product
		if err := e.conn.First(&product, "id = ?", productID).Error; err != nil {
			t.Fatalf("load product: %v", err)
		}
		item := &models.CartItem{
			CartID:    userCart.ID,
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: product.Price,
		}
		if err := e.carts.CreateItem(ctx, item); err != nil {
			t.Fatalf("create cart item: %v", err)
		}
	}
}

func (e *orderTestEnv) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	var product models.Product
	if err := e.conn.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.Quantity
}

func listParams(limit int) pagination.Params {
	return pagination.Params{Limit: limit}
}

func checkoutInput() CreateOrderInput {
	return CreateOrderInput{
		Address: &addresses.AddressInput{
			Street:     "12 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62704",
			Country:    "US",
		},
	}
}
