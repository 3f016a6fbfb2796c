package reviews

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

func setupReviewsTest(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.ProductImage{},
		&models.Review{},
		&models.Rating{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(conn), products.NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func createProduct(t *testing.T, conn *gorm.DB) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    decimal.RequireFromString("10.00"),
		Quantity: 5,
		IsActive: true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestCreateAndListReviews(t *testing.T) {
	svc, conn := setupReviewsTest(t)
	ctx := context.Background()
	product := createProduct(t, conn)
	userID := uuid.New()

	created, err := svc.CreateReview(ctx, userID, product.ID, "solid build quality")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Content != "solid build quality" {
		t.Fatalf("content = %q", created.Content)
	}

	rows, err := svc.ListReviews(ctx, product.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}

	_, err = svc.CreateReview(ctx, userID, product.ID, "   ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank content, got %v", err)
	}
}

func TestDeleteReviewAuthorization(t *testing.T) {
	svc, conn := setupReviewsTest(t)
	ctx := context.Background()
	product := createProduct(t, conn)
	author := uuid.New()

	created, err := svc.CreateReview(ctx, author, product.ID, "fine")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.DeleteReview(ctx, uuid.New(), enums.UserRoleUser, created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := svc.DeleteReview(ctx, uuid.New(), enums.UserRoleAdmin, created.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestRateProductUpsert(t *testing.T) {
	svc, conn := setupReviewsTest(t)
	ctx := context.Background()
	product := createProduct(t, conn)
	alice := uuid.New()
	bob := uuid.New()

	if _, err := svc.RateProduct(ctx, alice, product.ID, 4); err != nil {
		t.Fatalf("rate: %v", err)
	}
	summary, err := svc.RateProduct(ctx, bob, product.ID, 2)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if summary.Count != 2 || math.Abs(summary.Average-3.0) > 1e-9 {
		t.Fatalf("summary = %+v", summary)
	}

	// Re-rating replaces, never accumulates.
	summary, err = svc.RateProduct(ctx, alice, product.ID, 5)
	if err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	if summary.Count != 2 || math.Abs(summary.Average-3.5) > 1e-9 {
		t.Fatalf("summary after re-rate = %+v", summary)
	}

	_, err = svc.RateProduct(ctx, alice, product.ID, 6)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for out-of-range score, got %v", err)
	}
}
