package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamiz/ecommerce-backend/pkg/db"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()

	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewFromConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Widget",
		Price: decimal.Zero,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:      "Widget",
		Price:     decimal.RequireFromString("19.99"),
		Quantity:  4,
		IsActive:  true,
		ImageURLs: []string{"https://cdn.example.com/widget.png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fetched, err := svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !fetched.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("price = %s", fetched.Price)
	}
	if len(fetched.Images) != 1 || fetched.Images[0].URL != "https://cdn.example.com/widget.png" {
		t.Fatalf("images not persisted: %+v", fetched.Images)
	}
}

func TestUpdateProductReplacesImages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:      "Widget",
		Price:     decimal.RequireFromString("19.99"),
		Quantity:  4,
		IsActive:  true,
		ImageURLs: []string{"https://cdn.example.com/old.png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Widget Pro"
	urls := []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		Name:      &name,
		ImageURLs: &urls,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Widget Pro" {
		t.Fatalf("name = %q", updated.Name)
	}

	fetched, err := svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(fetched.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(fetched.Images))
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:     "Widget",
		Price:    decimal.RequireFromString("5.00"),
		Quantity: 1,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	err = svc.DeleteProduct(ctx, created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
