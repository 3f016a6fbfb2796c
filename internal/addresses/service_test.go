package addresses

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Address{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func sampleInput() AddressInput {
	return AddressInput{
		Street:     "12 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62704",
		Country:    "US",
	}
}

func TestCreateAndListAddresses(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateAddress(ctx, userID, sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected id assigned")
	}

	rows, err := svc.ListAddresses(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].City != "Springfield" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestUpdateAddressOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateAddress(ctx, owner, sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.UpdateAddress(ctx, uuid.New(), created.ID, sampleInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign user, got %v", err)
	}

	input := sampleInput()
	input.City = "Chicago"
	updated, err := svc.UpdateAddress(ctx, owner, created.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.City != "Chicago" {
		t.Fatalf("city = %q", updated.City)
	}
}

func TestDeleteAddress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateAddress(ctx, userID, sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteAddress(ctx, userID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	err = svc.DeleteAddress(ctx, userID, created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
