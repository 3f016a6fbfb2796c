package addresses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

// Service exposes address book operations scoped to the owning user.
type Service interface {
	CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressDTO, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*AddressDTO, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

// AddressInput is the validated payload for create and update.
type AddressInput struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      *string
}

// AddressDTO is the transport shape for a shipping address.
type AddressDTO struct {
	ID         uuid.UUID `json:"id"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      *string   `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type service struct {
	repo *Repository
}

// NewService constructs an address service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressDTO, error) {
	address := &models.Address{
		UserID:     userID,
		Street:     input.Street,
		City:       input.City,
		State:      input.State,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		Phone:      input.Phone,
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating address")
	}
	return fromModel(address), nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addresses")
	}

	dtos := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *fromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*AddressDTO, error) {
	address, err := s.findOwned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	address.Street = input.Street
	address.City = input.City
	address.State = input.State
	address.PostalCode = input.PostalCode
	address.Country = input.Country
	address.Phone = input.Phone

	if err := s.repo.Save(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving address")
	}
	return fromModel(address), nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, userID, addressID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting address")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

func (s *service) findOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	address, err := s.repo.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
	}
	if address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to user")
	}
	return address, nil
}

func fromModel(a *models.Address) *AddressDTO {
	return &AddressDTO{
		ID:         a.ID,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
