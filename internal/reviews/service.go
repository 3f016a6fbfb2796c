package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
)

// ReviewDTO is the transport shape for a product review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingDTO reports a product's aggregate score.
type RatingDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Average   float64   `json:"average"`
	Count     int64     `json:"count"`
}

// Service exposes review and rating operations.
type Service interface {
	CreateReview(ctx context.Context, userID, productID uuid.UUID, content string) (*ReviewDTO, error)
	ListReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	DeleteReview(ctx context.Context, userID uuid.UUID, role enums.UserRole, reviewID uuid.UUID) error
	RateProduct(ctx context.Context, userID, productID uuid.UUID, value float64) (*RatingDTO, error)
	GetRating(ctx context.Context, productID uuid.UUID) (*RatingDTO, error)
}

type service struct {
	repo     *Repository
	products *products.Repository
}

// NewService constructs a reviews service instance.
func NewService(repo *Repository, productsRepo *products.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo, products: productsRepo}, nil
}

func (s *service) CreateReview(ctx context.Context, userID, productID uuid.UUID, content string) (*ReviewDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review content is required")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Content:   content,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating review")
	}
	return reviewFromModel(review), nil
}

func (s *service) ListReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reviews")
	}

	dtos := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *reviewFromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) DeleteReview(ctx context.Context, userID uuid.UUID, role enums.UserRole, reviewID uuid.UUID) error {
	review, err := s.repo.FindReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading review")
	}
	if review.UserID != userID && role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "review does not belong to user")
	}

	deleted, err := s.repo.DeleteReview(ctx, reviewID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting review")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}

func (s *service) RateProduct(ctx context.Context, userID, productID uuid.UUID, value float64) (*RatingDTO, error) {
	if value < 0 || value > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		UserID:    userID,
		ProductID: productID,
		Value:     value,
	}
	if err := s.repo.UpsertRating(ctx, rating); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving rating")
	}
	return s.GetRating(ctx, productID)
}

func (s *service) GetRating(ctx context.Context, productID uuid.UUID) (*RatingDTO, error) {
	summary, err := s.repo.SummarizeRatings(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarizing ratings")
	}
	return &RatingDTO{
		ProductID: productID,
		Average:   summary.Average,
		Count:     summary.Count,
	}, nil
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return nil
}

func reviewFromModel(r *models.Review) *ReviewDTO {
	return &ReviewDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}
