package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamiz/ecommerce-backend/pkg/db/models"
)

// ProductDTO is the transport shape for a catalog product.
type ProductDTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Brand       *string           `json:"brand,omitempty"`
	Price       decimal.Decimal   `json:"price"`
	Quantity    int               `json:"quantity"`
	IsActive    bool              `json:"is_active"`
	Images      []ProductImageDTO `json:"images"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProductImageDTO is one display image attached to a product.
type ProductImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Brand       *string
	Price       decimal.Decimal
	Quantity    int
	IsActive    bool
	ImageURLs   []string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Brand       *string
	Price       *decimal.Decimal
	Quantity    *int
	IsActive    *bool
	ImageURLs   *[]string
}

// ProductListResult is one DTO page plus the token for the next page.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted product into its transport shape.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	images := make([]ProductImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ProductImageDTO{
			ID:       img.ID,
			URL:      img.URL,
			Position: img.Position,
		})
	}

	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Price:       p.Price,
		Quantity:    p.Quantity,
		IsActive:    p.IsActive,
		Images:      images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
