package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamiz/ecommerce-backend/pkg/db/models"
)

// CartDTO is the transport shape for the user's cart aggregate.
type CartDTO struct {
	ID         uuid.UUID       `json:"id"`
	TotalItem  int             `json:"total_item"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []CartItemDTO   `json:"items"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CartItemDTO is one cart line with its price snapshot.
type CartItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Totals derives the aggregate counters from a full set of lines.
func Totals(items []models.CartItem) (int, decimal.Decimal) {
	totalItem := 0
	totalPrice := decimal.Zero
	for _, item := range items {
		totalItem += item.Quantity
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totalPrice = totalPrice.Add(line)
	}
	return totalItem, totalPrice
}

// FromCartModel converts a persisted cart into its transport shape.
func FromCartModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}

	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		dto := CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Product != nil {
			dto.ProductName = item.Product.Name
		}
		items = append(items, dto)
	}

	return &CartDTO{
		ID:         c.ID,
		TotalItem:  c.TotalItem,
		TotalPrice: c.TotalPrice,
		Items:      items,
		UpdatedAt:  c.UpdatedAt,
	}
}
