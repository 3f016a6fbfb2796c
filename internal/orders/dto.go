package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
)

// OrderDTO is the transport shape for an order. ID carries the external
// identifier; the database primary key never leaves the service layer.
type OrderDTO struct {
	ID            string              `json:"id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TransactionID *string             `json:"transaction_id,omitempty"`
	AddressID     uuid.UUID           `json:"address_id"`
	TotalItem     int                 `json:"total_item"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	OrderDate     time.Time           `json:"order_date"`
	DeliveryDate  *time.Time          `json:"delivery_date,omitempty"`
	Items         []OrderItemDTO      `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderItemDTO is one immutable order line snapshot.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderListDTO is one DTO page plus the token for the next page.
type OrderListDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromOrderModel converts a persisted order into its transport shape.
func FromOrderModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	return &OrderDTO{
		ID:            o.PublicID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		TransactionID: o.TransactionID,
		AddressID:     o.AddressID,
		TotalItem:     o.TotalItem,
		TotalPrice:    o.TotalPrice,
		OrderDate:     o.OrderDate,
		DeliveryDate:  o.DeliveryDate,
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
