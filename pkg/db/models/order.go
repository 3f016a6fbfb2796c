package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phamiz/ecommerce-backend/pkg/enums"
)

// Order is created atomically from a cart snapshot. PublicID is the
// externally visible order identifier, distinct from the primary key.
// Items are immutable in membership once created; only status fields
// change afterwards.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	PublicID      string              `gorm:"column:public_id;not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID     uuid.UUID           `gorm:"column:address_id;type:uuid;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'COD'"`
	TransactionID *string             `gorm:"column:transaction_id"`
	TotalItem     int                 `gorm:"column:total_item;not null"`
	TotalPrice    decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	OrderDate     time.Time           `gorm:"column:order_date;not null"`
	DeliveryDate  *time.Time          `gorm:"column:delivery_date"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
