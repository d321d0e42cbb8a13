package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPaid = "paid"
)

type Order struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;not null"`
	UserEmail       string          `json:"user_email" gorm:"index;not null"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(10);not null"`
	Status          string          `json:"status" gorm:"type:varchar(20);not null"`
	PaymentIntentID string          `json:"payment_intent_id" gorm:"index"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	Items           []OrderItem     `json:"order_items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID       int64           `json:"product_id" gorm:"not null"`
	Title           string          `json:"title"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" gorm:"type:numeric(10,2);not null"`
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Category{}, &Product{}, &Account{}, &Order{}, &OrderItem{})
}
