package models

import (
	"gorm.io/gorm"
)

type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Order is immutable once created except for the payment fields, which are
// stamped exactly once when a payment reference is finalized.
type Order struct {
	gorm.Model
	UserID            uint          `json:"user_id" gorm:"not null;index"`
	User              User          `json:"-" gorm:"foreignKey:UserID"`
	Items             []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
	TotalPriceInKobo  int64         `json:"total_price_in_kobo" gorm:"not null"`
	DeliveryType      DeliveryType  `json:"delivery_type" gorm:"not null"`
	PickupLocation    string        `json:"pickup_location"`
	AddressLine1      string        `json:"delivery_address_line1"`
	AddressLine2      string        `json:"delivery_address_line2"`
	City              string        `json:"delivery_city"`
	State             string        `json:"delivery_state"`
	ZipCode           string        `json:"delivery_zip_code"`
	DeliveryFeeInKobo int64         `json:"delivery_fee_in_kobo"`
	PaymentReference  *string       `json:"payment_reference" gorm:"uniqueIndex"` // idempotency guard for confirm
	PaymentStatus     PaymentStatus `json:"payment_status" gorm:"not null;default:unpaid"`
}

type OrderItem struct {
	gorm.Model
	OrderID            uint        `json:"order_id" gorm:"not null;index"`
	TeaID              *uint       `json:"tea_id"`
	Tea                *Tea        `json:"tea,omitempty" gorm:"foreignKey:TeaID"`
	IngredientID       *uint       `json:"ingredient_id"`
	Ingredient         *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
	Quantity           int64       `json:"quantity" gorm:"not null"`
	PriceInKoboAtOrder int64       `json:"price_in_kobo_at_order" gorm:"not null"`
}

type PickupLocation struct {
	gorm.Model
	Name              string `json:"name" gorm:"not null"`
	Address           string `json:"address"`
	City              string `json:"city"`
	Branch            string `json:"branch"`
	DeliveryFeeInKobo int64  `json:"delivery_fee_in_kobo"`
}

type DeliveryAddress struct {
	gorm.Model
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	User         User   `json:"-" gorm:"foreignKey:UserID"`
	AddressLine1 string `json:"address_line1" gorm:"not null"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" gorm:"not null"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	IsDefault    bool   `json:"is_default"`
}
