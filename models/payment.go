package models

import (
	"time"

	"gorm.io/gorm"
)

type IntentKind string

const (
	IntentKindOrder      IntentKind = "order"
	IntentKindMembership IntentKind = "membership"
)

type IntentStatus string

const (
	IntentStatusPending  IntentStatus = "pending"
	IntentStatusConsumed IntentStatus = "consumed"
)

// PaymentIntent snapshots a checkout at payment-initiation time so that
// verification (whichever path arrives first) can build the order without
// trusting anything from the provider callback beyond the reference.
type PaymentIntent struct {
	gorm.Model
	Reference         string       `json:"reference" gorm:"uniqueIndex;not null"`
	UserID            uint         `json:"user_id" gorm:"not null;index"`
	Kind              IntentKind   `json:"kind" gorm:"not null"`
	MembershipID      *uint        `json:"membership_id"`
	DeliveryType      DeliveryType `json:"delivery_type"`
	PickupID          *uint        `json:"pickup_id"`
	DeliveryAddressID *uint        `json:"delivery_address_id"`
	AddressLine1      string       `json:"address_line1"`
	AddressLine2      string       `json:"address_line2"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	ZipCode           string       `json:"zip_code"`
	DeliveryFeeInKobo int64        `json:"delivery_fee_in_kobo"`
	TotalPriceInKobo  int64        `json:"total_price_in_kobo" gorm:"not null"`
	Status            IntentStatus `json:"status" gorm:"not null;default:pending"`
	ExpiresAt         time.Time    `json:"expires_at" gorm:"not null"`
}

// Expired reports whether the intent is past its expiry; expired intents are
// treated as unknown references.
func (pi *PaymentIntent) Expired(now time.Time) bool {
	return now.After(pi.ExpiresAt)
}
