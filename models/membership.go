package models

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

type Membership struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	PriceInKobo int64  `json:"price_in_kobo" gorm:"not null"`
	Description string `json:"description"`
}

// Subscription is the authoritative record per (user, membership). A repeated
// purchase overwrites the existing row back to active rather than adding a
// second one.
type Subscription struct {
	gorm.Model
	UserID           uint               `json:"user_id" gorm:"not null;uniqueIndex:idx_user_membership"`
	User             User               `json:"-" gorm:"foreignKey:UserID"`
	MembershipID     uint               `json:"membership_id" gorm:"not null;uniqueIndex:idx_user_membership"`
	Membership       Membership         `json:"membership,omitempty" gorm:"foreignKey:MembershipID"`
	Status           SubscriptionStatus `json:"status" gorm:"not null;index"`
	StartDate        time.Time          `json:"start_date"`
	RenewalDate      time.Time          `json:"renewal_date"`
	PaymentReference string             `json:"payment_reference"`
}
