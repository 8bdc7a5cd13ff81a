package models

import (
	"gorm.io/gorm"
)

type Cart struct {
	gorm.Model
	UserID uint       `json:"user_id" gorm:"uniqueIndex;not null"` // one cart per user
	User   User       `json:"-" gorm:"foreignKey:UserID"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

type CartItem struct {
	gorm.Model
	CartID       uint        `json:"cart_id" gorm:"not null;index"`
	TeaID        *uint       `json:"tea_id"`
	Tea          *Tea        `json:"tea,omitempty" gorm:"foreignKey:TeaID"`
	IngredientID *uint       `json:"ingredient_id"`
	Ingredient   *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
	Quantity     int64       `json:"quantity" gorm:"not null"`
}

// Ref returns the tagged item reference for this line.
func (ci *CartItem) Ref() (ItemRef, error) {
	return ItemRefFromIDs(ci.TeaID, ci.IngredientID)
}
