package models

import (
	"gorm.io/gorm"
)

type IngredientCategory struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

type Ingredient struct {
	gorm.Model
	Name        string              `json:"name" gorm:"not null"`
	Description string              `json:"description"`
	CategoryID  *uint               `json:"category_id"`
	Category    *IngredientCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	PriceInKobo int64               `json:"price_in_kobo" gorm:"not null"`
	Stock       int64               `json:"stock" gorm:"not null;default:0"`
	ImageURL    string              `json:"image_url"`
}

type Tea struct {
	gorm.Model
	Name        string       `json:"name" gorm:"not null"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients,omitempty" gorm:"many2many:tea_ingredients;"`
	PriceInKobo int64        `json:"price_in_kobo" gorm:"not null"`
	Stock       int64        `json:"stock" gorm:"not null;default:0"`
	ImageURL    string       `json:"image_url"`
}
