package models

import (
	"errors"

	"gorm.io/gorm"
)

type ItemKind string

const (
	ItemKindTea        ItemKind = "tea"
	ItemKindIngredient ItemKind = "ingredient"
)

var ErrItemNotFound = errors.New("item not found")

// ItemRef identifies exactly one stocked item, either a tea or an ingredient.
// Cart and order rows store the two foreign keys separately, but all code paths
// that touch stock go through a resolved ItemRef so the "tea xor ingredient"
// rule is enforced in one place.
type ItemRef struct {
	Kind ItemKind
	ID   uint
}

// StockedItem is the resolved catalog row behind an ItemRef.
type StockedItem struct {
	Ref         ItemRef
	Name        string
	PriceInKobo int64
	Stock       int64
}

// Resolve loads the catalog row an ItemRef points at.
func (r ItemRef) Resolve(db *gorm.DB) (*StockedItem, error) {
	switch r.Kind {
	case ItemKindTea:
		var tea Tea
		if err := db.First(&tea, r.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		return &StockedItem{Ref: r, Name: tea.Name, PriceInKobo: tea.PriceInKobo, Stock: tea.Stock}, nil
	case ItemKindIngredient:
		var ingredient Ingredient
		if err := db.First(&ingredient, r.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		return &StockedItem{Ref: r, Name: ingredient.Name, PriceInKobo: ingredient.PriceInKobo, Stock: ingredient.Stock}, nil
	default:
		return nil, ErrItemNotFound
	}
}

// ItemRefFromIDs builds an ItemRef from the tea_id/ingredient_id pair used on
// the wire and in cart rows. Exactly one of the two must be set.
func ItemRefFromIDs(teaID, ingredientID *uint) (ItemRef, error) {
	if teaID != nil && ingredientID != nil {
		return ItemRef{}, errors.New("tea_id and ingredient_id are mutually exclusive")
	}
	if teaID != nil {
		return ItemRef{Kind: ItemKindTea, ID: *teaID}, nil
	}
	if ingredientID != nil {
		return ItemRef{Kind: ItemKindIngredient, ID: *ingredientID}, nil
	}
	return ItemRef{}, errors.New("either tea_id or ingredient_id is required")
}
