package handlers

import (
	"errors"
	"fmt"

	"github.com/TIJANI0826/Mybru/models"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned by reserveStock when the requested quantity
// exceeds what is available. State is left untouched in that case.
var ErrInsufficientStock = errors.New("not enough stock")

func stockTable(ref models.ItemRef) (interface{}, error) {
	switch ref.Kind {
	case models.ItemKindTea:
		return &models.Tea{}, nil
	case models.ItemKindIngredient:
		return &models.Ingredient{}, nil
	default:
		return nil, models.ErrItemNotFound
	}
}

// reserveStock decrements an item's stock by qty with a guarded UPDATE
// (stock >= qty in the WHERE clause), so two concurrent reservations can never
// drive the counter negative: the second one simply matches zero rows.
func reserveStock(tx *gorm.DB, ref models.ItemRef, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", qty)
	}

	table, err := stockTable(ref)
	if err != nil {
		return err
	}

	result := tx.Model(table).
		Where("id = ? AND stock >= ?", ref.ID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the row is missing or the stock is short; tell them apart.
		if _, err := ref.Resolve(tx); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

// releaseStock returns qty units to an item's stock. Releases are
// unconditional: they undo a prior reservation.
func releaseStock(tx *gorm.DB, ref models.ItemRef, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", qty)
	}

	table, err := stockTable(ref)
	if err != nil {
		return err
	}

	result := tx.Model(table).
		Where("id = ?", ref.ID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrItemNotFound
	}
	return nil
}
