package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddToCartRequest takes exactly one of tea_id / ingredient_id.
type AddToCartRequest struct {
	TeaID        *uint `json:"tea_id"`
	IngredientID *uint `json:"ingredient_id"`
	Quantity     int64 `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	CartItemID uint   `json:"cart_item_id" binding:"required"`
	Quantity   *int64 `json:"quantity" binding:"required"`
}

type RemoveFromCartRequest struct {
	CartItemID uint `json:"cart_item_id" binding:"required"`
}

// getOrCreateCart finds the caller's cart, creating it on first access. The
// unique index on user_id resolves concurrent first accesses: the loser
// re-reads the winner's row.
func getOrCreateCart(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := tx.Create(&cart).Error; err != nil {
		var existing models.Cart
		if lookupErr := tx.Where("user_id = ?", userID).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &cart, nil
}

func loadCartResponse(c *gin.Context, cartID uint) {
	var cart models.Cart
	if err := DB.Preload("Items.Tea").Preload("Items.Ingredient").First(&cart, cartID).Error; err != nil {
		log.Printf("Failed to reload cart %d: %v", cartID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	c.JSON(http.StatusOK, cart)
}

// GetCartHandler returns the caller's cart, lazily creating it.
func GetCartHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	claims := MustClaims(c)
	if claims == nil {
		return
	}

	cart, err := getOrCreateCart(DB, claims.UserID)
	if err != nil {
		log.Printf("Failed to get cart for user %d: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	loadCartResponse(c, cart.ID)
}

// AddToCartHandler adds an item to the caller's cart, reserving stock for the
// added quantity. If a line for the item already exists, quantities merge and
// only the delta is reserved.
func AddToCartHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref, err := models.ItemRefFromIDs(req.TeaID, req.IngredientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cartID uint
	err = DB.Transaction(func(tx *gorm.DB) error {
		if _, err := ref.Resolve(tx); err != nil {
			return err
		}

		cart, err := getOrCreateCart(tx, claims.UserID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		// Merge with an existing line for the same item, if any.
		var line models.CartItem
		lineQuery := tx.Where("cart_id = ?", cart.ID)
		if ref.Kind == models.ItemKindTea {
			lineQuery = lineQuery.Where("tea_id = ?", ref.ID)
		} else {
			lineQuery = lineQuery.Where("ingredient_id = ?", ref.ID)
		}

		findErr := lineQuery.First(&line).Error
		switch {
		case findErr == nil:
			if err := reserveStock(tx, ref, req.Quantity); err != nil {
				return err
			}
			return tx.Model(&line).UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity)).Error
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if err := reserveStock(tx, ref, req.Quantity); err != nil {
				return err
			}
			line = models.CartItem{CartID: cart.ID, Quantity: req.Quantity}
			if ref.Kind == models.ItemKindTea {
				line.TeaID = &ref.ID
			} else {
				line.IngredientID = &ref.ID
			}
			return tx.Create(&line).Error
		default:
			return findErr
		}
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	loadCartResponse(c, cartID)
}

// UpdateCartItemHandler changes a line's quantity, reserving or releasing the
// difference. A quantity of zero or less removes the line entirely.
func UpdateCartItemHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newQuantity := *req.Quantity

	var cartID uint
	err := DB.Transaction(func(tx *gorm.DB) error {
		line, err := ownedCartItem(tx, req.CartItemID, claims.UserID)
		if err != nil {
			return err
		}
		cartID = line.CartID

		ref, err := line.Ref()
		if err != nil {
			return err
		}

		if newQuantity <= 0 {
			// Remove the line and restore its full quantity.
			if err := releaseStock(tx, ref, line.Quantity); err != nil {
				return err
			}
			return tx.Unscoped().Delete(line).Error
		}

		diff := newQuantity - line.Quantity
		if diff > 0 {
			if err := reserveStock(tx, ref, diff); err != nil {
				return err
			}
		} else if diff < 0 {
			if err := releaseStock(tx, ref, -diff); err != nil {
				return err
			}
		}
		return tx.Model(line).UpdateColumn("quantity", newQuantity).Error
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	loadCartResponse(c, cartID)
}

// RemoveFromCartHandler deletes a line and restores its stock.
func RemoveFromCartHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var req RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cartID uint
	err := DB.Transaction(func(tx *gorm.DB) error {
		line, err := ownedCartItem(tx, req.CartItemID, claims.UserID)
		if err != nil {
			return err
		}
		cartID = line.CartID

		ref, err := line.Ref()
		if err != nil {
			return err
		}

		if err := releaseStock(tx, ref, line.Quantity); err != nil {
			return err
		}
		return tx.Unscoped().Delete(line).Error
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	loadCartResponse(c, cartID)
}

// ClearCartHandler releases every line's stock and empties the cart. Clearing
// an already-empty cart is a no-op.
func ClearCartHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var cartID uint
	err := DB.Transaction(func(tx *gorm.DB) error {
		cart, err := getOrCreateCart(tx, claims.UserID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		var lines []models.CartItem
		if err := tx.Where("cart_id = ?", cart.ID).Find(&lines).Error; err != nil {
			return err
		}

		for _, line := range lines {
			ref, err := line.Ref()
			if err != nil {
				return err
			}
			if err := releaseStock(tx, ref, line.Quantity); err != nil {
				return err
			}
		}

		return tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	loadCartResponse(c, cartID)
}

var errNotCartOwner = errors.New("cart item does not belong to this user")

// ownedCartItem loads a cart line and verifies the caller owns its cart.
func ownedCartItem(tx *gorm.DB, cartItemID, userID uint) (*models.CartItem, error) {
	var line models.CartItem
	if err := tx.First(&line, cartItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	var cart models.Cart
	if err := tx.First(&cart, line.CartID).Error; err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, errNotCartOwner
	}
	return &line, nil
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
	case errors.Is(err, ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough stock"})
	case errors.Is(err, errNotCartOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	default:
		log.Printf("Cart operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
