package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errEmptyCart       = errors.New("cart is empty")
	errInvalidDelivery = errors.New("invalid delivery details")
	errNotAddressOwner = errors.New("delivery address does not belong to this user")
)

// DeliveryChoice is the delivery portion of place-order and payment-initiate
// requests. Pickup takes a pickup_id; delivery takes either an existing
// address id or the fields for a new one.
type DeliveryChoice struct {
	DeliveryType      models.DeliveryType `json:"delivery_type" binding:"required,oneof=pickup delivery"`
	PickupID          *uint               `json:"pickup_id"`
	DeliveryAddressID *uint               `json:"delivery_address_id"`
	AddressLine1      string              `json:"address_line1"`
	AddressLine2      string              `json:"address_line2"`
	City              string              `json:"city"`
	State             string              `json:"state"`
	ZipCode           string              `json:"zip_code"`
	DeliveryFeeInKobo int64               `json:"delivery_fee_in_kobo"`
}

// deliveryDetails is the resolved snapshot written onto the order.
type deliveryDetails struct {
	DeliveryType      models.DeliveryType
	PickupLocation    string
	AddressID         *uint
	AddressLine1      string
	AddressLine2      string
	City              string
	State             string
	ZipCode           string
	DeliveryFeeInKobo int64
}

// resolveDelivery turns a DeliveryChoice into the snapshot stored on the
// order, creating a DeliveryAddress row when new address fields are supplied.
//
// The delivery fee for the "delivery" type is taken verbatim from the client.
// That matches the behavior this endpoint has always had; see DESIGN.md.
func resolveDelivery(tx *gorm.DB, userID uint, choice DeliveryChoice) (*deliveryDetails, error) {
	details := &deliveryDetails{DeliveryType: choice.DeliveryType}

	switch choice.DeliveryType {
	case models.DeliveryTypePickup:
		if choice.PickupID == nil {
			return nil, fmt.Errorf("%w: pickup_id is required for pickup", errInvalidDelivery)
		}
		var pickup models.PickupLocation
		if err := tx.First(&pickup, *choice.PickupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: pickup location not found", errInvalidDelivery)
			}
			return nil, err
		}
		details.PickupLocation = pickup.Name + " - " + pickup.Branch
		details.DeliveryFeeInKobo = pickup.DeliveryFeeInKobo

	case models.DeliveryTypeDelivery:
		var addr models.DeliveryAddress
		if choice.DeliveryAddressID != nil {
			if err := tx.First(&addr, *choice.DeliveryAddressID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: delivery address not found", errInvalidDelivery)
				}
				return nil, err
			}
			if addr.UserID != userID {
				return nil, errNotAddressOwner
			}
		} else {
			if choice.AddressLine1 == "" || choice.City == "" {
				return nil, fmt.Errorf("%w: address_line1 and city are required", errInvalidDelivery)
			}
			addr = models.DeliveryAddress{
				UserID:       userID,
				AddressLine1: choice.AddressLine1,
				AddressLine2: choice.AddressLine2,
				City:         choice.City,
				State:        choice.State,
				ZipCode:      choice.ZipCode,
			}
			if err := tx.Create(&addr).Error; err != nil {
				return nil, err
			}
		}
		details.AddressID = &addr.ID
		details.AddressLine1 = addr.AddressLine1
		details.AddressLine2 = addr.AddressLine2
		details.City = addr.City
		details.State = addr.State
		details.ZipCode = addr.ZipCode
		details.DeliveryFeeInKobo = choice.DeliveryFeeInKobo

	default:
		return nil, fmt.Errorf("%w: unknown delivery type %q", errInvalidDelivery, choice.DeliveryType)
	}

	return details, nil
}

// cartSubtotal computes Σ(item price × line quantity) over the cart from the
// current catalog rows.
func cartSubtotal(tx *gorm.DB, cartID uint) (int64, []models.CartItem, error) {
	var lines []models.CartItem
	if err := tx.Preload("Tea").Preload("Ingredient").Where("cart_id = ?", cartID).Find(&lines).Error; err != nil {
		return 0, nil, err
	}
	if len(lines) == 0 {
		return 0, nil, errEmptyCart
	}

	var subtotal int64
	for _, line := range lines {
		switch {
		case line.Ingredient != nil:
			subtotal += line.Ingredient.PriceInKobo * line.Quantity
		case line.Tea != nil:
			subtotal += line.Tea.PriceInKobo * line.Quantity
		default:
			return 0, nil, fmt.Errorf("cart item %d references no catalog row", line.ID)
		}
	}
	return subtotal, lines, nil
}

// buildOrderFromCart creates the order and its items from the caller's cart,
// then drains the cart. Stock is NOT touched here: every line's quantity was
// already reserved when it entered the cart.
func buildOrderFromCart(tx *gorm.DB, userID uint, details *deliveryDetails, paymentRef *string, paymentStatus models.PaymentStatus) (*models.Order, error) {
	cart, err := getOrCreateCart(tx, userID)
	if err != nil {
		return nil, err
	}

	subtotal, lines, err := cartSubtotal(tx, cart.ID)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		UserID:            userID,
		TotalPriceInKobo:  subtotal + details.DeliveryFeeInKobo,
		DeliveryType:      details.DeliveryType,
		PickupLocation:    details.PickupLocation,
		AddressLine1:      details.AddressLine1,
		AddressLine2:      details.AddressLine2,
		City:              details.City,
		State:             details.State,
		ZipCode:           details.ZipCode,
		DeliveryFeeInKobo: details.DeliveryFeeInKobo,
		PaymentReference:  paymentRef,
		PaymentStatus:     paymentStatus,
	}

	for _, line := range lines {
		item := models.OrderItem{
			TeaID:        line.TeaID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		}
		if line.Ingredient != nil {
			item.PriceInKoboAtOrder = line.Ingredient.PriceInKobo
		} else {
			item.PriceInKoboAtOrder = line.Tea.PriceInKobo
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	// Drain the cart without releasing stock.
	if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}

	return &order, nil
}

// PlaceOrderHandler is the no-payment checkout path: cart straight to an
// unpaid order.
func PlaceOrderHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database connection failed"})
		return
	}

	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var choice DeliveryChoice
	if err := c.ShouldBindJSON(&choice); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order *models.Order
	err := DB.Transaction(func(tx *gorm.DB) error {
		details, err := resolveDelivery(tx, claims.UserID, choice)
		if err != nil {
			return err
		}
		order, err = buildOrderFromCart(tx, claims.UserID, details, nil, models.PaymentStatusUnpaid)
		return err
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	var created models.Order
	if err := DB.Preload("Items.Tea").Preload("Items.Ingredient").First(&created, order.ID).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusCreated, order)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, errInvalidDelivery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errNotAddressOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		log.Printf("Checkout failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
