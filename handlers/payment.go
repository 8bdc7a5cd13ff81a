package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/TIJANI0826/Mybru/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const intentTTL = 24 * time.Hour

var (
	errUnknownReference = errors.New("unknown payment reference")
	errPaymentNotOK     = errors.New("payment was not successful")
)

// newPaymentReference builds references like ORDER-7-3F2A9C81D04B.
func newPaymentReference(prefix string, userID uint) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("%s-%d-%s", prefix, userID, token)
}

// InitiatePaymentHandler computes the cart total the same way place-order
// does, snapshots it into a PaymentIntent, and starts a Paystack transaction.
// The order itself is only created once the payment is verified.
func InitiatePaymentHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var choice DeliveryChoice
	if err := c.ShouldBindJSON(&choice); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	reference := newPaymentReference("ORDER", claims.UserID)
	var intent models.PaymentIntent

	err := DB.Transaction(func(tx *gorm.DB) error {
		details, err := resolveDelivery(tx, claims.UserID, choice)
		if err != nil {
			return err
		}

		cart, err := getOrCreateCart(tx, claims.UserID)
		if err != nil {
			return err
		}
		subtotal, _, err := cartSubtotal(tx, cart.ID)
		if err != nil {
			return err
		}

		intent = models.PaymentIntent{
			Reference:         reference,
			UserID:            claims.UserID,
			Kind:              models.IntentKindOrder,
			DeliveryType:      choice.DeliveryType,
			PickupID:          choice.PickupID,
			DeliveryAddressID: details.AddressID,
			AddressLine1:      choice.AddressLine1,
			AddressLine2:      choice.AddressLine2,
			City:              choice.City,
			State:             choice.State,
			ZipCode:           choice.ZipCode,
			DeliveryFeeInKobo: details.DeliveryFeeInKobo,
			TotalPriceInKobo:  subtotal + details.DeliveryFeeInKobo,
			Status:            models.IntentStatusPending,
			ExpiresAt:         time.Now().Add(intentTTL),
		}
		return tx.Create(&intent).Error
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	init, err := Paystack.Initialize(utils.InitializeRequest{
		AmountInKobo: intent.TotalPriceInKobo,
		Email:        user.Email,
		Reference:    reference,
		Metadata: map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
			"kind":     string(models.IntentKindOrder),
		},
	})
	if err != nil {
		log.Printf("Paystack initialize failed for %s: %v", reference, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not connect to payment service", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            true,
		"authorization_url": init.AuthorizationURL,
		"access_code":       init.AccessCode,
		"reference":         reference,
	})
}

// VerifyPaymentHandler is the polling path: re-check the transaction with
// Paystack, then finalize the order for the reference.
func VerifyPaymentHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	reference := c.Query("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reference is required"})
		return
	}

	verify, err := Paystack.Verify(reference)
	if err != nil {
		log.Printf("Paystack verify failed for %s: %v", reference, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not verify payment", "details": err.Error()})
		return
	}
	if verify.Status != "success" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment was not successful", "status": verify.Status})
		return
	}

	order, err := finalizeOrderPayment(reference)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	var created models.Order
	if err := DB.Preload("Items.Tea").Preload("Items.Ingredient").First(&created, order.ID).Error; err != nil {
		c.JSON(http.StatusCreated, gin.H{"status": true, "order": order})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  true,
		"message": "Payment verified and order created successfully",
		"order":   created,
	})
}

// finalizeOrderPayment turns a verified payment reference into an order,
// exactly once. The unique index on orders.payment_reference is the guard:
// when two callers race, the loser's insert fails and it returns the winner's
// order instead.
func finalizeOrderPayment(reference string) (*models.Order, error) {
	// Fast path: the order already exists for this reference.
	if order, err := orderByReference(DB, reference); err == nil {
		return order, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var order *models.Order
	err := DB.Transaction(func(tx *gorm.DB) error {
		var intent models.PaymentIntent
		if err := tx.Where("reference = ? AND kind = ?", reference, models.IntentKindOrder).First(&intent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUnknownReference
			}
			return err
		}
		if intent.Expired(time.Now()) {
			return errUnknownReference
		}

		details, err := resolveDelivery(tx, intent.UserID, DeliveryChoice{
			DeliveryType:      intent.DeliveryType,
			PickupID:          intent.PickupID,
			DeliveryAddressID: intent.DeliveryAddressID,
			AddressLine1:      intent.AddressLine1,
			AddressLine2:      intent.AddressLine2,
			City:              intent.City,
			State:             intent.State,
			ZipCode:           intent.ZipCode,
			DeliveryFeeInKobo: intent.DeliveryFeeInKobo,
		})
		if err != nil {
			return err
		}

		ref := reference
		order, err = buildOrderFromCart(tx, intent.UserID, details, &ref, models.PaymentStatusPaid)
		if err != nil {
			return err
		}

		return tx.Model(&models.PaymentIntent{}).
			Where("reference = ? AND status = ?", reference, models.IntentStatusPending).
			Update("status", models.IntentStatusConsumed).Error
	})
	if err != nil {
		// A concurrent finalize may have won the race on the unique
		// payment_reference index; hand back the order it created.
		if existing, lookupErr := orderByReference(DB, reference); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return order, nil
}

func orderByReference(db *gorm.DB, reference string) (*models.Order, error) {
	var order models.Order
	if err := db.Where("payment_reference = ?", reference).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// webhookEvent is the slice of a Paystack event payload this handler reads.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// PaystackWebhookHandler handles provider callbacks. After the signature
// checks out the handler always acknowledges with 200, even when downstream
// processing fails, so Paystack does not hammer us with retries; failures are
// logged and recovered by the polling verify path.
func PaystackWebhookHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
		return
	}

	signature := c.GetHeader("X-Paystack-Signature")
	if !Paystack.VerifyWebhookSignature(body, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Webhook payload decode failed: %v", err)
		c.Status(http.StatusOK)
		return
	}

	if event.Event == "charge.success" && event.Data.Reference != "" {
		if err := finalizeReference(event.Data.Reference); err != nil {
			log.Printf("Webhook finalize failed for %s: %v", event.Data.Reference, err)
		}
	}

	c.Status(http.StatusOK)
}

// finalizeReference routes a verified reference to the order or membership
// finalizer based on the intent it belongs to.
func finalizeReference(reference string) error {
	var intent models.PaymentIntent
	if err := DB.Where("reference = ?", reference).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUnknownReference
		}
		return err
	}

	switch intent.Kind {
	case models.IntentKindMembership:
		_, err := finalizeMembershipPayment(reference)
		return err
	default:
		_, err := finalizeOrderPayment(reference)
		return err
	}
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUnknownReference):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown or expired payment reference"})
	case errors.Is(err, errPaymentNotOK):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		respondCheckoutError(c, err)
	}
}
