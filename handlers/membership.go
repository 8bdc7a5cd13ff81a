package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/TIJANI0826/Mybru/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const subscriptionPeriod = 30 * 24 * time.Hour

type InitiateMembershipPaymentRequest struct {
	MembershipID uint `json:"membership_id" binding:"required"`
}

// InitiateMembershipPaymentHandler starts a Paystack transaction for a
// membership tier, mirroring the order path: intent now, subscription on
// verification.
func InitiateMembershipPaymentHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var req InitiateMembershipPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var membership models.Membership
	if err := DB.First(&membership, req.MembershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reference := newPaymentReference("MEMBERSHIP", claims.UserID)
	intent := models.PaymentIntent{
		Reference:        reference,
		UserID:           claims.UserID,
		Kind:             models.IntentKindMembership,
		MembershipID:     &membership.ID,
		TotalPriceInKobo: membership.PriceInKobo,
		Status:           models.IntentStatusPending,
		ExpiresAt:        time.Now().Add(intentTTL),
	}
	if err := DB.Create(&intent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	init, err := Paystack.Initialize(utils.InitializeRequest{
		AmountInKobo: membership.PriceInKobo,
		Email:        user.Email,
		Reference:    reference,
		Metadata: map[string]interface{}{
			"user_id":       user.ID,
			"membership_id": membership.ID,
			"kind":          string(models.IntentKindMembership),
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

// VerifyMembershipPaymentHandler re-checks the transaction with Paystack and
// activates the subscription for the reference.
func VerifyMembershipPaymentHandler(c *gin.Context) {
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

	subscription, err := finalizeMembershipPayment(reference)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	var loaded models.Subscription
	if err := DB.Preload("Membership").First(&loaded, subscription.ID).Error; err == nil {
		subscription = &loaded
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":       true,
		"message":      "Payment verified and subscription activated",
		"subscription": subscription,
	})
}

// finalizeMembershipPayment activates the (user, membership) subscription for
// a verified reference, exactly once. The pending→consumed transition on the
// intent is the idempotency guard here: a second caller sees zero rows updated
// and just returns the existing subscription.
func finalizeMembershipPayment(reference string) (*models.Subscription, error) {
	var subscription *models.Subscription
	err := DB.Transaction(func(tx *gorm.DB) error {
		var intent models.PaymentIntent
		if err := tx.Where("reference = ? AND kind = ?", reference, models.IntentKindMembership).First(&intent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUnknownReference
			}
			return err
		}
		if intent.MembershipID == nil {
			return errUnknownReference
		}
		if intent.Status == models.IntentStatusPending && intent.Expired(time.Now()) {
			return errUnknownReference
		}

		claim := tx.Model(&models.PaymentIntent{}).
			Where("reference = ? AND status = ?", reference, models.IntentStatusPending).
			Update("status", models.IntentStatusConsumed)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			// Already consumed by the other verification path.
			var existing models.Subscription
			if err := tx.Where("user_id = ? AND membership_id = ?", intent.UserID, *intent.MembershipID).First(&existing).Error; err != nil {
				return err
			}
			subscription = &existing
			return nil
		}

		now := time.Now()
		var existing models.Subscription
		err := tx.Where("user_id = ? AND membership_id = ?", intent.UserID, *intent.MembershipID).First(&existing).Error
		switch {
		case err == nil:
			// Repeat purchase overwrites the row back to active,
			// whatever state it was in.
			updates := map[string]interface{}{
				"status":            models.SubscriptionStatusActive,
				"start_date":        now,
				"renewal_date":      now.Add(subscriptionPeriod),
				"payment_reference": reference,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			subscription = &existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := models.Subscription{
				UserID:           intent.UserID,
				MembershipID:     *intent.MembershipID,
				Status:           models.SubscriptionStatusActive,
				StartDate:        now,
				RenewalDate:      now.Add(subscriptionPeriod),
				PaymentReference: reference,
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			subscription = &created
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}
