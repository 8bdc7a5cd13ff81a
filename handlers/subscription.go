package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/TIJANI0826/Mybru/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListSubscriptionsHandler returns the caller's subscriptions.
func ListSubscriptionsHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var subscriptions []models.Subscription
	if err := DB.Preload("Membership").Where("user_id = ?", claims.UserID).Find(&subscriptions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if subscriptions == nil {
		subscriptions = []models.Subscription{}
	}

	c.JSON(http.StatusOK, subscriptions)
}

// ownedSubscription loads a subscription the caller may manage: their own, or
// any subscription when they are staff.
func ownedSubscription(c *gin.Context, claims *utils.Claims) *models.Subscription {
	var subscription models.Subscription
	if err := DB.First(&subscription, c.Param("subscription_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}

	if subscription.UserID != claims.UserID && claims.Role != models.RoleStaff {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return nil
	}
	return &subscription
}

func CancelSubscriptionHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	subscription := ownedSubscription(c, claims)
	if subscription == nil {
		return
	}

	if err := DB.Model(subscription).Update("status", models.SubscriptionStatusCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, subscription)
}

func PauseSubscriptionHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	subscription := ownedSubscription(c, claims)
	if subscription == nil {
		return
	}

	if subscription.Status != models.SubscriptionStatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only an active subscription can be paused"})
		return
	}

	if err := DB.Model(subscription).Update("status", models.SubscriptionStatusPaused).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, subscription)
}

// ResumeSubscriptionHandler is only legal from paused and resets the renewal
// clock.
func ResumeSubscriptionHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	subscription := ownedSubscription(c, claims)
	if subscription == nil {
		return
	}

	if subscription.Status != models.SubscriptionStatusPaused {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only a paused subscription can be resumed"})
		return
	}

	updates := map[string]interface{}{
		"status":       models.SubscriptionStatusActive,
		"renewal_date": time.Now().Add(subscriptionPeriod),
	}
	if err := DB.Model(subscription).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, subscription)
}
