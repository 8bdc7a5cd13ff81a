package handlers

import (
	"log"
	"net/http"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetOrdersHandler lists the caller's order history, newest first.
func GetOrdersHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not initialized"})
		return
	}

	claims := MustClaims(c)
	if claims == nil {
		return
	}

	query := DB.Where("user_id = ?", claims.UserID)
	if statusFilter := c.Query("payment_status"); statusFilter != "" {
		query = query.Where("payment_status = ?", models.PaymentStatus(statusFilter))
	}

	var orders []models.Order
	if err := query.Preload("Items.Tea").Preload("Items.Ingredient").
		Order("created_at DESC").Find(&orders).Error; err != nil {
		log.Printf("Failed to get orders for user %d: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, orders)
}

func GetSingleOrderHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var order models.Order
	if err := DB.Preload("Items.Tea").Preload("Items.Ingredient").
		Where("id = ? AND user_id = ?", c.Param("order_id"), claims.UserID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found or you don't have permission to view this order."})
			return
		}

		log.Printf("Failed to get order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}
