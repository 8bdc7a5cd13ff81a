package handlers

import (
	"log"
	"net/http"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateDeliveryAddressRequest struct {
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	IsDefault    bool   `json:"is_default"`
}

func ListDeliveryAddressesHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var addresses []models.DeliveryAddress
	if err := DB.Where("user_id = ?", claims.UserID).Order("is_default DESC, created_at DESC").Find(&addresses).Error; err != nil {
		log.Printf("Failed to list addresses for user %d: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if addresses == nil {
		addresses = []models.DeliveryAddress{}
	}

	c.JSON(http.StatusOK, addresses)
}

func CreateDeliveryAddressHandler(c *gin.Context) {
	claims := MustClaims(c)
	if claims == nil {
		return
	}

	var request CreateDeliveryAddressRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := models.DeliveryAddress{
		UserID:       claims.UserID,
		AddressLine1: request.AddressLine1,
		AddressLine2: request.AddressLine2,
		City:         request.City,
		State:        request.State,
		ZipCode:      request.ZipCode,
		IsDefault:    request.IsDefault,
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		if request.IsDefault {
			// A new default demotes the previous one.
			if err := tx.Model(&models.DeliveryAddress{}).
				Where("user_id = ? AND is_default = ?", claims.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, address)
}
