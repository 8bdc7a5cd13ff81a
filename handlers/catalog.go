package handlers

import (
	"log"
	"net/http"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateTeaRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceInKobo int64  `json:"price_in_kobo" binding:"required,gt=0"`
	Stock       int64  `json:"stock" binding:"gte=0"`
	ImageURL    string `json:"image_url"`
	Ingredients []uint `json:"ingredient_ids"`
}

type UpdateTeaRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceInKobo *int64  `json:"price_in_kobo"`
	Stock       *int64  `json:"stock"`
	ImageURL    *string `json:"image_url"`
}

type CreateIngredientRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CategoryID  *uint  `json:"category_id"`
	PriceInKobo int64  `json:"price_in_kobo" binding:"required,gt=0"`
	Stock       int64  `json:"stock" binding:"gte=0"`
	ImageURL    string `json:"image_url"`
}

type UpdateIngredientRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *uint   `json:"category_id"`
	PriceInKobo *int64  `json:"price_in_kobo"`
	Stock       *int64  `json:"stock"`
	ImageURL    *string `json:"image_url"`
}

type CreateIngredientCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreatePickupLocationRequest struct {
	Name              string `json:"name" binding:"required"`
	Address           string `json:"address"`
	City              string `json:"city"`
	Branch            string `json:"branch" binding:"required"`
	DeliveryFeeInKobo int64  `json:"delivery_fee_in_kobo" binding:"gte=0"`
}

type CreateMembershipRequest struct {
	Name        string `json:"name" binding:"required"`
	PriceInKobo int64  `json:"price_in_kobo" binding:"required,gt=0"`
	Description string `json:"description"`
}

// --- Teas

func ListTeasHandler(c *gin.Context) {
	if DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection not initialized"})
		return
	}

	var teas []models.Tea
	query := DB.Preload("Ingredients").Model(&models.Tea{})

	// Simple search by name, case-insensitive partial match
	if nameQuery := c.Query("name"); nameQuery != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+nameQuery+"%")
	}

	if err := query.Find(&teas).Error; err != nil {
		log.Printf("Failed to list teas: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list teas: " + err.Error()})
		return
	}

	if teas == nil {
		teas = []models.Tea{}
	}

	c.JSON(http.StatusOK, teas)
}

func GetTeaHandler(c *gin.Context) {
	var tea models.Tea
	if err := DB.Preload("Ingredients").First(&tea, c.Param("tea_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tea not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tea)
}

func CreateTeaHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var request CreateTeaRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tea := models.Tea{
		Name:        request.Name,
		Description: request.Description,
		PriceInKobo: request.PriceInKobo,
		Stock:       request.Stock,
		ImageURL:    request.ImageURL,
	}

	if len(request.Ingredients) > 0 {
		var ingredients []models.Ingredient
		if err := DB.Find(&ingredients, request.Ingredients).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(ingredients) != len(request.Ingredients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more ingredient ids do not exist"})
			return
		}
		tea.Ingredients = ingredients
	}

	if err := DB.Create(&tea).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tea)
}

func UpdateTeaHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var request UpdateTeaRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tea models.Tea
	if err := DB.First(&tea, c.Param("tea_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tea not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Build map for updates to handle partial updates correctly with pointers
	updates := make(map[string]interface{})
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Description != nil {
		updates["description"] = *request.Description
	}
	if request.PriceInKobo != nil {
		updates["price_in_kobo"] = *request.PriceInKobo
	}
	if request.Stock != nil {
		updates["stock"] = *request.Stock
	}
	if request.ImageURL != nil {
		updates["image_url"] = *request.ImageURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}

	if err := DB.Model(&tea).Updates(updates).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tea)
}

func DeleteTeaHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var tea models.Tea
	if err := DB.First(&tea, c.Param("tea_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tea not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := DB.Delete(&tea).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tea deleted successfully"})
}

// --- Ingredients

func ListIngredientsHandler(c *gin.Context) {
	var ingredients []models.Ingredient
	query := DB.Preload("Category").Model(&models.Ingredient{})

	if categoryQuery := c.Query("category_id"); categoryQuery != "" {
		query = query.Where("category_id = ?", categoryQuery)
	}

	if err := query.Find(&ingredients).Error; err != nil {
		log.Printf("Failed to list ingredients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}

	c.JSON(http.StatusOK, ingredients)
}

func GetIngredientHandler(c *gin.Context) {
	var ingredient models.Ingredient
	if err := DB.Preload("Category").First(&ingredient, c.Param("ingredient_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

func CreateIngredientHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var request CreateIngredientRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredient := models.Ingredient{
		Name:        request.Name,
		Description: request.Description,
		CategoryID:  request.CategoryID,
		PriceInKobo: request.PriceInKobo,
		Stock:       request.Stock,
		ImageURL:    request.ImageURL,
	}

	if err := DB.Create(&ingredient).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ingredient)
}

func UpdateIngredientHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var request UpdateIngredientRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ingredient models.Ingredient
	if err := DB.First(&ingredient, c.Param("ingredient_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})
	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Description != nil {
		updates["description"] = *request.Description
	}
	if request.CategoryID != nil {
		updates["category_id"] = *request.CategoryID
	}
	if request.PriceInKobo != nil {
		updates["price_in_kobo"] = *request.PriceInKobo
	}
	if request.Stock != nil {
		updates["stock"] = *request.Stock
	}
	if request.ImageURL != nil {
		updates["image_url"] = *request.ImageURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}

	if err := DB.Model(&ingredient).Updates(updates).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

func DeleteIngredientHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var ingredient models.Ingredient
	if err := DB.First(&ingredient, c.Param("ingredient_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := DB.Delete(&ingredient).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted successfully"})
}

// --- Ingredient categories

func ListIngredientCategoriesHandler(c *gin.Context) {
	var categories []models.IngredientCategory
	if err := DB.Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if categories == nil {
		categories = []models.IngredientCategory{}
	}

	c.JSON(http.StatusOK, categories)
}

func CreateIngredientCategoryHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var request CreateIngredientCategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.IngredientCategory{Name: request.Name, Description: request.Description}
	if err := DB.Create(&category).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// --- Pickup locations

func ListPickupLocationsHandler(c *gin.Context) {
	var locations []models.PickupLocation
	if err := DB.Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if locations == nil {
		locations = []models.PickupLocation{}
	}

	c.JSON(http.StatusOK, locations)
}

func CreatePickupLocationHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var request CreatePickupLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location := models.PickupLocation{
		Name:              request.Name,
		Address:           request.Address,
		City:              request.City,
		Branch:            request.Branch,
		DeliveryFeeInKobo: request.DeliveryFeeInKobo,
	}

	if err := DB.Create(&location).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, location)
}

func DeletePickupLocationHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var location models.PickupLocation
	if err := DB.First(&location, c.Param("pickup_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pickup location not found"})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := DB.Delete(&location).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pickup location deleted successfully"})
}

// --- Memberships

func ListMembershipsHandler(c *gin.Context) {
	var memberships []models.Membership
	if err := DB.Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if memberships == nil {
		memberships = []models.Membership{}
	}

	c.JSON(http.StatusOK, memberships)
}

func CreateMembershipHandler(c *gin.Context) {
	if MustStaff(c) == nil {
		return
	}

	var request CreateMembershipRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership := models.Membership{
		Name:        request.Name,
		PriceInKobo: request.PriceInKobo,
		Description: request.Description,
	}

	if err := DB.Create(&membership).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, membership)
}
