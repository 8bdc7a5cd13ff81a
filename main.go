package main

import (
	"log"
	"os"
	"time"

	"github.com/TIJANI0826/Mybru/handlers"
	"github.com/TIJANI0826/Mybru/models"
	"github.com/TIJANI0826/Mybru/utils"
	"github.com/joho/godotenv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite" // Or your preferred database driver
	"gorm.io/gorm"
)

func main() {

	/* DATABASE SETUP STARTS */

	err := godotenv.Load()
	if err != nil {
		log.Printf("Error loading .env file for database URI. Using environment variables.")
	}

	dbURI := os.Getenv("DATABASE_URI")
	if dbURI == "" {
		dbURI = "mybru.db"
		log.Println("Warning: DATABASE_URI not found in environment variables. Using default: " + dbURI)
	}

	db, openDbErr := gorm.Open(sqlite.Open(dbURI), &gorm.Config{})
	if openDbErr != nil {
		log.Fatalf("Failed to connect to database: %v", openDbErr)
		os.Exit(1)
	}
	handlers.DB = db

	migrateErr := db.AutoMigrate(
		&models.User{},
		&models.IngredientCategory{},
		&models.Ingredient{},
		&models.Tea{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PickupLocation{},
		&models.DeliveryAddress{},
		&models.PaymentIntent{},
		&models.Membership{},
		&models.Subscription{},
	)
	if migrateErr != nil {
		log.Fatalf("Failed to migrate database: %v", migrateErr)
	}
	/* DATABASE SETUP ENDS */

	/* PAYMENT PROVIDER SETUP */
	paystackKey := os.Getenv("PAYSTACK_SECRET_KEY")
	if paystackKey == "" {
		log.Println("Warning: PAYSTACK_SECRET_KEY not set. Payment endpoints will not work against the live API.")
	}
	handlers.Paystack = utils.NewPaystackClient(paystackKey)

	/* ROUTING STARTS */
	router := gin.Default()

	env := os.Getenv("APP_ENV")

	var corsConfig cors.Config
	if env == "debug" || env == "development" {
		// Development: Allow all origins
		corsConfig = cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	} else {
		// Production: Be specific and secure
		corsConfig = cors.Config{
			AllowOrigins:     []string{"https://mybru.shop"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	}

	router.Use(cors.New(corsConfig))

	// --- Authentication Routes ---
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handlers.RegisterHandler)
		authGroup.POST("/login", handlers.LoginHandler)
		authGroup.GET("/profile", handlers.AuthMiddleware(), handlers.ProfileHandler)
	}

	// --- Public Catalog Routes --- (Auth token not needed)
	router.GET("/teas", handlers.ListTeasHandler)
	router.GET("/teas/:tea_id", handlers.GetTeaHandler)
	router.GET("/ingredients", handlers.ListIngredientsHandler)
	router.GET("/ingredients/:ingredient_id", handlers.GetIngredientHandler)
	router.GET("/ingredient-categories", handlers.ListIngredientCategoriesHandler)
	router.GET("/pickup-locations", handlers.ListPickupLocationsHandler)
	router.GET("/memberships", handlers.ListMembershipsHandler)

	// --- Paystack Webhook --- (signed by the provider, no auth token)
	router.POST("/payment/webhook/", handlers.PaystackWebhookHandler)

	// --- Customer Protected Routes ---
	authed := router.Group("/", handlers.AuthMiddleware())
	{
		cartRoutes := authed.Group("/cart")
		{
			cartRoutes.GET("/", handlers.GetCartHandler)
			cartRoutes.POST("/add/", handlers.AddToCartHandler)
			cartRoutes.POST("/update/", handlers.UpdateCartItemHandler)
			cartRoutes.POST("/remove/", handlers.RemoveFromCartHandler)
			cartRoutes.POST("/clear/", handlers.ClearCartHandler)
		}

		authed.POST("/checkout/place-order/", handlers.PlaceOrderHandler)

		paymentRoutes := authed.Group("/payment")
		{
			paymentRoutes.POST("/initiate/", handlers.InitiatePaymentHandler)
			paymentRoutes.GET("/verify/", handlers.VerifyPaymentHandler)
			paymentRoutes.POST("/membership/initiate/", handlers.InitiateMembershipPaymentHandler)
			paymentRoutes.GET("/membership/verify/", handlers.VerifyMembershipPaymentHandler)
		}

		orderRoutes := authed.Group("/orders")
		{
			orderRoutes.GET("/", handlers.GetOrdersHandler)
			orderRoutes.GET("/:order_id", handlers.GetSingleOrderHandler)
		}

		authed.GET("/delivery-addresses/", handlers.ListDeliveryAddressesHandler)
		authed.POST("/delivery-addresses/", handlers.CreateDeliveryAddressHandler)

		subscriptionRoutes := authed.Group("/subscriptions")
		{
			subscriptionRoutes.GET("/", handlers.ListSubscriptionsHandler)
			subscriptionRoutes.POST("/:subscription_id/cancel", handlers.CancelSubscriptionHandler)
			subscriptionRoutes.POST("/:subscription_id/pause", handlers.PauseSubscriptionHandler)
			subscriptionRoutes.POST("/:subscription_id/resume", handlers.ResumeSubscriptionHandler)
		}

		// --- Staff Catalog Management ---
		authed.POST("/teas", handlers.CreateTeaHandler)
		authed.PUT("/teas/:tea_id", handlers.UpdateTeaHandler)
		authed.DELETE("/teas/:tea_id", handlers.DeleteTeaHandler)
		authed.POST("/ingredients", handlers.CreateIngredientHandler)
		authed.PUT("/ingredients/:ingredient_id", handlers.UpdateIngredientHandler)
		authed.DELETE("/ingredients/:ingredient_id", handlers.DeleteIngredientHandler)
		authed.POST("/ingredient-categories", handlers.CreateIngredientCategoryHandler)
		authed.POST("/pickup-locations", handlers.CreatePickupLocationHandler)
		authed.DELETE("/pickup-locations/:pickup_id", handlers.DeletePickupLocationHandler)
		authed.POST("/memberships", handlers.CreateMembershipHandler)
	}

	/* ROUTING ENDS */

	port := ":8080"
	log.Printf("Server listening on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
		os.Exit(1)
	}
}
