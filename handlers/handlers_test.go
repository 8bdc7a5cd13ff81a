package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/TIJANI0826/Mybru/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB opens a fresh named in-memory database and points the package
// global at it. Shared cache keeps all pooled connections on the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
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
	))

	DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		DB = nil
	})
	return db
}

func setupRouter() *gin.Engine {
	router := gin.New()

	router.POST("/payment/webhook/", PaystackWebhookHandler)

	router.POST("/auth/register", RegisterHandler)
	router.POST("/auth/login", LoginHandler)
	router.GET("/auth/profile", AuthMiddleware(), ProfileHandler)
	router.GET("/teas", ListTeasHandler)
	router.GET("/teas/:tea_id", GetTeaHandler)
	router.GET("/ingredients", ListIngredientsHandler)

	authed := router.Group("/", AuthMiddleware())
	{
		authed.POST("/teas", CreateTeaHandler)
		authed.PUT("/teas/:tea_id", UpdateTeaHandler)
		authed.DELETE("/teas/:tea_id", DeleteTeaHandler)
		authed.POST("/ingredients", CreateIngredientHandler)
		authed.GET("/cart/", GetCartHandler)
		authed.POST("/cart/add/", AddToCartHandler)
		authed.POST("/cart/update/", UpdateCartItemHandler)
		authed.POST("/cart/remove/", RemoveFromCartHandler)
		authed.POST("/cart/clear/", ClearCartHandler)
		authed.POST("/checkout/place-order/", PlaceOrderHandler)
		authed.POST("/payment/initiate/", InitiatePaymentHandler)
		authed.GET("/payment/verify/", VerifyPaymentHandler)
		authed.POST("/payment/membership/initiate/", InitiateMembershipPaymentHandler)
		authed.GET("/payment/membership/verify/", VerifyMembershipPaymentHandler)
		authed.GET("/orders/", GetOrdersHandler)
		authed.GET("/subscriptions/", ListSubscriptionsHandler)
		authed.POST("/subscriptions/:subscription_id/cancel", CancelSubscriptionHandler)
		authed.POST("/subscriptions/:subscription_id/pause", PauseSubscriptionHandler)
		authed.POST("/subscriptions/:subscription_id/resume", ResumeSubscriptionHandler)
	}

	return router
}

func createTestUser(t *testing.T, db *gorm.DB, username string) (*models.User, string) {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleCustomer,
	}
	require.NoError(t, user.HashPassword("s3cretpass"))
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return &user, token
}

func createTestStaff(t *testing.T, db *gorm.DB, username string) (*models.User, string) {
	t.Helper()

	staff := models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleStaff,
	}
	require.NoError(t, staff.HashPassword("s3cretpass"))
	require.NoError(t, db.Create(&staff).Error)

	token, err := utils.GenerateToken(staff.ID, staff.Role)
	require.NoError(t, err)
	return &staff, token
}

func createTestTea(t *testing.T, db *gorm.DB, name string, priceInKobo, stock int64) *models.Tea {
	t.Helper()

	tea := models.Tea{Name: name, PriceInKobo: priceInKobo, Stock: stock}
	require.NoError(t, db.Create(&tea).Error)
	return &tea
}

func createTestIngredient(t *testing.T, db *gorm.DB, name string, priceInKobo, stock int64) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, PriceInKobo: priceInKobo, Stock: stock}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}

func createTestPickup(t *testing.T, db *gorm.DB, feeInKobo int64) *models.PickupLocation {
	t.Helper()

	pickup := models.PickupLocation{Name: "Mybru", Branch: "Lekki", DeliveryFeeInKobo: feeInKobo}
	require.NoError(t, db.Create(&pickup).Error)
	return &pickup
}

// doJSON performs an authenticated JSON request against the router.
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func teaStock(t *testing.T, db *gorm.DB, teaID uint) int64 {
	t.Helper()

	var tea models.Tea
	require.NoError(t, db.First(&tea, teaID).Error)
	return tea.Stock
}

func cartLines(t *testing.T, db *gorm.DB, userID uint) []models.CartItem {
	t.Helper()

	var cart models.Cart
	require.NoError(t, db.Where("user_id = ?", userID).First(&cart).Error)

	var lines []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", cart.ID).Find(&lines).Error)
	return lines
}

// fakePaystack stands in for the Paystack API: every transaction initializes
// fine and verifies as successful unless told otherwise.
type fakePaystack struct {
	server       *httptest.Server
	verifyStatus string
}

func newFakePaystack(t *testing.T) *fakePaystack {
	t.Helper()

	fake := &fakePaystack{verifyStatus: "success"}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/transaction/initialize":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": true,
				"data": map[string]interface{}{
					"authorization_url": "https://checkout.paystack.test/abc123",
					"access_code":       "abc123",
				},
			})
		case r.Method == http.MethodGet && len(r.URL.Path) > len("/transaction/verify/"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": true,
				"data": map[string]interface{}{
					"status": fake.verifyStatus,
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fake.server.Close)

	Paystack = &utils.PaystackClient{
		SecretKey: "sk_test_mybru",
		BaseURL:   fake.server.URL,
		HTTP:      fake.server.Client(),
	}
	t.Cleanup(func() { Paystack = nil })
	return fake
}
