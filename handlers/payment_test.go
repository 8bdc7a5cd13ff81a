package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TIJANI0826/Mybru/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initiateOrderPayment(t *testing.T, router *gin.Engine, token string, body gin.H) string {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/payment/initiate/", token, body)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AuthorizationURL)
	require.NotEmpty(t, resp.Reference)
	return resp.Reference
}

func TestInitiatePaymentCreatesIntent(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)
	user, token := createTestUser(t, db, "amara")
	tea := createTestTea(t, db, "Hibiscus", 500, 10)
	pickup := createTestPickup(t, db, 200)

	doJSON(t, router, http.MethodPost, "/cart/add/", token, gin.H{"tea_id": tea.ID, "quantity": 3})

	reference := initiateOrderPayment(t, router, token, gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})

	var intent models.PaymentIntent
	require.NoError(t, db.Where("reference = ?", reference).First(&intent).Error)
	assert.Equal(t, user.ID, intent.UserID)
	assert.Equal(t, models.IntentKindOrder, intent.Kind)
	assert.Equal(t, int64(3*500+200), intent.TotalPriceInKobo)
	assert.Equal(t, models.IntentStatusPending, intent.Status)

	// No order yet: creation waits for verification.
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInitiatePaymentEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)
	_, token := createTestUser(t, db, "amara")
	pickup := createTestPickup(t, db, 0)

	recorder := doJSON(t, router, http.MethodPost, "/payment/initiate/", token,
		gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestInitiatePaymentProviderDown(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	fake := newFakePaystack(t)
	fake.server.Close() // unreachable provider
	_, token := createTestUser(t, db, "amara")
	tea := createTestTea(t, db, "Hibiscus", 500, 10)
	pickup := createTestPickup(t, db, 0)

	doJSON(t, router, http.MethodPost, "/cart/add/", token, gin.H{"tea_id": tea.ID, "quantity": 1})

	recorder := doJSON(t, router, http.MethodPost, "/payment/initiate/", token,
		gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})
	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestVerifyPaymentCreatesPaidOrder(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)
	user, token := createTestUser(t, db, "amara")
	tea := createTestTea(t, db, "Hibiscus", 500, 10)
	pickup := createTestPickup(t, db, 200)

	doJSON(t, router, http.MethodPost, "/cart/add/", token, gin.H{"tea_id": tea.ID, "quantity": 3})
	reference := initiateOrderPayment(t, router, token, gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})

	recorder := doJSON(t, router, http.MethodGet, "/payment/verify/?reference="+reference, token, nil)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	order, err := orderByReference(db, reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, int64(1700), order.TotalPriceInKobo)
	assert.Equal(t, user.ID, order.UserID)

	// Cart drained, stock stays where the cart edits left it.
	assert.Empty(t, cartLines(t, db, user.ID))
	assert.Equal(t, int64(7), teaStock(t, db, tea.ID))

	var intent models.PaymentIntent
	require.NoError(t, db.Where("reference = ?", reference).First(&intent).Error)
	assert.Equal(t, models.IntentStatusConsumed, intent.Status)
}

func TestVerifyPaymentIdempotent(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)
	_, token := createTestUser(t, db, "amara")
	tea := createTestTea(t, db, "Hibiscus", 500, 10)
	pickup := createTestPickup(t, db, 0)

	doJSON(t, router, http.MethodPost, "/cart/add/", token, gin.H{"tea_id": tea.ID, "quantity": 2})
	reference := initiateOrderPayment(t, router, token, gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})

	first := doJSON(t, router, http.MethodGet, "/payment/verify/?reference="+reference, token, nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doJSON(t, router, http.MethodGet, "/payment/verify/?reference="+reference, token, nil)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	var firstResp, secondResp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	assert.Equal(t, firstResp.Order.ID, secondResp.Order.ID)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "exactly one order per reference")
}

func TestVerifyPaymentNotSuccessful(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	fake := newFakePaystack(t)
	fake.verifyStatus = "failed"
	user, token := createTestUser(t, db, "amara")
	tea := createTestTea(t, db, "Hibiscus", 500, 10)
	pickup := createTestPickup(t, db, 0)

	doJSON(t, router, http.MethodPost, "/cart/add/", token, gin.H{"tea_id": tea.ID, "quantity": 2})
	reference := initiateOrderPayment(t, router, token, gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})

	recorder := doJSON(t, router, http.MethodGet, "/payment/verify/?reference="+reference, token, nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	// No order, cart untouched.
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Len(t, cartLines(t, db, user.ID), 1)
}

func TestVerifyPaymentUnknownReference(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)
	_, token := createTestUser(t, db, "amara")

	recorder := doJSON(t, router, http.MethodGet, "/payment/verify/?reference=ORDER-1-DOESNOTEXIST", token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func signWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/payment/webhook/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Paystack-Signature", signature)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)

	body := []byte(`{"event":"charge.success","data":{"reference":"ORDER-1-AAAA"}}`)

	recorder := postWebhook(t, router, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = postWebhook(t, router, body, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestWebhookFinalizesOrder(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)
	user, token := createTestUser(t, db, "amara")
	tea := createTestTea(t, db, "Hibiscus", 500, 10)
	pickup := createTestPickup(t, db, 0)

	doJSON(t, router, http.MethodPost, "/cart/add/", token, gin.H{"tea_id": tea.ID, "quantity": 2})
	reference := initiateOrderPayment(t, router, token, gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})

	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q,"status":"success"}}`, reference))
	recorder := postWebhook(t, router, body, signWebhookBody(Paystack.SecretKey, body))
	require.Equal(t, http.StatusOK, recorder.Code)

	order, err := orderByReference(db, reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Empty(t, cartLines(t, db, user.ID))
}

// Webhook then polling verify: the verify call must observe the webhook's
// order instead of creating a second one.
func TestWebhookThenVerifyYieldsOneOrder(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)
	_, token := createTestUser(t, db, "amara")
	tea := createTestTea(t, db, "Hibiscus", 500, 10)
	pickup := createTestPickup(t, db, 0)

	doJSON(t, router, http.MethodPost, "/cart/add/", token, gin.H{"tea_id": tea.ID, "quantity": 2})
	reference := initiateOrderPayment(t, router, token, gin.H{"delivery_type": "pickup", "pickup_id": pickup.ID})

	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q,"status":"success"}}`, reference))
	postWebhook(t, router, body, signWebhookBody(Paystack.SecretKey, body))

	recorder := doJSON(t, router, http.MethodGet, "/payment/verify/?reference="+reference, token, nil)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// A validly signed webhook whose processing fails (unknown reference) still
// gets a 200 so the provider does not retry forever.
func TestWebhookSwallowsProcessingErrors(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)

	body := []byte(`{"event":"charge.success","data":{"reference":"ORDER-1-UNKNOWNREF"}}`)
	recorder := postWebhook(t, router, body, signWebhookBody(Paystack.SecretKey, body))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()
	newFakePaystack(t)

	body := []byte(`{"event":"transfer.success","data":{"reference":"whatever"}}`)
	recorder := postWebhook(t, router, body, signWebhookBody(Paystack.SecretKey, body))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
