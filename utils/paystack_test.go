package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializePostsAmountInKobo(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.paystack.test/xyz",
				"access_code":       "xyz",
			},
		})
	}))
	defer server.Close()

	client := &PaystackClient{SecretKey: "sk_test", BaseURL: server.URL, HTTP: server.Client()}
	resp, err := client.Initialize(InitializeRequest{
		AmountInKobo: 250000,
		Email:        "amara@example.com",
		Reference:    "ORDER-1-ABCDEF123456",
	})
	require.NoError(t, err)

	assert.Equal(t, "/transaction/initialize", gotPath)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, float64(250000), gotBody["amount"])
	assert.Equal(t, "https://checkout.paystack.test/xyz", resp.AuthorizationURL)
}

func TestVerifyReportsTransactionStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ORDER-1-ABCDEF123456", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":    "success",
				"reference": "ORDER-1-ABCDEF123456",
				"amount":    250000,
			},
		})
	}))
	defer server.Close()

	client := &PaystackClient{SecretKey: "sk_test", BaseURL: server.URL, HTTP: server.Client()}
	resp, err := client.Verify("ORDER-1-ABCDEF123456")
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, int64(250000), resp.AmountInKobo)
}

func TestNon200IsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &PaystackClient{SecretKey: "sk_test", BaseURL: server.URL, HTTP: server.Client()}
	_, err := client.Verify("ORDER-1-ABCDEF123456")
	assert.True(t, errors.Is(err, ErrProvider))
}

func TestEnvelopeFailureIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid key",
		})
	}))
	defer server.Close()

	client := &PaystackClient{SecretKey: "sk_bad", BaseURL: server.URL, HTTP: server.Client()}
	_, err := client.Initialize(InitializeRequest{AmountInKobo: 100, Email: "a@b.c", Reference: "R"})
	assert.True(t, errors.Is(err, ErrProvider))
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := &PaystackClient{SecretKey: "sk_test"}
	body := []byte(`{"event":"charge.success","data":{"reference":"ORDER-1-AAAA"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyWebhookSignature(body, good))
	assert.False(t, client.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, client.VerifyWebhookSignature(body, ""))
	assert.False(t, client.VerifyWebhookSignature([]byte(`tampered`), good))
}
