package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultPaystackBaseURL = "https://api.paystack.co"

// ErrProvider marks failures talking to Paystack (network errors and non-200
// responses) so handlers can map them to a retryable status.
var ErrProvider = errors.New("payment provider error")

// PaystackClient calls Paystack's transaction endpoints. Amounts are always in
// kobo, which is also how prices are stored, so no conversion happens here.
type PaystackClient struct {
	SecretKey string
	BaseURL   string
	HTTP      *http.Client
}

func NewPaystackClient(secretKey string) *PaystackClient {
	return &PaystackClient{
		SecretKey: secretKey,
		BaseURL:   DefaultPaystackBaseURL,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

type InitializeRequest struct {
	AmountInKobo int64                  `json:"amount"`
	Email        string                 `json:"email"`
	Reference    string                 `json:"reference"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyResponse struct {
	Status       string `json:"status"` // transaction status: "success", "failed", ...
	Reference    string `json:"reference"`
	AmountInKobo int64  `json:"amount"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize starts a transaction and returns the redirect handle for the
// client-side payment page.
func (p *PaystackClient) Initialize(req InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, p.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	env, err := p.do(httpReq)
	if err != nil {
		return nil, err
	}

	var data InitializeResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: decoding initialize response: %v", ErrProvider, err)
	}
	return &data, nil
}

// Verify fetches the transaction state for a reference.
func (p *PaystackClient) Verify(reference string) (*VerifyResponse, error) {
	httpReq, err := http.NewRequest(http.MethodGet, p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)

	env, err := p.do(httpReq)
	if err != nil {
		return nil, err
	}

	var data VerifyResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: decoding verify response: %v", ErrProvider, err)
	}
	return &data, nil
}

func (p *PaystackClient) do(req *http.Request) (*paystackEnvelope, error) {
	resp, err := p.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, raw)
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrProvider, err)
	}
	if !env.Status {
		return nil, fmt.Errorf("%w: %s", ErrProvider, env.Message)
	}
	return &env, nil
}

// VerifyWebhookSignature checks the X-Paystack-Signature header: an
// HMAC-SHA512 of the raw request body keyed by the secret key.
func (p *PaystackClient) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(p.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
