package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const stripeBaseURL = "https://api.stripe.com"

// Stripe風のインテント型プロバイダ。
// 使うのはpayment_intents/refundsの2エンドポイントだけなので薄いRESTクライアントで済ませる
type StripeClient struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewStripeClient(secretKey string, webhookSecret string) *StripeClient {
	return &StripeClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       stripeBaseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *StripeClient) CreateIntent(ctx context.Context, orderID int64, amount int64, currency string) (Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("metadata[order_id]", strconv.FormatInt(orderID, 10))

	body, err := c.post(ctx, "/v1/payment_intents", form)
	if err != nil {
		return Intent{}, err
	}

	var in Intent
	if err := json.Unmarshal(body, &in); err != nil {
		return Intent{}, err
	}
	if in.ID == "" {
		return Intent{}, fmt.Errorf("stripe: empty intent id")
	}
	return in, nil
}

func (c *StripeClient) Refund(ctx context.Context, transactionID string, amount int64) error {
	form := url.Values{}
	form.Set("payment_intent", transactionID)
	if amount > 0 {
		form.Set("amount", strconv.FormatInt(amount, 10))
	}

	_, err := c.post(ctx, "/v1/refunds", form)
	return err
}

// 署名ヘッダは "t={unix},v1={hex hmac}" 形式。
// HMAC-SHA256("{t}.{payload}", webhookSecret) と照合する
func (c *StripeClient) ParseWebhook(payload []byte, signatureHeader string) (Event, error) {
	ts, sig, err := splitSignatureHeader(signatureHeader)
	if err != nil {
		return Event{}, ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return Event{}, ErrInvalidSignature
	}

	var ev struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID       string `json:"id"`
				Metadata struct {
					OrderID string `json:"order_id"`
				} `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, ErrInvalidPayload
	}

	orderID, err := strconv.ParseInt(ev.Data.Object.Metadata.OrderID, 10, 64)
	if err != nil || orderID <= 0 {
		return Event{}, ErrInvalidPayload
	}

	switch ev.Type {
	case "payment_intent.succeeded":
		return Event{Provider: "STRIPE", OrderID: orderID, TransactionID: ev.Data.Object.ID, Succeeded: true}, nil
	case "payment_intent.payment_failed":
		return Event{Provider: "STRIPE", OrderID: orderID, TransactionID: ev.Data.Object.ID, Succeeded: false}, nil
	default:
		return Event{}, ErrInvalidPayload
	}
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stripe: %s returned %d", path, resp.StatusCode)
	}
	return body, nil
}

func splitSignatureHeader(h string) (ts string, sig string, err error) {
	for _, part := range strings.Split(h, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sig = kv[1]
		}
	}
	if ts == "" || sig == "" {
		return "", "", fmt.Errorf("malformed signature header")
	}
	return ts, sig, nil
}
