package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const payosBaseURL = "https://api-merchant.payos.vn"

// リダイレクトリンク型プロバイダ。
// 整数orderCodeでリンクを払い出し、webhookはチェックサムキーで検証する
type PayOSClient struct {
	clientID    string
	apiKey      string
	checksumKey string
	returnURL   string
	cancelURL   string
	baseURL     string
	httpClient  *http.Client
}

func NewPayOSClient(clientID, apiKey, checksumKey, returnURL, cancelURL string) *PayOSClient {
	return &PayOSClient{
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		returnURL:   returnURL,
		cancelURL:   cancelURL,
		baseURL:     payosBaseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *PayOSClient) CreateLink(ctx context.Context, orderCode int64, amount int64, description string) (Link, error) {
	payload := map[string]interface{}{
		"orderCode":   orderCode,
		"amount":      amount,
		"description": description,
		"returnUrl":   c.returnURL,
		"cancelUrl":   c.cancelURL,
	}
	//署名対象はキー昇順の key=value 連結
	payload["signature"] = c.sign(map[string]interface{}{
		"amount":      amount,
		"cancelUrl":   c.cancelURL,
		"description": description,
		"orderCode":   orderCode,
		"returnUrl":   c.returnURL,
	})

	body, err := json.Marshal(payload)
	if err != nil {
		return Link{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/payment-requests", bytes.NewReader(body))
	if err != nil {
		return Link{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Link{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Link{}, err
	}
	if resp.StatusCode >= 400 {
		return Link{}, fmt.Errorf("payos: payment-requests returned %d", resp.StatusCode)
	}

	var out struct {
		Code string `json:"code"`
		Data struct {
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Link{}, err
	}
	if out.Data.CheckoutURL == "" {
		return Link{}, fmt.Errorf("payos: empty checkout url")
	}

	return Link{OrderCode: orderCode, CheckoutURL: out.Data.CheckoutURL}, nil
}

// webhookボディのdataをチェックサムキーで検証し、正規化して返す
func (c *PayOSClient) ParseWebhook(payload []byte) (Event, error) {
	var hook struct {
		Code      string                 `json:"code"`
		Success   bool                   `json:"success"`
		Data      map[string]interface{} `json:"data"`
		Signature string                 `json:"signature"`
	}
	if err := json.Unmarshal(payload, &hook); err != nil {
		return Event{}, ErrInvalidPayload
	}
	if hook.Data == nil || hook.Signature == "" {
		return Event{}, ErrInvalidPayload
	}

	if !hmac.Equal([]byte(c.sign(hook.Data)), []byte(hook.Signature)) {
		return Event{}, ErrInvalidSignature
	}

	orderCode, ok := hook.Data["orderCode"].(float64)
	if !ok || orderCode <= 0 {
		return Event{}, ErrInvalidPayload
	}
	reference, _ := hook.Data["reference"].(string)

	return Event{
		Provider:      "PAYOS",
		OrderID:       int64(orderCode),
		TransactionID: reference,
		Succeeded:     hook.Success && hook.Code == "00",
	}, nil
}

// キー昇順に key=value を&で連結してHMAC-SHA256
func (c *PayOSClient) sign(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, data[k]))
	}

	mac := hmac.New(sha256.New, []byte(c.checksumKey))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
