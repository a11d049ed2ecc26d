package payment

import (
	"context"
	"errors"
)

var (
	//署名・チェックサム不一致
	ErrInvalidSignature = errors.New("invalid webhook signature")
	//形式不正のwebhookペイロード
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

// webhookを正規化した結果。
// プロバイダは最低1回配送なので、受け側は何度来ても安全に処理すること。
type Event struct {
	Provider      string
	OrderID       int64
	TransactionID string
	Succeeded     bool
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type Link struct {
	OrderCode   int64  `json:"order_code"`
	CheckoutURL string `json:"checkout_url"`
}

// インテント型プロバイダ（Stripe系）。
// SDKの詳細はこの窓口の外。coreはこの契約だけを呼ぶ
type IntentProvider interface {
	CreateIntent(ctx context.Context, orderID int64, amount int64, currency string) (Intent, error)
	Refund(ctx context.Context, transactionID string, amount int64) error
	ParseWebhook(payload []byte, signatureHeader string) (Event, error)
}

// リダイレクトリンク型プロバイダ（PayOS系）。
// 整数のorderCodeでリンクを払い出す
type LinkProvider interface {
	CreateLink(ctx context.Context, orderCode int64, amount int64, description string) (Link, error)
	ParseWebhook(payload []byte) (Event, error)
}
