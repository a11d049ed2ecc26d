package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
)

// 決済プロバイダとの橋渡し。
// webhookは最低1回配送なので、ここを通る更新はすべて「二度来ても無害」に作る。
type PaymentUsecase struct {
	tx          repo.TransactionManager
	orderRepo   repo.OrderRepository
	auditRepo   repo.AuditLogRepository
	loyaltyRepo repo.LoyaltyConfigRepository
	intent      payment.IntentProvider
	link        payment.LinkProvider
	currency    string
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
	loyaltyRepo repo.LoyaltyConfigRepository,
	intent payment.IntentProvider,
	link payment.LinkProvider,
	currency string,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:          tx,
		orderRepo:   orderRepo,
		auditRepo:   auditRepo,
		loyaltyRepo: loyaltyRepo,
		intent:      intent,
		link:        link,
		currency:    currency,
	}
}

type PaymentHandleOutput struct {
	Provider     string `json:"provider"`
	ClientSecret string `json:"client_secret,omitempty"`
	CheckoutURL  string `json:"checkout_url,omitempty"`
}

// 未払いの注文に決済ハンドルを払い出す。
// 注文の支払い方法に応じてインテントかリンクを作る。repayも同じ入口。
func (u *PaymentUsecase) CreateHandle(ctx context.Context, userID int64, orderID int64) (PaymentHandleOutput, error) {
	if userID <= 0 {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if o.PaymentStatus == model.PaymentStatusPaid {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusBadRequest, "order already paid")
	}
	if o.Status == model.OrderStatusCancelled || o.Status == model.OrderStatusRefunded {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusBadRequest, "order not payable")
	}
	if o.TotalAmount <= 0 {
		return PaymentHandleOutput{}, NewHTTPError(http.StatusBadRequest, "nothing to pay")
	}

	switch o.PaymentMethod {
	case model.PaymentMethodStripe:
		if u.intent == nil {
			return PaymentHandleOutput{}, NewHTTPError(http.StatusServiceUnavailable, "stripe not configured")
		}
		in, err := u.intent.CreateIntent(ctx, o.ID, o.TotalAmount, u.currency)
		if err != nil {
			return PaymentHandleOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
		}
		return PaymentHandleOutput{Provider: "STRIPE", ClientSecret: in.ClientSecret}, nil

	case model.PaymentMethodPayOS:
		if u.link == nil {
			return PaymentHandleOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payos not configured")
		}
		//orderCodeは注文IDをそのまま使う
		l, err := u.link.CreateLink(ctx, o.ID, o.TotalAmount, o.OrderNumber)
		if err != nil {
			return PaymentHandleOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
		}
		return PaymentHandleOutput{Provider: "PAYOS", CheckoutURL: l.CheckoutURL}, nil

	default:
		return PaymentHandleOutput{}, NewHTTPError(http.StatusBadRequest, "cod order has no payment handle")
	}
}

// Stripe系webhook。署名不一致は400、検証通過後はイベントを適用する。
func (u *PaymentUsecase) HandleIntentWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if u.intent == nil {
		return NewHTTPError(http.StatusServiceUnavailable, "stripe not configured")
	}
	ev, err := u.intent.ParseWebhook(payload, signatureHeader)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return u.applyEvent(ctx, ev)
}

// PayOS系webhook。
func (u *PaymentUsecase) HandleLinkWebhook(ctx context.Context, payload []byte) error {
	if u.link == nil {
		return NewHTTPError(http.StatusServiceUnavailable, "payos not configured")
	}
	ev, err := u.link.ParseWebhook(payload)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return u.applyEvent(ctx, ev)
}

// 検証済みイベントの適用。
// 成功時はpayment_status<>PAIDガード付きの条件付き更新が勝った場合だけ、
// 累計購入額・ポイント・ランクの反映を行う。再送は更新が負けてno-opになる。
func (u *PaymentUsecase) applyEvent(ctx context.Context, ev payment.Event) error {
	if !ev.Succeeded {
		if err := u.orderRepo.MarkPaymentFailed(ctx, ev.OrderID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		won, err := r.Orders().MarkPaidIfUnpaid(ctx, ev.OrderID, ev.TransactionID)
		if err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !won {
			//すでに支払い済み（webhook再送）。何もしない
			return nil
		}

		o, err := r.Orders().FindByID(ctx, ev.OrderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		points := pointsForAmount(o.TotalAmount)
		if err := r.Users().AddSpend(ctx, o.UserID, o.TotalAmount, points); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//ランクは加算後のtotal_spentから再計算した結果だけを書く
		user, err := r.Users().FindByID(ctx, o.UserID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		cfgs := loadLoyaltyConfigs(ctx, u.loyaltyRepo)
		tier := tierFromConfigs(cfgs, user.TotalSpent)
		if tier != user.LoyaltyTier {
			if err := r.Users().UpdateLoyaltyTier(ctx, o.UserID, tier); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})
}

// 管理者による返金。プロバイダ側の取り消しを呼んでから注文を返金済みにする。
func (u *PaymentUsecase) Refund(ctx context.Context, adminUserID int64, orderID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.PaymentStatus != model.PaymentStatusPaid {
		return NewHTTPError(http.StatusBadRequest, "order not paid")
	}

	if o.PaymentMethod == model.PaymentMethodStripe && o.PaymentTransactionID != "" && u.intent != nil {
		if err := u.intent.Refund(ctx, o.PaymentTransactionID, o.TotalAmount); err != nil {
			return NewHTTPError(http.StatusBadGateway, "payment provider error")
		}
	}

	if err := u.orderRepo.MarkRefunded(ctx, orderID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionRefundOrder,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   `{"payment_status":"` + string(o.PaymentStatus) + `"}`,
		AfterJSON:    `{"payment_status":"REFUNDED"}`,
		CreatedAt:    time.Now(),
	})

	return nil
}
