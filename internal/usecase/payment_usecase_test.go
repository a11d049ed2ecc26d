package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type linkProviderStub struct {
	ev  payment.Event
	err error
}

func (s *linkProviderStub) CreateLink(ctx context.Context, orderCode int64, amount int64, description string) (payment.Link, error) {
	return payment.Link{OrderCode: orderCode, CheckoutURL: "https://pay.example.com/" + description}, nil
}

func (s *linkProviderStub) ParseWebhook(payload []byte) (payment.Event, error) {
	return s.ev, s.err
}

type paymentFixture struct {
	orders  *OrderRepoMock
	users   *UserRepoMock
	audit   *AuditRepoMock
	loyalty *LoyaltyRepoMock
	intent  *intentProviderStub
	link    *linkProviderStub
}

func (f *paymentFixture) build() *usecase.PaymentUsecase {
	tx := &txManagerStub{repos: &txReposStub{
		orders: f.orders,
		users:  f.users,
	}}
	var intent payment.IntentProvider
	if f.intent != nil {
		intent = f.intent
	}
	var link payment.LinkProvider
	if f.link != nil {
		link = f.link
	}
	return usecase.NewPaymentUsecase(tx, f.orders, f.audit, f.loyalty, intent, link, "vnd")
}

func newPaymentFixture() *paymentFixture {
	return &paymentFixture{
		orders:  new(OrderRepoMock),
		users:   new(UserRepoMock),
		audit:   new(AuditRepoMock),
		loyalty: new(LoyaltyRepoMock),
	}
}

// =====================
// webhook適用
// =====================

func TestHandleIntentWebhook_SuccessAccruesLoyalty(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{ev: payment.Event{
		Provider:      "STRIPE",
		OrderID:       99,
		TransactionID: "pi_123",
		Succeeded:     true,
	}}
	uc := f.build()

	f.orders.On("MarkPaidIfUnpaid", mock.Anything, int64(99), "pi_123").Return(true, nil)
	f.orders.On("FindByID", mock.Anything, int64(99)).Return(model.Order{
		ID: 99, UserID: 1, TotalAmount: 10_000_000,
	}, nil)

	//10,000,000 → 10,000ポイント
	f.users.On("AddSpend", mock.Anything, int64(1), int64(10_000_000), int64(10_000)).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID: 1, TotalSpent: 10_000_000, LoyaltyTier: model.TierNone,
	}, nil)
	f.loyalty.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)
	//累計10Mでsilver昇格
	f.users.On("UpdateLoyaltyTier", mock.Anything, int64(1), model.TierSilver).Return(nil)

	err := uc.HandleIntentWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func TestHandleIntentWebhook_DuplicateDeliveryIsNoop(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{ev: payment.Event{
		OrderID: 99, TransactionID: "pi_123", Succeeded: true,
	}}
	uc := f.build()

	//条件付き更新が負けた（すでにPAID）→ 加算はしない
	f.orders.On("MarkPaidIfUnpaid", mock.Anything, int64(99), "pi_123").Return(false, nil)

	err := uc.HandleIntentWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)

	f.users.AssertNotCalled(t, "AddSpend", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestHandleIntentWebhook_FailureMarksPaymentFailed(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{ev: payment.Event{
		OrderID: 99, Succeeded: false,
	}}
	uc := f.build()

	f.orders.On("MarkPaymentFailed", mock.Anything, int64(99)).Return(nil)

	err := uc.HandleIntentWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "MarkPaidIfUnpaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleIntentWebhook_InvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{err: payment.ErrInvalidSignature}
	uc := f.build()

	err := uc.HandleIntentWebhook(context.Background(), []byte(`{}`), "bad")
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "invalid signature")
}

func TestHandleIntentWebhook_NotConfigured(t *testing.T) {
	f := newPaymentFixture()
	uc := f.build()

	err := uc.HandleIntentWebhook(context.Background(), []byte(`{}`), "sig")
	assertHTTPStatus(t, err, http.StatusServiceUnavailable)
}

func TestHandleLinkWebhook_Success(t *testing.T) {
	f := newPaymentFixture()
	f.link = &linkProviderStub{ev: payment.Event{
		Provider: "PAYOS", OrderID: 42, TransactionID: "payos-42", Succeeded: true,
	}}
	uc := f.build()

	f.orders.On("MarkPaidIfUnpaid", mock.Anything, int64(42), "payos-42").Return(true, nil)
	f.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{
		ID: 42, UserID: 2, TotalAmount: 500_000,
	}, nil)
	f.users.On("AddSpend", mock.Anything, int64(2), int64(500_000), int64(500)).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{
		ID: 2, TotalSpent: 500_000, LoyaltyTier: model.TierNone,
	}, nil)
	f.loyalty.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)

	err := uc.HandleLinkWebhook(context.Background(), []byte(`{}`))
	assert.NoError(t, err)

	//閾値未満なのでランク更新は走らない
	f.users.AssertNotCalled(t, "UpdateLoyaltyTier", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// 決済ハンドル払い出し
// =====================

func TestCreateHandle_Stripe(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{}
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodStripe,
	}, nil)

	out, err := uc.CreateHandle(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, "STRIPE", out.Provider)
	assert.Equal(t, "pi_test_secret", out.ClientSecret)
	assert.Empty(t, out.CheckoutURL)
}

func TestCreateHandle_PayOS(t *testing.T) {
	f := newPaymentFixture()
	f.link = &linkProviderStub{}
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		OrderNumber:   "ORD-2608-0001",
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodPayOS,
	}, nil)

	out, err := uc.CreateHandle(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, "PAYOS", out.Provider)
	assert.Contains(t, out.CheckoutURL, "ORD-2608-0001")
}

func TestCreateHandle_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{}
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		PaymentStatus: model.PaymentStatusPaid,
		PaymentMethod: model.PaymentMethodStripe,
	}, nil)

	_, err := uc.CreateHandle(context.Background(), 1, 10)
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "already paid")
}

func TestCreateHandle_CODHasNoHandle(t *testing.T) {
	f := newPaymentFixture()
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodCOD,
	}, nil)

	_, err := uc.CreateHandle(context.Background(), 1, 10)
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestCreateHandle_StripeNotConfigured(t *testing.T) {
	f := newPaymentFixture()
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodStripe,
	}, nil)

	_, err := uc.CreateHandle(context.Background(), 1, 10)
	assertHTTPStatus(t, err, http.StatusServiceUnavailable)
}

func TestCreateHandle_OtherUsersOrderHidden(t *testing.T) {
	f := newPaymentFixture()
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 2, TotalAmount: 900_000,
		PaymentMethod: model.PaymentMethodStripe,
	}, nil)

	_, err := uc.CreateHandle(context.Background(), 1, 10)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestCreateHandle_CancelledNotPayable(t *testing.T) {
	f := newPaymentFixture()
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		Status:        model.OrderStatusCancelled,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodStripe,
	}, nil)

	_, err := uc.CreateHandle(context.Background(), 1, 10)
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "not payable")
}

// =====================
// 返金
// =====================

func TestRefund_StripeCallsProvider(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{}
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		PaymentStatus:        model.PaymentStatusPaid,
		PaymentMethod:        model.PaymentMethodStripe,
		PaymentTransactionID: "pi_123",
	}, nil)
	f.orders.On("MarkRefunded", mock.Anything, int64(10)).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionRefundOrder && l.ResourceID == 10
	})).Return(nil)

	err := uc.Refund(context.Background(), 7, 10)
	assert.NoError(t, err)
	assert.True(t, f.intent.refundCalled)

	f.orders.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestRefund_CODPaidSkipsProvider(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{}
	uc := f.build()

	//COD注文（配達完了時に回収済み）は台帳だけ返金にする
	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		PaymentStatus: model.PaymentStatusPaid,
		PaymentMethod: model.PaymentMethodCOD,
	}, nil)
	f.orders.On("MarkRefunded", mock.Anything, int64(10)).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.Refund(context.Background(), 7, 10)
	assert.NoError(t, err)
	assert.False(t, f.intent.refundCalled)
}

func TestRefund_NotPaid(t *testing.T) {
	f := newPaymentFixture()
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodStripe,
	}, nil)

	err := uc.Refund(context.Background(), 7, 10)
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "not paid")

	f.orders.AssertNotCalled(t, "MarkRefunded", mock.Anything, mock.Anything)
}

func TestRefund_ProviderErrorAborts(t *testing.T) {
	f := newPaymentFixture()
	f.intent = &intentProviderStub{refundErr: assert.AnError}
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, TotalAmount: 900_000,
		PaymentStatus:        model.PaymentStatusPaid,
		PaymentMethod:        model.PaymentMethodStripe,
		PaymentTransactionID: "pi_123",
	}, nil)

	err := uc.Refund(context.Background(), 7, 10)
	assertHTTPStatus(t, err, http.StatusBadGateway)

	f.orders.AssertNotCalled(t, "MarkRefunded", mock.Anything, mock.Anything)
}

func TestRefund_NotFound(t *testing.T) {
	f := newPaymentFixture()
	uc := f.build()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{}, repo.ErrNotFound)

	err := uc.Refund(context.Background(), 7, 10)
	assertHTTPStatus(t, err, http.StatusNotFound)
}
