package usecase_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// PlaceOrder用のモック一式
type orderFixture struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	inventory  *InventoryRepoMock
	products   *ProductRepoMock
	variants   *VariantRepoMock
	coupons    *CouponRepoMock
	users      *UserRepoMock
	warranties *WarrantyRepoMock
	addresses  *AddressRepoMock
	loyalty    *LoyaltyRepoMock

	uc *usecase.OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		inventory:  new(InventoryRepoMock),
		products:   new(ProductRepoMock),
		variants:   new(VariantRepoMock),
		coupons:    new(CouponRepoMock),
		users:      new(UserRepoMock),
		warranties: new(WarrantyRepoMock),
		addresses:  new(AddressRepoMock),
		loyalty:    new(LoyaltyRepoMock),
	}

	tx := &txManagerStub{repos: &txReposStub{
		orders:     f.orders,
		orderItems: f.orderItems,
		carts:      f.carts,
		cartItems:  f.cartItems,
		inventory:  f.inventory,
		products:   f.products,
		variants:   f.variants,
		coupons:    f.coupons,
		users:      f.users,
		warranties: f.warranties,
	}}

	f.uc = usecase.NewOrderUsecase(tx, f.addresses, f.loyalty, senderStub{})
	return f
}

func (f *orderFixture) withOwnedAddress(userID, addressID int64) {
	f.addresses.On("FindByID", mock.Anything, addressID).Return(model.Address{
		ID:         addressID,
		UserID:     userID,
		Name:       "山田太郎",
		Phone:      "090-0000-0000",
		PostalCode: "700000",
		City:       "Ho Chi Minh",
		Line1:      "123 Le Loi",
	}, nil)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	userID := int64(1)
	variantID := int64(7)

	f.withOwnedAddress(userID, 5)

	f.carts.On("FindActiveByUserID", mock.Anything, userID).
		Return(model.Cart{ID: 10, UserID: userID, Status: model.CartStatusActive}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 250_000},
		{ID: 2, CartID: 10, ProductID: 200, VariantID: &variantID, Quantity: 1},
	}, nil)

	//小計はカートのスナップショットではなく現在価格で決まる
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Keyboard", SKU: "KB-1", Price: 300_000, IsActive: true}, nil)
	f.products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, Name: "Laptop", SKU: "LP-1", Price: 1_000_000, IsActive: true}, nil)
	f.variants.On("FindByID", mock.Anything, variantID).
		Return(model.ProductVariant{ID: variantID, ProductID: 200, SKU: "LP-1-16GB", Name: "16GB", Price: 1_200_000, Stock: 3}, nil)

	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	f.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, variantID, int64(1)).Return(true, nil)

	f.users.On("FindByID", mock.Anything, userID).
		Return(&model.User{ID: userID, Email: "taro@example.com", LoyaltyTier: model.TierNone}, nil)
	f.loyalty.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)

	f.orders.On("CountAll", mock.Anything).Return(int64(7), nil)

	//subtotal = 300,000*2 + 1,200,000*1 = 1,800,000（割引なし・税/送料0）
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Subtotal == 1_800_000 &&
			o.DiscountAmount == 0 &&
			o.TotalAmount == 1_800_000 &&
			o.Status == model.OrderStatusPending &&
			o.PaymentStatus == model.PaymentStatusPending &&
			o.PaymentMethod == model.PaymentMethodCOD
	})).Return(int64(99), nil)

	f.orderItems.On("CreateBulk", mock.Anything, int64(99), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 && items[1].UnitPriceSnapshot == 1_200_000
	})).Return(nil)

	f.carts.On("UpdateStatus", mock.Anything, int64(10), model.CartStatusConverted).Return(nil)
	f.carts.On("Clear", mock.Anything, int64(10)).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), userID, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "cod",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(99), out.ID)
	assert.Equal(t, int64(1_800_000), out.Subtotal)
	assert.Equal(t, out.Subtotal+out.TaxAmount+out.ShippingFee-out.DiscountAmount, out.TotalAmount)

	//注文番号は ORD-YYMM-連番
	wantNumber := fmt.Sprintf("ORD-%s-0008", time.Now().Format("0601"))
	assert.Equal(t, wantNumber, out.OrderNumber)

	f.orders.AssertExpectations(t)
	f.carts.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	f.withOwnedAddress(1, 5)

	f.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "COD",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "cart empty")
}

func TestPlaceOrder_NoActiveCart(t *testing.T) {
	f := newOrderFixture()
	f.withOwnedAddress(1, 5)

	//直前の注文でCONVERTED済みならACTIVEは見つからない
	f.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{}, repo.ErrNotFound)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "COD",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "cart empty")
}

func TestPlaceOrder_OutOfStockAbortsOrder(t *testing.T) {
	f := newOrderFixture()
	f.withOwnedAddress(1, 5)

	f.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 5},
	}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Keyboard", SKU: "KB-1", Price: 300_000, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(5)).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "COD",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "out of stock")

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_CouponAppliedAndConsumed(t *testing.T) {
	f := newOrderFixture()
	f.withOwnedAddress(1, 5)

	f.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 1},
	}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Laptop", SKU: "LP-1", Price: 1_000_000, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(1)).Return(true, nil)
	f.users.On("FindByID", mock.Anything, int64(1)).
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	f.coupons.On("FindActiveByCode", mock.Anything, "SALE10").
		Return(percentCoupon("SALE10", 10, 500_000, 50_000), nil)
	f.coupons.On("ConsumeUsage", mock.Anything, int64(1)).Return(true, nil)

	f.orders.On("CountAll", mock.Anything).Return(int64(0), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Subtotal == 1_000_000 &&
			o.DiscountAmount == 50_000 &&
			o.TotalAmount == 950_000 &&
			o.CouponCode == "SALE10"
	})).Return(int64(42), nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.Anything).Return(nil)
	f.carts.On("UpdateStatus", mock.Anything, int64(10), model.CartStatusConverted).Return(nil)
	f.carts.On("Clear", mock.Anything, int64(10)).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "STRIPE",
		CouponCode:    " sale10 ",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(50_000), out.DiscountAmount)
	assert.Equal(t, int64(950_000), out.TotalAmount)

	f.coupons.AssertExpectations(t)
	//クーポン使用時はランク割引の設定を読まない
	f.loyalty.AssertNotCalled(t, "ListOrdered", mock.Anything)
}

func TestPlaceOrder_CouponUsageLimitReached(t *testing.T) {
	f := newOrderFixture()
	f.withOwnedAddress(1, 5)

	f.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 1},
	}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Laptop", SKU: "LP-1", Price: 1_000_000, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(1)).Return(true, nil)
	f.users.On("FindByID", mock.Anything, int64(1)).
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	f.coupons.On("FindActiveByCode", mock.Anything, "SALE10").
		Return(percentCoupon("SALE10", 10, 0, 0), nil)
	f.coupons.On("ConsumeUsage", mock.Anything, int64(1)).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "COD",
		CouponCode:    "SALE10",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "usage limit")

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_LoyaltyDiscountWithoutCoupon(t *testing.T) {
	f := newOrderFixture()
	f.withOwnedAddress(1, 5)

	f.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 1},
	}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Laptop", SKU: "LP-1", Price: 1_000_000, IsActive: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(1)).Return(true, nil)

	//goldランクは10%
	f.users.On("FindByID", mock.Anything, int64(1)).
		Return(&model.User{ID: 1, Email: "gold@example.com", LoyaltyTier: model.TierGold}, nil)
	f.loyalty.On("ListOrdered", mock.Anything).Return([]model.LoyaltyConfig{}, nil)

	f.orders.On("CountAll", mock.Anything).Return(int64(0), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.DiscountAmount == 100_000 && o.TotalAmount == 900_000 && o.CouponCode == ""
	})).Return(int64(43), nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(43), mock.Anything).Return(nil)
	f.carts.On("UpdateStatus", mock.Anything, int64(10), model.CartStatusConverted).Return(nil)
	f.carts.On("Clear", mock.Anything, int64(10)).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "COD",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(100_000), out.DiscountAmount)
}

func TestPlaceOrder_AddressNotOwned(t *testing.T) {
	f := newOrderFixture()

	f.addresses.On("FindByID", mock.Anything, int64(5)).
		Return(model.Address{ID: 5, UserID: 99}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "COD",
	})
	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestPlaceOrder_InvalidPaymentMethod(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		AddressID:     5,
		PaymentMethod: "BITCOIN",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// キャンセル
// =====================

func TestCancelMyOrder_RestoresStock(t *testing.T) {
	f := newOrderFixture()
	variantID := int64(7)

	f.orders.On("FindByID", mock.Anything, int64(50)).Return(model.Order{
		ID: 50, UserID: 1, OrderNumber: "ORD-2608-0001", Status: model.OrderStatusPending,
	}, nil)
	f.orderItems.On("ListByOrderID", mock.Anything, int64(50)).Return([]model.OrderItem{
		{ID: 1, ProductID: 100, Quantity: 2},
		{ID: 2, ProductID: 200, VariantID: &variantID, Quantity: 1},
	}, nil)

	f.inventory.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	f.inventory.On("IncreaseVariantStock", mock.Anything, variantID, int64(1)).Return(nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(50), model.OrderStatusCancelled).Return(nil)
	f.users.On("FindByID", mock.Anything, int64(1)).
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	out, err := f.uc.CancelMyOrder(context.Background(), 1, 50)
	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusCancelled), out.Status)

	f.inventory.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestCancelMyOrder_ShippedRejected(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(50)).Return(model.Order{
		ID: 50, UserID: 1, Status: model.OrderStatusShipped,
	}, nil)

	_, err := f.uc.CancelMyOrder(context.Background(), 1, 50)
	assertHTTPStatus(t, err, http.StatusBadRequest)

	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelMyOrder_OtherUsersOrderHidden(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(50)).Return(model.Order{
		ID: 50, UserID: 2, Status: model.OrderStatusPending,
	}, nil)

	//他人の注文は404扱い
	_, err := f.uc.CancelMyOrder(context.Background(), 1, 50)
	assertHTTPStatus(t, err, http.StatusNotFound)
}
