package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type cartFixture struct {
	carts    *CartRepoMock
	items    *CartItemRepoMock
	products *ProductRepoMock
	variants *VariantRepoMock

	uc *usecase.CartUsecase
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		carts:    new(CartRepoMock),
		items:    new(CartItemRepoMock),
		products: new(ProductRepoMock),
		variants: new(VariantRepoMock),
	}
	f.uc = usecase.NewCartUsecase(f.carts, f.items, f.products, f.variants)
	return f
}

func TestAddToCart_Success(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Keyboard", Price: 300_000, Stock: 5, IsActive: true}, nil)

	//1回目: 在庫チェック用（空）。2回目: レスポンス組み立て用
	f.items.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{}, nil).Once()
	f.items.On("UpsertLine", mock.Anything, int64(10), int64(100), (*int64)(nil), int64(2), int64(300_000)).
		Return(nil)
	f.items.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{
			{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 300_000, TotalPrice: 600_000},
		}, nil)

	out, err := f.uc.AddToCart(context.Background(), 1, usecase.AddCartInput{
		ProductID: 100,
		Quantity:  2,
	})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(600_000), out.Total)
	assert.Equal(t, "Keyboard", out.Items[0].Name)

	f.items.AssertExpectations(t)
}

func TestAddToCart_VariantPriceWins(t *testing.T) {
	f := newCartFixture()
	variantID := int64(7)

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, Name: "Laptop", Price: 1_000_000, Stock: 99, IsActive: true}, nil)
	f.variants.On("FindByID", mock.Anything, variantID).
		Return(model.ProductVariant{ID: variantID, ProductID: 200, Name: "16GB", Price: 1_200_000, Stock: 3}, nil)

	f.items.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{}, nil).Once()
	//スナップショット価格はバリアントの方
	f.items.On("UpsertLine", mock.Anything, int64(10), int64(200), &variantID, int64(1), int64(1_200_000)).
		Return(nil)
	f.items.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{
			{ID: 1, CartID: 10, ProductID: 200, VariantID: &variantID, Quantity: 1, UnitPriceSnapshot: 1_200_000, TotalPrice: 1_200_000},
		}, nil)

	out, err := f.uc.AddToCart(context.Background(), 1, usecase.AddCartInput{
		ProductID: 200,
		VariantID: &variantID,
		Quantity:  1,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Laptop / 16GB", out.Items[0].Name)

	f.items.AssertExpectations(t)
}

func TestAddToCart_StockExceededWithExistingQty(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Price: 300_000, Stock: 5, IsActive: true}, nil)

	//既存3 + 追加3 > 在庫5
	f.items.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{
			{ID: 1, CartID: 10, ProductID: 100, Quantity: 3},
		}, nil)

	_, err := f.uc.AddToCart(context.Background(), 1, usecase.AddCartInput{
		ProductID: 100,
		Quantity:  3,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "stock exceeded")

	f.items.AssertNotCalled(t, "UpsertLine",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart_VariantOfOtherProduct(t *testing.T) {
	f := newCartFixture()
	variantID := int64(7)

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Price: 300_000, Stock: 5, IsActive: true}, nil)
	//バリアントは別商品のもの
	f.variants.On("FindByID", mock.Anything, variantID).
		Return(model.ProductVariant{ID: variantID, ProductID: 999}, nil)

	_, err := f.uc.AddToCart(context.Background(), 1, usecase.AddCartInput{
		ProductID: 100,
		VariantID: &variantID,
		Quantity:  1,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "invalid variant_id")
}

func TestAddToCart_InactiveProduct(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, IsActive: false}, nil)

	_, err := f.uc.AddToCart(context.Background(), 1, usecase.AddCartInput{
		ProductID: 100,
		Quantity:  1,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestUpdateCartItem_NotOwned(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(false, nil)

	_, err := f.uc.UpdateCartItem(context.Background(), 1, 55, usecase.UpdateCartItemInput{Quantity: 2})
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestUpdateCartItem_StockExceeded(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(true, nil)
	f.items.On("FindByID", mock.Anything, int64(55)).
		Return(model.CartItem{ID: 55, CartID: 10, ProductID: 100, Quantity: 1}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Stock: 3, IsActive: true}, nil)

	_, err := f.uc.UpdateCartItem(context.Background(), 1, 55, usecase.UpdateCartItemInput{Quantity: 10})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "stock exceeded")

	f.items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteCartItem_Success(t *testing.T) {
	f := newCartFixture()

	f.items.On("IsOwnedByUser", mock.Anything, int64(55), int64(1)).Return(true, nil)
	f.items.On("DeleteByID", mock.Anything, int64(55)).Return(nil)
	f.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.items.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{}, nil)

	out, err := f.uc.DeleteCartItem(context.Background(), 1, 55)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
}

func TestGetCart_SkipsInactiveProducts(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.items.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{
			{ID: 1, CartID: 10, ProductID: 100, Quantity: 1, TotalPrice: 300_000},
			{ID: 2, CartID: 10, ProductID: 200, Quantity: 1, TotalPrice: 500_000},
		}, nil)
	f.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Keyboard", IsActive: true}, nil)
	//販売停止になった商品は表示も合計も除外
	f.products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, Name: "Ghost", IsActive: false}, nil)

	out, err := f.uc.GetCart(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(300_000), out.Total)
}

func TestAddToCart_NotFoundProduct(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	f.products.On("FindByID", mock.Anything, int64(404)).
		Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.AddToCart(context.Background(), 1, usecase.AddCartInput{
		ProductID: 404,
		Quantity:  1,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}
