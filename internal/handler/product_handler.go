package handler

import (
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products と /categories の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録。認証不要なのでミドルウェアは使わない
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, _ config.Config, _ repository.UserRepository) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/categories", h.categories)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return respondFail(c, http.StatusBadRequest, "invalid page")
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return respondFail(c, http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}

	q := c.QueryParam("q")
	sort := c.QueryParam("sort")

	var categoryID *int64
	if v := c.QueryParam("category_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondFail(c, http.StatusBadRequest, "invalid category_id")
		}
		categoryID = &x
	}

	var minPrice *int64
	if v := c.QueryParam("min_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondFail(c, http.StatusBadRequest, "invalid min_price")
		}
		minPrice = &x
	}

	var maxPrice *int64
	if v := c.QueryParam("max_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondFail(c, http.StatusBadRequest, "invalid max_price")
		}
		maxPrice = &x
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          q,
		CategoryID: categoryID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       sort,
	})
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, http.StatusOK, out)
}

// idが数字なら主キー、そうでなければスラッグとして引く
func (h *ProductHandler) detail(c echo.Context) error {
	raw := strings.TrimSpace(c.Param("id"))

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		p, err := h.uc.GetProductDetail(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return respondOK(c, http.StatusOK, p)
	}

	p, err := h.uc.GetProductBySlug(c.Request().Context(), raw)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, p)
}

func (h *ProductHandler) categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}
