package handler

import (
	"net/http"
	"strings"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理側の商品・カテゴリ・バリアント・在庫。参照はMANAGER以上、更新はADMINのみ
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

type AdminProductRequest struct {
	CategoryID  *int64 `json:"category_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
	IsActive    bool   `json:"is_active"`
}

type AdminCategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

type AdminVariantRequest struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	IsDefault bool   `json:"is_default"`
}

type AdminInventoryRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RoleGuard(string(model.RoleManager), string(model.RoleAdmin)))

	adminOnly := middleware.RoleGuard(string(model.RoleAdmin))

	g.POST("/products", h.createProduct, adminOnly)
	g.PUT("/products/:id", h.updateProduct, adminOnly)
	g.DELETE("/products/:id", h.deleteProduct, adminOnly)
	g.PUT("/products/:id/inventory", h.updateInventory, adminOnly)

	g.POST("/categories", h.createCategory, adminOnly)
	g.PUT("/categories/:id", h.updateCategory, adminOnly)
	g.DELETE("/categories/:id", h.deleteCategory, adminOnly)

	g.POST("/products/:id/variants", h.createVariant, adminOnly)
	g.PUT("/variants/:id", h.updateVariant, adminOnly)
	g.DELETE("/variants/:id", h.deleteVariant, adminOnly)
}

func toAdminProductInput(req AdminProductRequest) usecase.AdminCreateProductInput {
	return usecase.AdminCreateProductInput{
		CategoryID:  req.CategoryID,
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	}
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	id, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, toAdminProductInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusCreated, map[string]int64{"id": id})
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, productID, toAdminProductInput(req)); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "updated"})
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, productID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminInventoryRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, productID, req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "inventory updated"})
}

func (h *AdminProductHandler) createCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req AdminCategoryRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.AdminCreateCategory(c.Request().Context(), adminID, usecase.AdminCategoryInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusCreated, out)
}

func (h *AdminProductHandler) updateCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminCategoryRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.AdminUpdateCategory(c.Request().Context(), adminID, categoryID, usecase.AdminCategoryInput(req)); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "updated"})
}

func (h *AdminProductHandler) deleteCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.AdminDeleteCategory(c.Request().Context(), adminID, categoryID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *AdminProductHandler) createVariant(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminVariantRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.AdminCreateVariant(c.Request().Context(), adminID, productID, usecase.AdminVariantInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusCreated, out)
}

func (h *AdminProductHandler) updateVariant(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	variantID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminVariantRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.AdminUpdateVariant(c.Request().Context(), adminID, variantID, usecase.AdminVariantInput(req)); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "updated"})
}

func (h *AdminProductHandler) deleteVariant(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	variantID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.AdminDeleteVariant(c.Request().Context(), adminID, variantID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "deleted"})
}
