package handler

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理側のクーポンCRUD
type AdminCouponHandler struct {
	uc *usecase.CouponUsecase
}

func NewAdminCouponHandler(uc *usecase.CouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{uc: uc}
}

type AdminCouponRequest struct {
	Code           string     `json:"code"`
	Type           string     `json:"type"`
	Value          int64      `json:"value"`
	MinOrderAmount int64      `json:"min_order_amount"`
	MaxDiscount    int64      `json:"max_discount"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	UsageLimit     int64      `json:"usage_limit"`
	IsActive       bool       `json:"is_active"`
}

func (h *AdminCouponHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin/coupons")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RoleGuard(string(model.RoleManager), string(model.RoleAdmin)))

	adminOnly := middleware.RoleGuard(string(model.RoleAdmin))

	g.POST("", h.create, adminOnly)
	g.PUT("/:id", h.update, adminOnly)
	g.DELETE("/:id", h.delete, adminOnly)
}

func (h *AdminCouponHandler) create(c echo.Context) error {
	var req AdminCouponRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.CreateCoupon(c.Request().Context(), usecase.CouponInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusCreated, out)
}

func (h *AdminCouponHandler) update(c echo.Context) error {
	couponID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminCouponRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.UpdateCoupon(c.Request().Context(), couponID, usecase.CouponInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *AdminCouponHandler) delete(c echo.Context) error {
	couponID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.DeleteCoupon(c.Request().Context(), couponID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "deleted"})
}
