package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /couponsのHTTP
type CouponHandler struct {
	uc *usecase.CouponUsecase
}

func NewCouponHandler(uc *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

type ApplyCouponRequest struct {
	Code        string `json:"code"`
	OrderAmount int64  `json:"order_amount"`
}

func (h *CouponHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/coupons")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("/apply", h.apply)
	g.GET("/available", h.available)
}

// 見積もりだけ。使用回数はここでは消費しない
func (h *CouponHandler) apply(c echo.Context) error {
	var req ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.ApplyCoupon(c.Request().Context(), req.Code, req.OrderAmount)
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, http.StatusOK, out)
}

func (h *CouponHandler) available(c echo.Context) error {
	var orderAmount int64 = 0
	if v := c.QueryParam("order_amount"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return respondFail(c, http.StatusBadRequest, "invalid order_amount")
		}
		orderAmount = x
	}

	out, err := h.uc.ListAvailable(c.Request().Context(), orderAmount)
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, http.StatusOK, out)
}
