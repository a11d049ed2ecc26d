package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 会員ランク閾値の管理
type AdminLoyaltyHandler struct {
	uc *usecase.LoyaltyUsecase
}

func NewAdminLoyaltyHandler(uc *usecase.LoyaltyUsecase) *AdminLoyaltyHandler {
	return &AdminLoyaltyHandler{uc: uc}
}

type LoyaltyConfigRequest struct {
	Tier            string `json:"tier"`
	MinSpent        int64  `json:"min_spent"`
	DiscountPercent int64  `json:"discount_percent"`
}

func (h *AdminLoyaltyHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin/loyalty-configs")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RoleGuard(string(model.RoleManager), string(model.RoleAdmin)))

	g.GET("", h.list)
	g.PUT("", h.upsert, middleware.RoleGuard(string(model.RoleAdmin)))
}

func (h *AdminLoyaltyHandler) list(c echo.Context) error {
	out, err := h.uc.ListConfigs(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *AdminLoyaltyHandler) upsert(c echo.Context) error {
	var req LoyaltyConfigRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.UpsertConfig(c.Request().Context(), usecase.LoyaltyConfigInput(req)); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "config saved"})
}
