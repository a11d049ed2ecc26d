package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理側のユーザー一覧・ロール変更・強制ログアウト
type AdminUserHandler struct {
	uc *usecase.AuthUsecase
}

func NewAdminUserHandler(uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type AdminUserRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RoleGuard(string(model.RoleManager), string(model.RoleAdmin)))

	adminOnly := middleware.RoleGuard(string(model.RoleAdmin))

	g.GET("/users", h.list)
	g.PATCH("/users/:id/role", h.updateRole, adminOnly)
	g.POST("/users/:id/force-logout", h.forceLogout, adminOnly)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	out, err := h.uc.AdminListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return writeAuthError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}

func (h *AdminUserHandler) updateRole(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	var req AdminUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.AdminUpdateUserRole(c.Request().Context(), adminID, targetID, req.Role); err != nil {
		return writeAuthError(c, err)
	}
	return respondOK(c, http.StatusOK, map[string]string{"message": "role updated"})
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return respondFail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.ForceLogout(c.Request().Context(), targetID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return respondOK(c, http.StatusOK, out)
}
