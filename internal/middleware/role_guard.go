package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// contextのroleが許可リストに入っているかを確認する。
// 管理画面の読み取りはMANAGER以上、書き込みはADMINのみ、のように使い分ける
func RoleGuard(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, failJSON("unauthorized"))
			}

			for _, a := range allowed {
				if role == a {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, failJSON("forbidden"))
		}
	}
}
