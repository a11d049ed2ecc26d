package handler

import (
	"net/http"
	"strconv"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全レスポンス共通の封筒。
// 成功: {"status":"success","data":...}
// 4xx:  {"status":"fail","message":...}
// 5xx:  {"status":"error","message":"internal error"}（内部事情は出さない）
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

type FailResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondOK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, SuccessResponse{Status: "success", Data: data})
}

func respondFail(c echo.Context, status int, message string) error {
	return c.JSON(status, FailResponse{Status: "fail", Message: message})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= 500 {
			return c.JSON(he.Status, FailResponse{Status: "error", Message: "internal error"})
		}
		return respondFail(c, he.Status, he.Message)
	}

	//500
	return c.JSON(http.StatusInternalServerError, FailResponse{Status: "error", Message: "internal error"})
}

// AuthJWTがcontextに入れたuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	raw := c.Get(middleware.CtxUserIDKey)
	userID, ok := raw.(int64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
