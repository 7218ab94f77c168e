package api

import (
	"errors"
	"log/slog"
	"strconv"

	"tripbudget/models"

	"github.com/gin-gonic/gin"
)

// RespondError 按错误类别映射 HTTP 状态码
// 校验失败 400，行程不存在 404，无权限 403，其余 500（release 模式下隐藏详情）
func RespondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequest(c, verr.Error())
	case errors.Is(err, models.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, models.ErrNotFound):
		NotFound(c, "行程不存在")
	case errors.Is(err, models.ErrForbidden):
		Forbidden(c, "无权执行该操作")
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		InternalError(c, SafeErrorMessage(err, "服务器内部错误"))
	}
}

// itineraryIDParam 解析路径中的行程 ID
func itineraryIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "无效的行程 ID")
		return 0, false
	}
	return uint(id), true
}
