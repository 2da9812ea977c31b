package shared

import (
	"github.com/coffeeshop/cartsync/internal/http/response"
	"github.com/coffeeshop/cartsync/internal/i18n"
	"github.com/coffeeshop/cartsync/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(response.RequestIDKey); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回国际化错误响应；5xx 记 error，其余有原始错误时记 warn。
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	appErr := response.WrapKeyError(code, key, msg, err)
	if err != nil {
		log := RequestLog(c)
		if appErr.Code >= response.CodeInternal {
			log.Errorw("handler_error", "code", appErr.Code, "key", appErr.Key, "error", err)
		} else {
			log.Warnw("handler_error", "code", appErr.Code, "key", appErr.Key, "error", err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondSuccess 返回带国际化消息的成功响应。
func RespondSuccess(c *gin.Context, key string, data interface{}) {
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), key), data)
}
