package public

import (
	"errors"

	"github.com/coffeeshop/cartsync/internal/cartapi"
	"github.com/coffeeshop/cartsync/internal/http/response"
	"github.com/coffeeshop/cartsync/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			var cause error
			if rule.code >= response.CodeInternal {
				cause = err
			}
			respondError(c, rule.code, rule.key, cause)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidArgument, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrUnauthenticated, code: response.CodeUnauthorized, key: "error.unauthorized"},
	{target: service.ErrForbidden, code: response.CodeForbidden, key: "error.forbidden"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: cartapi.ErrCircuitOpen, code: response.CodeServiceUnavailable, key: "error.network"},
	{target: service.ErrNetwork, code: response.CodeBadGateway, key: "error.network"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal")
}
