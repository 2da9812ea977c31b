package public

import (
	handlershared "github.com/coffeeshop/cartsync/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondSuccess(c *gin.Context, key string, data interface{}) {
	handlershared.RespondSuccess(c, key, data)
}

func getCartItemID(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "id", "error.cart_item_id_invalid")
}
