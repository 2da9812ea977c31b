package public

import (
	"github.com/coffeeshop/cartsync/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	status := h.CartEngine.Status()
	response.Success(c, gin.H{
		"status":      "ok",
		"last_phase":  status.Phase,
		"credential":  h.Config.Credential.Store,
		"api_baseurl": h.Config.API.BaseURL,
	})
}

// ResetSession 登出：丢弃本地购物车视图
func (h *Handler) ResetSession(c *gin.Context) {
	h.CartEngine.Reset()
	respondSuccess(c, "session.reset", h.CartEngine.Snapshot())
}
