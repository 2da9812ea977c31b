package public

import "github.com/coffeeshop/cartsync/internal/provider"

// Handler 本地网关接口处理器入口
// 说明：该处理器只暴露同一个购物车引擎实例，不实现购物车后端。
type Handler struct {
	*provider.Container
}

// New 创建网关处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
