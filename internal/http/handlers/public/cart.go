package public

import (
	"errors"

	"github.com/coffeeshop/cartsync/internal/constants"
	"github.com/coffeeshop/cartsync/internal/http/response"
	"github.com/coffeeshop/cartsync/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest 调整数量请求
type UpdateCartItemRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// ValueRequest 单值更新请求
type ValueRequest struct {
	Value string `json:"value" binding:"required"`
}

// GetCart 返回当前购物车视图（不访问后端）
func (h *Handler) GetCart(c *gin.Context) {
	response.Success(c, h.CartEngine.Snapshot())
}

// GetCartStatus 返回最近一次同步状态
func (h *Handler) GetCartStatus(c *gin.Context) {
	response.Success(c, h.CartEngine.Status())
}

// SyncCart 从后端重新拉取购物车
func (h *Handler) SyncCart(c *gin.Context) {
	snap, err := h.CartEngine.FetchCart(c.Request.Context())
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, snap)
}

// AddCartItem 加入购物车，quantity 缺省为 1
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.Size != "" && !constants.IsValidSize(req.Size) {
		respondError(c, response.CodeBadRequest, "error.size_invalid", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > constants.MaxAddQuantity {
		respondError(c, response.CodeBadRequest, "error.quantity_invalid", nil)
		return
	}
	snap, err := h.CartEngine.AddToCartN(c.Request.Context(), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, snap)
}

// UpdateCartItem 调整行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := getCartItemID(c)
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.Direction != constants.QuantityIncrement && req.Direction != constants.QuantityDecrement {
		respondError(c, response.CodeBadRequest, "error.direction_invalid", nil)
		return
	}
	snap, err := h.CartEngine.UpdateQuantity(c.Request.Context(), req.Direction, id)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, snap)
}

// DeleteCartItem 删除行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	id, ok := getCartItemID(c)
	if !ok {
		return
	}
	snap, err := h.CartEngine.RemoveFromCart(c.Request.Context(), id)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, snap)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	snap, err := h.CartEngine.ClearCart(c.Request.Context())
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondSuccess(c, "cart.cleared", snap)
}

// UpdateDeliOption 切换配送方式
func (h *Handler) UpdateDeliOption(c *gin.Context) {
	var req ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	snap, err := h.CartEngine.UpdateDeliOption(req.Value)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.deli_option_invalid", nil)
		return
	}
	response.Success(c, snap)
}

// UpdatePaymentMethod 切换支付方式
func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	var req ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	snap, err := h.CartEngine.UpdatePaymentMethod(req.Value)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.payment_invalid", nil)
		return
	}
	response.Success(c, snap)
}

// Checkout 下单并清空购物车
func (h *Handler) Checkout(c *gin.Context) {
	var req service.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.CartEngine.Checkout(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			respondError(c, response.CodeBadRequest, "error.checkout_info", nil)
			return
		}
		respondCartError(c, err)
		return
	}
	if result.ClearPending {
		respondSuccess(c, "cart.order_pending", result)
		return
	}
	respondSuccess(c, "cart.order_placed", result)
}
