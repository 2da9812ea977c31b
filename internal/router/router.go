package router

import (
	"github.com/coffeeshop/cartsync/internal/config"
	publichandlers "github.com/coffeeshop/cartsync/internal/http/handlers/public"
	"github.com/coffeeshop/cartsync/internal/i18n"
	"github.com/coffeeshop/cartsync/internal/logger"
	"github.com/coffeeshop/cartsync/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	i18n.SetDefaultLocale(cfg.Server.Locale)

	r := gin.New()
	h := publichandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", h.Health)

	apiV1 := r.Group("/api/v1")
	{
		cart := apiV1.Group("/cart")
		{
			cart.GET("", h.GetCart)
			cart.DELETE("", h.ClearCart)
			cart.GET("/status", h.GetCartStatus)
			cart.POST("/sync", h.SyncCart)
			cart.POST("/items", h.AddCartItem)
			cart.PUT("/items/:id", h.UpdateCartItem)
			cart.DELETE("/items/:id", h.DeleteCartItem)
			cart.PUT("/deli-option", h.UpdateDeliOption)
			cart.PUT("/payment-method", h.UpdatePaymentMethod)
			cart.POST("/checkout", h.Checkout)
		}

		session := apiV1.Group("/session")
		{
			session.POST("/reset", h.ResetSession)
		}
	}

	return r
}
