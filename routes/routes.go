package routes

import (
	"loja-backend/handlers"
	"loja-backend/middleware"
	"loja-backend/services"
	"loja-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Services struct {
	Carts    *services.CartService
	Products *services.ProductService
	Users    *services.UserService
	// Fallback is optional and only feeds the health check.
	Fallback handlers.PendingCounter
	// LoginLimiter is optional; nil leaves login unthrottled.
	LoginLimiter *middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, svc Services) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterJSONTagNames(v)
	}

	cartHandler := &handlers.CartHandler{Carts: svc.Carts}
	productHandler := &handlers.ProductHandler{Products: svc.Products}
	authHandler := &handlers.AuthHandler{Users: svc.Users}
	healthHandler := &handlers.HealthHandler{Fallback: svc.Fallback}

	carrinho := r.Group("/carrinho")
	{
		carrinho.GET("", cartHandler.GetCart)
		carrinho.POST("", cartHandler.AddToCart)
		carrinho.POST("/remover-item", cartHandler.RemoveItem)
		carrinho.PUT("/atualizar", cartHandler.UpdateCartItem)
		carrinho.DELETE("", cartHandler.ClearCart)
	}

	produtos := r.Group("/produtos")
	{
		produtos.GET("", productHandler.GetProducts)
		produtos.GET("/:id", productHandler.GetProduct)
		produtos.POST("", productHandler.CreateProduct)
		produtos.POST("/sincronizar", middleware.AuthMiddleware(), middleware.AdminMiddleware(), productHandler.SyncProducts)
	}

	usuarios := r.Group("/usuarios")
	{
		usuarios.GET("", authHandler.ListUsers)
		usuarios.POST("", authHandler.Register)
		if svc.LoginLimiter != nil {
			usuarios.POST("/login", svc.LoginLimiter.Middleware(), authHandler.Login)
		} else {
			usuarios.POST("/login", authHandler.Login)
		}
		usuarios.GET("/me", middleware.AuthMiddleware(), authHandler.GetProfile)
	}

	r.GET("/health", healthHandler.Health)
}
