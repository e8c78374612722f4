package routes

import (
	"sari_back_end/internal/handlers/payment"
	"sari_back_end/internal/handlers/product"
	"sari_back_end/internal/handlers/user"
	"sari_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Catalogue (public)
	api.GET("/products", product.GetProducts)
	api.GET("/products/search", product.SearchProducts)
	api.GET("/products/:id", product.GetProductDetails)

	// Auth
	api.POST("/register", middleware.RegisterRateLimit(), user.Register)
	api.POST("/login", middleware.LoginRateLimit(), user.Login)
	api.POST("/logout", user.Logout)

	// Webhook PayMongo — PAS d'auth : callback provider
	api.POST("/webhook/paymongo", payment.PayMongoWebhook)

	// Endpoints authentifiés
	auth := api.Group("/")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", user.Profile)

		auth.GET("/cart", user.GetCart)
		auth.POST("/cart/add", user.AddToCart)
		auth.PUT("/cart/:productId", user.UpdateCartItem)
		auth.DELETE("/cart/:productId", user.RemoveFromCart)

		auth.POST("/products", product.CreateProduct)
		auth.PUT("/products/:id", product.UpdateProduct)

		auth.POST("/checkout/gcash", payment.CheckoutGCash)

		auth.GET("/orders", payment.GetMyOrders)
		auth.GET("/orders/:id", payment.GetOrderByID)
	}
}
