package routes

import (
	"net/http"
	"time"

	"cmticaret/controllers"
	"cmticaret/middleware"
	"cmticaret/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Users      *controllers.UserController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
	Coupons    *controllers.CouponController
	Extras     *controllers.ExtrasController
}

// Register mounts the full API surface on r.
func Register(r *gin.Engine, tokens *services.TokenService, c Controllers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.Auth(tokens)
	admin := middleware.RequireAdmin()
	// Credential endpoints are throttled per IP.
	loginLimit := middleware.RateLimit(rate.Every(time.Minute/20), 10)

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", loginLimit, c.Users.Register)
	users.POST("/login", loginLimit, c.Users.Login)
	users.GET("/profile", auth, c.Users.Profile)
	users.GET("", auth, admin, c.Users.ListUsers)

	products := api.Group("/products")
	products.GET("", c.Products.List)
	products.GET("/:id", c.Products.Get)
	products.GET("/:id/reviews", c.Extras.ListReviews)
	products.POST("/:id/reviews", auth, c.Extras.CreateReview)
	products.POST("", auth, admin, c.Products.Create)
	products.PUT("/:id", auth, admin, c.Products.Update)
	products.DELETE("/:id", auth, admin, c.Products.Delete)
	products.POST("/upload-image", auth, admin, c.Products.UploadImage)
	products.DELETE("/:id/reviews/:reviewId", auth, admin, c.Extras.DeleteReview)

	categories := api.Group("/categories")
	categories.GET("", c.Categories.List)
	categories.POST("", auth, admin, c.Categories.Create)
	categories.PUT("/:id", auth, admin, c.Categories.Update)
	categories.DELETE("/:id", auth, admin, c.Categories.Delete)

	cart := api.Group("/cart", auth)
	cart.GET("", c.Cart.Get)
	cart.POST("/items", c.Cart.AddItem)
	cart.PUT("/items/:productId", c.Cart.UpdateQuantity)
	cart.DELETE("/items/:productId", c.Cart.RemoveItem)
	cart.DELETE("", c.Cart.Clear)

	orders := api.Group("/orders")
	orders.POST("", auth, c.Orders.Checkout)
	orders.GET("", auth, c.Orders.List)
	orders.GET("/:id", auth, c.Orders.Get)
	orders.PATCH("/:id/status", auth, admin, c.Orders.UpdateStatus)

	// The provider redirects the buyer's browser here after the hosted
	// payment page; it carries the form token, not a session.
	api.POST("/payment/callback", c.Orders.PaymentCallback)
	api.GET("/payment/callback", c.Orders.PaymentCallback)

	coupons := api.Group("/coupons")
	coupons.POST("/validate", auth, c.Coupons.Validate)
	coupons.GET("", auth, admin, c.Coupons.List)
	coupons.POST("", auth, admin, c.Coupons.Create)
	coupons.DELETE("/:code", auth, admin, c.Coupons.Deactivate)

	api.POST("/newsletter/subscribe", c.Extras.SubscribeNewsletter)
}
