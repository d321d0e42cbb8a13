package routes

import (
	"net/http"

	"storefront/controllers"
	"storefront/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted under /api.
type Controllers struct {
	Catalog  *controllers.CatalogController
	Cart     *controllers.CartController
	Auth     *controllers.AuthController
	Checkout *controllers.CheckoutController
}

// RegisterRoutes mounts the storefront API. tokens resolves the visitor
// session for every cart, auth and checkout route.
func RegisterRoutes(r *gin.Engine, h Controllers, tokens middleware.SessionTokenCodec) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(middleware.NotFound())

	api := r.Group("/api")
	{
		api.GET("/products", h.Catalog.ListProducts)
		api.GET("/products/featured", h.Catalog.Featured)
		api.GET("/products/:id", h.Catalog.GetProduct)
		api.GET("/categories", h.Catalog.ListCategories)
		api.GET("/catalog/status", h.Catalog.Status)
		api.POST("/catalog/reload", h.Catalog.Reload)
		api.GET("/search", h.Catalog.Search)
	}

	session := api.Group("")
	session.Use(middleware.Session(tokens))
	{
		session.GET("/cart", h.Cart.GetCart)
		session.DELETE("/cart", h.Cart.ClearCart)
		session.POST("/cart/items", h.Cart.AddItem)
		session.PATCH("/cart/items/:id", h.Cart.UpdateItem)
		session.DELETE("/cart/items/:id", h.Cart.RemoveItem)
		session.POST("/cart/open", h.Cart.SetOpen)

		session.POST("/auth/signup", h.Auth.SignUp)
		session.POST("/auth/login", h.Auth.Login)
		session.POST("/auth/logout", h.Auth.Logout)
		session.GET("/auth/me", h.Auth.Me)

		session.POST("/checkout/intent", h.Checkout.CreateIntent)
		session.POST("/checkout", h.Checkout.PlaceOrder)
		session.GET("/orders", h.Checkout.ListOrders)
	}
}
