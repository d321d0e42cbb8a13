package controllers

import (
	"encoding/json"
	"net/http"

	apperrors "storefront/errors"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	Sessions SessionOpener
	Catalog  *services.CatalogStore
}

func NewCartController(sessions SessionOpener, catalog *services.CatalogStore) *CartController {
	return &CartController{Sessions: sessions, Catalog: catalog}
}

type AddItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

type SetOpenRequest struct {
	Open *bool `json:"open"`
}

func (cc *CartController) GetCart(c *gin.Context) {
	sess, buf := openSession(c, cc.Sessions)
	c.JSON(http.StatusOK, gin.H{"cart": sess.Cart.Cart(), "notifications": buf.Items()})
}

// AddItem merges the product into the cart. Missing or non-numeric
// quantities count as one.
func (cc *CartController) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payload"), nil)
		return
	}

	sess, buf := openSession(c, cc.Sessions)
	if req.ProductID <= 0 {
		err := apperrors.WithMessage(apperrors.ErrInvalidProduct, "Cannot add an invalid product to the cart")
		buf.Notify(models.NotificationError, err.Message)
		respondError(c, err, gin.H{"notifications": buf.Items()})
		return
	}

	product, err := cc.Catalog.Product(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err, gin.H{"notifications": buf.Items()})
		return
	}

	quantity, ok := parseQuantity(req.Quantity)
	if !ok {
		quantity = 1
	}
	if err := sess.Cart.AddToCart(c.Request.Context(), *product, quantity); err != nil {
		respondError(c, err, gin.H{"notifications": buf.Items()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": sess.Cart.Cart(), "notifications": buf.Items()})
}

// UpdateItem ignores non-numeric or out-of-range quantities; zero or less
// removes the line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid product id"), nil)
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payload"), nil)
		return
	}

	sess, buf := openSession(c, cc.Sessions)
	if quantity, ok := parseQuantity(req.Quantity); ok {
		sess.Cart.UpdateQuantity(c.Request.Context(), id, quantity)
	}
	c.JSON(http.StatusOK, gin.H{"cart": sess.Cart.Cart(), "notifications": buf.Items()})
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid product id"), nil)
		return
	}

	sess, buf := openSession(c, cc.Sessions)
	sess.Cart.RemoveFromCart(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"cart": sess.Cart.Cart(), "notifications": buf.Items()})
}

func (cc *CartController) ClearCart(c *gin.Context) {
	sess, buf := openSession(c, cc.Sessions)
	sess.Cart.ClearCart(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"cart": sess.Cart.Cart(), "notifications": buf.Items()})
}

// SetOpen shows or hides the cart panel. An empty body opens it.
func (cc *CartController) SetOpen(c *gin.Context) {
	var req SetOpenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payload"), nil)
			return
		}
	}
	open := true
	if req.Open != nil {
		open = *req.Open
	}

	sess, buf := openSession(c, cc.Sessions)
	sess.Cart.SetOpen(c.Request.Context(), open)
	c.JSON(http.StatusOK, gin.H{"cart": sess.Cart.Cart(), "notifications": buf.Items()})
}
