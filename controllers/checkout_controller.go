package controllers

import (
	"net/http"

	apperrors "storefront/errors"
	"storefront/logger"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutController struct {
	Sessions SessionOpener
	Checkout *services.CheckoutService
}

func NewCheckoutController(sessions SessionOpener, checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{Sessions: sessions, Checkout: checkout}
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// CreateIntent returns the client secret the browser confirms the payment with.
func (cc *CheckoutController) CreateIntent(c *gin.Context) {
	sess, buf := openSession(c, cc.Sessions)
	intent, err := cc.Checkout.CreatePaymentIntent(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err, gin.H{"notifications": buf.Items()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_intent": intent,
		"total":          cc.Checkout.Total(sess.Cart),
	})
}

func (cc *CheckoutController) PlaceOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrValidation, "A payment method is required"), nil)
		return
	}

	sess, buf := openSession(c, cc.Sessions)
	order, err := cc.Checkout.Checkout(c.Request.Context(), sess, req.PaymentMethod)
	if err != nil {
		respondError(c, err, gin.H{"notifications": buf.Items()})
		return
	}

	logger.Info(c, "checkout completed", zap.String("order_number", order.OrderNumber))
	c.JSON(http.StatusCreated, gin.H{
		"order":         order,
		"cart":          sess.Cart.Cart(),
		"notifications": buf.Items(),
	})
}

func (cc *CheckoutController) ListOrders(c *gin.Context) {
	sess, _ := openSession(c, cc.Sessions)
	orders, err := cc.Checkout.Orders(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
