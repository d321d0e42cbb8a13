package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "storefront/errors"
	"storefront/events"
	"storefront/models"
	pkgaws "storefront/pkg/aws"
	"storefront/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errCheckoutDisabled = apperrors.WithMessage(apperrors.ErrServiceUnavailable, "Checkout is not available")

type CheckoutService struct {
	processor   PaymentProcessor
	orders      repository.OrderRepository
	publisher   events.Publisher
	metrics     MetricsRecorder
	currency    string
	shippingFee decimal.Decimal
}

// NewCheckoutService wires checkout. processor and orders may be nil, in
// which case checkout reports itself unavailable.
func NewCheckoutService(processor PaymentProcessor, orders repository.OrderRepository, publisher events.Publisher, metrics MetricsRecorder, currency string, shippingFee decimal.Decimal) *CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if currency == "" {
		currency = "eur"
	}
	return &CheckoutService{
		processor:   processor,
		orders:      orders,
		publisher:   publisher,
		metrics:     metrics,
		currency:    strings.ToLower(currency),
		shippingFee: shippingFee,
	}
}

// Total is the cart subtotal plus shipping.
func (s *CheckoutService) Total(cart *CartStore) decimal.Decimal {
	return cart.TotalPrice().Add(s.shippingFee)
}

// MinorUnits converts an amount to the smallest currency unit, rounding half
// away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *CheckoutService) precheck(sess *Session) (*models.User, error) {
	if s.processor == nil || s.orders == nil {
		return nil, errCheckoutDisabled
	}
	user := sess.Auth.CurrentUser()
	if user == nil {
		return nil, apperrors.ErrLoginRequired
	}
	if sess.Cart.IsEmpty() {
		return nil, apperrors.ErrEmptyCart
	}
	return user, nil
}

// CreatePaymentIntent prepares a payment for the browser to confirm itself.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, sess *Session) (*models.PaymentIntent, error) {
	user, err := s.precheck(sess)
	if err != nil {
		return nil, err
	}

	amount := MinorUnits(s.Total(sess.Cart))
	intent, err := s.processor.CreateIntent(ctx, amount, s.currency, map[string]string{
		"user_email": user.Email,
		"session_id": sess.ID,
	})
	if err != nil {
		zap.L().Error("failed to create payment intent", zap.Int64("amount", amount), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrPaymentFailed, err)
	}
	return intent, nil
}

// Checkout charges the cart and records the order. The cart is only cleared
// once both payment and order insert have succeeded.
func (s *CheckoutService) Checkout(ctx context.Context, sess *Session, paymentMethod string) (*models.Order, error) {
	user, err := s.precheck(sess)
	if err != nil {
		sess.Notifier.Notify(models.NotificationError, apperrors.From(err).Message)
		return nil, err
	}
	if strings.TrimSpace(paymentMethod) == "" {
		err := apperrors.WithMessage(apperrors.ErrValidation, "A payment method is required")
		sess.Notifier.Notify(models.NotificationError, err.Message)
		return nil, err
	}

	lines := sess.Cart.Lines()
	total := s.Total(sess.Cart)
	amount := MinorUnits(total)

	intent, err := s.processor.CreateIntent(ctx, amount, s.currency, map[string]string{
		"user_email": user.Email,
		"session_id": sess.ID,
	})
	if err != nil {
		return nil, s.paymentFailed(ctx, sess, apperrors.Wrap(apperrors.ErrPaymentFailed, err))
	}

	result, err := s.processor.Confirm(ctx, intent.ID, paymentMethod)
	if err != nil {
		return nil, s.paymentFailed(ctx, sess, apperrors.Wrap(apperrors.ErrPaymentFailed, err))
	}
	if !result.Succeeded() {
		msg := result.FailureMessage
		if msg == "" {
			msg = fmt.Sprintf("Payment not completed (status: %s)", result.Status)
		}
		return nil, s.paymentFailed(ctx, sess, apperrors.WithMessage(apperrors.ErrPaymentFailed, msg))
	}
	s.record(ctx, pkgaws.MetricPaymentSucceeded)

	order := buildOrder(user.Email, total, s.currency, result.TransactionID, lines)
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		zap.L().Error("order not saved after successful payment",
			zap.String("payment_id", result.TransactionID),
			zap.String("user_email", user.Email),
			zap.Error(err),
		)
		s.record(ctx, pkgaws.MetricOrdersFailed)
		sess.Notifier.Notify(models.NotificationError, apperrors.ErrOrderNotSaved.Message)
		return nil, apperrors.Wrap(apperrors.ErrOrderNotSaved, fmt.Errorf("payment %s: %w", result.TransactionID, err))
	}
	s.record(ctx, pkgaws.MetricOrdersCreated)
	s.record(ctx, pkgaws.MetricCartCheckouts)

	sess.Cart.ClearCart(ctx)
	sess.Notifier.Notify(models.NotificationSuccess, "Payment successful! Your order has been placed.")

	if err := s.publisher.PublishOrderPlaced(ctx, orderPlacedEvent(order)); err != nil {
		zap.L().Warn("failed to publish order event", zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	zap.L().Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("amount", amount),
	)
	return order, nil
}

// Orders lists the signed-in user's orders, newest first.
func (s *CheckoutService) Orders(ctx context.Context, sess *Session) ([]models.Order, error) {
	if s.orders == nil {
		return nil, errCheckoutDisabled
	}
	user := sess.Auth.CurrentUser()
	if user == nil {
		return nil, apperrors.ErrLoginRequired
	}
	orders, err := s.orders.FindByUserEmail(ctx, user.Email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *CheckoutService) paymentFailed(ctx context.Context, sess *Session, err *apperrors.Error) error {
	zap.L().Warn("payment failed", zap.String("session_id", sess.ID), zap.Error(err))
	s.record(ctx, pkgaws.MetricPaymentFailed)
	sess.Notifier.Notify(models.NotificationError, err.Message)
	return err
}

func (s *CheckoutService) record(ctx context.Context, metric string) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordCount(ctx, metric, nil); err != nil {
		zap.L().Warn("failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}

func buildOrder(email string, total decimal.Decimal, currency, paymentID string, lines []models.CartLine) *models.Order {
	orderID := uuid.New()
	order := &models.Order{
		ID:              orderID,
		OrderNumber:     "ORD-" + strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", "")[:10]),
		UserEmail:       email,
		TotalAmount:     total,
		Currency:        currency,
		Status:          models.OrderStatusPaid,
		PaymentIntentID: paymentID,
		CreatedAt:       time.Now().UTC(),
		Items:           make([]models.OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ID:              uuid.New(),
			OrderID:         orderID,
			ProductID:       l.Product.ID,
			Title:           l.Product.Title,
			Quantity:        l.Quantity,
			PriceAtPurchase: l.Product.Price,
		})
	}
	return order
}

func orderPlacedEvent(order *models.Order) events.OrderPlacedEvent {
	items := make([]events.OrderPlacedItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, events.OrderPlacedItem{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		})
	}
	return events.OrderPlacedEvent{
		Event:           events.OrderPlaced,
		OrderID:         order.ID.String(),
		OrderNumber:     order.OrderNumber,
		UserEmail:       order.UserEmail,
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency,
		PaymentIntentID: order.PaymentIntentID,
		Items:           items,
		Timestamp:       order.CreatedAt,
	}
}
