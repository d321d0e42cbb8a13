package services

import (
	"context"
	stderrors "errors"

	"storefront/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// PaymentProcessor creates and confirms payment intents. amount is in minor
// currency units.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error)
	Confirm(ctx context.Context, intentID, paymentMethod string) (models.PaymentResult, error)
}

type StripeProcessor struct {
	SecretKey string
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	stripe.Key = secretKey
	return &StripeProcessor{SecretKey: secretKey}
}

func (s *StripeProcessor) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// Confirm reports card declines as a failed result rather than an error.
func (s *StripeProcessor) Confirm(ctx context.Context, intentID, paymentMethod string) (models.PaymentResult, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if stderrors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return models.PaymentResult{
				Status:         models.PaymentStatusFailed,
				TransactionID:  intentID,
				FailureMessage: stripeErr.Msg,
			}, nil
		}
		return models.PaymentResult{}, err
	}

	result := models.PaymentResult{Status: string(pi.Status), TransactionID: pi.ID}
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		result.Status = models.PaymentStatusSucceeded
	} else if pi.LastPaymentError != nil {
		result.FailureMessage = pi.LastPaymentError.Msg
	}
	return result, nil
}
