package models

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// PaymentIntent is the opaque handle the browser confirms against the
// payment processor.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type PaymentResult struct {
	Status         string `json:"status"`
	TransactionID  string `json:"transaction_id"`
	FailureMessage string `json:"failure_message,omitempty"`
}

func (r PaymentResult) Succeeded() bool {
	return r.Status == PaymentStatusSucceeded
}
