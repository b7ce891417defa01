package providers

import "context"

// CheckoutRequest carries everything a provider needs to open a
// checkout session for an appointment.
type CheckoutRequest struct {
	AppointmentID string
	Description   string
	Amount        int64 // minor currency units
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// PaymentSession is the provider's handle for an initiated checkout.
type PaymentSession struct {
	Ref         string // provider session/order reference
	RedirectURL string // where the client completes the payment
}

// PaymentProvider abstracts a hosted-checkout payment gateway.
type PaymentProvider interface {
	Name() string
	CreateSession(ctx context.Context, req CheckoutRequest) (*PaymentSession, error)
	// VerifyCapture asks the provider whether the referenced session was
	// actually paid. Reconciliation never trusts the client's word.
	VerifyCapture(ctx context.Context, ref string) (bool, error)
}
