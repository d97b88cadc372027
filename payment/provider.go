// Package payment isolates all interaction with the hosted payment
// provider. The rest of the system depends only on Provider; swapping
// providers means adding an implementation here.
package payment

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by every operation of the Disabled
// provider. It is distinct from a provider rejection: credentials are
// absent, no call was attempted.
var ErrNotConfigured = errors.New("payment provider is not configured")

// Buyer identifies the paying customer to the provider.
type Buyer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// BasketItem is one purchased line as the provider wants to see it.
type BasketItem struct {
	ID       string
	Name     string
	Category string
	Price    float64
}

// OrderDraft is the not-yet-persisted order a hosted payment page is
// requested for.
type OrderDraft struct {
	ConversationID string
	Buyer          Buyer
	Items          []BasketItem
	AddressLine    string
	City           string
	Total          float64
	Currency       string
	CallbackURL    string
}

// FormResult points the browser at the provider's hosted payment page.
type FormResult struct {
	PaymentPageURL string
	Token          string
}

// VerifyResult is the provider-reported outcome for a callback token.
// This result, not the original request, is the authoritative signal
// that funds were captured.
type VerifyResult struct {
	Succeeded      bool
	PaymentID      string
	ConversationID string
	FailureReason  string
	// PaidAmount is the captured amount in major units, provider-reported.
	// It is what a refund must target when the local draft is gone.
	PaidAmount float64
}

// Provider is the hosted-payment-page contract. No operation retries;
// provider calls are treated as at-most-once.
type Provider interface {
	Name() string
	CreatePaymentForm(ctx context.Context, draft *OrderDraft) (*FormResult, error)
	VerifyPayment(ctx context.Context, token string) (*VerifyResult, error)
	CreateRefund(ctx context.Context, paymentID string, amount float64, currency string) error
}

// Disabled is the provider used when credentials are absent. Every call
// fails fast with ErrNotConfigured instead of silently succeeding.
type Disabled struct{}

func (Disabled) Name() string { return "disabled" }

func (Disabled) CreatePaymentForm(context.Context, *OrderDraft) (*FormResult, error) {
	return nil, ErrNotConfigured
}

func (Disabled) VerifyPayment(context.Context, string) (*VerifyResult, error) {
	return nil, ErrNotConfigured
}

func (Disabled) CreateRefund(context.Context, string, float64, string) error {
	return ErrNotConfigured
}
