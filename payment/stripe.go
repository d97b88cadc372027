package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/refund"
)

// minorUnits converts a major-unit amount to the integer minor units
// Stripe expects. Rounded, not truncated: 19.99 is 1999 kuruş, and the
// float64 nearest to 0.29 sits just below it.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Stripe implements Provider on Stripe Checkout Sessions. It is the
// alternative to iyzico, selected with PAYMENT_PROVIDER=stripe.
type Stripe struct {
	secretKey string
}

func NewStripe(secretKey string) *Stripe {
	stripe.Key = secretKey
	return &Stripe{secretKey: secretKey}
}

func (s *Stripe) Name() string { return "stripe" }

// CreatePaymentForm creates a Checkout Session; the session URL is the
// hosted payment page and the session ID doubles as the callback token.
func (s *Stripe) CreatePaymentForm(ctx context.Context, draft *OrderDraft) (*FormResult, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(draft.Items))
	for _, item := range draft.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(draft.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(minorUnits(item.Price)),
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(draft.CallbackURL + "?token={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(draft.CallbackURL + "?token={CHECKOUT_SESSION_ID}&cancelled=1"),
		ClientReferenceID: stripe.String(draft.ConversationID),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe CreatePaymentForm: %w", err)
	}

	return &FormResult{
		PaymentPageURL: sess.URL,
		Token:          sess.ID,
	}, nil
}

// VerifyPayment retrieves the session for the callback token and reports
// whether funds were captured.
func (s *Stripe) VerifyPayment(ctx context.Context, token string) (*VerifyResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(token, params)
	if err != nil {
		return nil, fmt.Errorf("stripe VerifyPayment: %w", err)
	}

	result := &VerifyResult{
		Succeeded:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		ConversationID: sess.ClientReferenceID,
		PaidAmount:     float64(sess.AmountTotal) / 100,
	}
	if sess.PaymentIntent != nil {
		result.PaymentID = sess.PaymentIntent.ID
	}
	if !result.Succeeded {
		result.FailureReason = string(sess.PaymentStatus)
	}
	return result, nil
}

// CreateRefund refunds a captured PaymentIntent.
func (s *Stripe) CreateRefund(ctx context.Context, paymentID string, amount float64, currency string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(minorUnits(amount)),
	}
	params.Context = ctx

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("stripe CreateRefund: %w", err)
	}
	return nil
}
