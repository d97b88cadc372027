package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cmticaret/models"
	"cmticaret/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkoutFixture struct {
	svc      *CheckoutService
	carts    *fakeCartRepo
	products *fakeProductRepo
	orders   *fakeOrderRepo
	payments *fakePaymentRepo
	provider *recordingProvider
	drafts   *fakeDraftStore
	idem     *fakeIdemStore
	notifier *countingNotifier
}

func newCheckoutFixture(t *testing.T, provider payment.Provider, products ...*models.Product) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		carts:    newFakeCartRepo(),
		products: newFakeProductRepo(products...),
		orders:   newFakeOrderRepo(),
		payments: &fakePaymentRepo{},
		drafts:   newFakeDraftStore(),
		idem:     newFakeIdemStore(),
		notifier: &countingNotifier{},
	}
	if rec, ok := provider.(*recordingProvider); ok {
		f.provider = rec
	}

	users := newFakeUserRepo(&models.User{ID: "u1", Name: "Ayşe Yılmaz", Email: "ayse@example.com"})
	f.svc = NewCheckoutService(
		f.carts, f.products, f.orders, f.payments, users,
		provider, f.drafts, f.idem, f.notifier,
		CheckoutConfig{
			ShippingFee:           25,
			FreeShippingThreshold: 500,
			Currency:              "TRY",
			SiteURL:               "https://shop.example",
			IdempotencyTTL:        24 * time.Hour,
		},
		zap.NewNop(),
	)
	return f
}

func (f *checkoutFixture) fillCart(t *testing.T, productID string, qty int) {
	t.Helper()
	require.NoError(t, f.carts.Save(context.Background(), &models.Cart{
		UserID: "u1",
		Items:  []models.CartItem{{ProductID: productID, Quantity: qty}},
	}))
}

func validRequest(method string) *CheckoutRequest {
	return &CheckoutRequest{
		ShippingAddress: models.Address{
			FullName: "Ayşe Yılmaz",
			Line:     "Bağdat Cad. 1",
			City:     "İstanbul",
			Phone:    "+905551112233",
		},
		PaymentMethod: method,
	}
}

func TestTotalsShippingFeeBelowThreshold(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{})

	shipping, total := f.svc.Totals(250)
	assert.Equal(t, 25.0, shipping)
	assert.Equal(t, 275.0, total)
}

func TestTotalsThresholdBoundaryIsExclusive(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{})

	shipping, _ := f.svc.Totals(500)
	assert.Equal(t, 25.0, shipping, "subtotal equal to the threshold still pays shipping")

	shipping, total := f.svc.Totals(500.01)
	assert.Equal(t, 0.0, shipping)
	assert.Equal(t, 500.01, total)
}

func TestCheckoutCashOnDeliveryCreatesPendingOrderWithoutGateway(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 2)

	result, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCashOnDelivery))
	require.Nil(t, aerr)
	require.NotNil(t, result.Order)

	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Equal(t, 200.0, result.Order.Subtotal)
	assert.Equal(t, 25.0, result.Order.ShippingFee)
	assert.Equal(t, 225.0, result.Order.Total)
	assert.Equal(t, 8, f.products.stock("p1"))

	form, verify, refund := f.provider.calls()
	assert.Zero(t, form, "gateway must not be invoked for cash on delivery")
	assert.Zero(t, verify)
	assert.Zero(t, refund)

	cart, err := f.carts.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, cart, "cart must be cleared after checkout")
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{})

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodBankTransfer))
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusBadRequest, aerr.Code)
	assert.Zero(t, f.orders.count())
}

func TestCheckoutUnknownPaymentMethodRejected(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{})

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest("bitcoin"))
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusBadRequest, aerr.Code)
}

func TestCheckoutMissingAddressFieldRejected(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 1)

	req := validRequest(models.PaymentMethodBankTransfer)
	req.ShippingAddress.City = ""

	_, aerr := f.svc.Submit(context.Background(), "u1", req)
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusBadRequest, aerr.Code)
}

func TestCheckoutInsufficientStockCompensatesEarlierLines(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10},
		&models.Product{ID: "p2", Name: "Çay", Price: 50, Stock: 1})
	require.NoError(t, f.carts.Save(context.Background(), &models.Cart{
		UserID: "u1",
		Items: []models.CartItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 5},
		},
	}))

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodBankTransfer))
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusBadRequest, aerr.Code)

	assert.Zero(t, f.orders.count(), "no order record may exist after a stock rejection")
	assert.Equal(t, 10, f.products.stock("p1"), "earlier decrement must be compensated")
	assert.Equal(t, 1, f.products.stock("p2"))
}

func TestCheckoutIdempotencyKeyReturnsOriginalOrder(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 1)

	req := validRequest(models.PaymentMethodCashOnDelivery)
	req.IdempotencyKey = "key-1"

	first, aerr := f.svc.Submit(context.Background(), "u1", req)
	require.Nil(t, aerr)

	// The cart is gone after the first submit; a retry with the same key
	// must short-circuit before the empty-cart check.
	second, aerr := f.svc.Submit(context.Background(), "u1", req)
	require.Nil(t, aerr)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 1, f.orders.count())
}

func TestCheckoutCardReturnsPaymentPageAndDefersOrder(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 2)

	result, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCard))
	require.Nil(t, aerr)

	assert.Equal(t, "https://pay.example/form", result.PaymentPageURL)
	assert.Nil(t, result.Order)
	assert.Zero(t, f.orders.count(), "order is created only after verification")
	assert.Equal(t, 10, f.products.stock("p1"), "stock is held only after verification")
}

func TestCompleteCardPaymentCreatesPaidOrder(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 2)

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCard))
	require.Nil(t, aerr)

	order, aerr := f.svc.CompleteCardPayment(context.Background(), "tok-1")
	require.Nil(t, aerr)

	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, models.PaymentMethodCard, order.PaymentMethod)
	assert.Equal(t, "pay-1", order.PaymentID)
	assert.Equal(t, 8, f.products.stock("p1"))
	assert.Len(t, f.payments.payments, 1)
}

func TestCompleteCardPaymentRejectionCreatesNoOrder(t *testing.T) {
	provider := &recordingProvider{
		verifyResult: &payment.VerifyResult{Succeeded: false, FailureReason: "kart reddedildi"},
	}
	f := newCheckoutFixture(t, provider,
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 2)

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCard))
	require.Nil(t, aerr)

	_, aerr = f.svc.CompleteCardPayment(context.Background(), "tok-1")
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusBadGateway, aerr.Code)
	assert.Zero(t, f.orders.count())
	assert.Equal(t, 10, f.products.stock("p1"))
}

func TestCompleteCardPaymentStockShortAfterCaptureRefunds(t *testing.T) {
	f := newCheckoutFixture(t, &recordingProvider{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 2)

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCard))
	require.Nil(t, aerr)

	// Stock sold out while the buyer was on the hosted payment page.
	f.products.setStock("p1", 1)

	_, aerr = f.svc.CompleteCardPayment(context.Background(), "tok-1")
	require.NotNil(t, aerr)

	_, _, refunds := f.provider.calls()
	assert.Equal(t, 1, refunds, "captured funds must be refunded when stock is short")
	assert.Zero(t, f.orders.count())
}

func TestCompleteCardPaymentExpiredSessionAfterCaptureRefunds(t *testing.T) {
	p := &recordingProvider{verifyResult: &payment.VerifyResult{
		Succeeded: true, PaymentID: "pay-1", PaidAmount: 225,
	}}
	f := newCheckoutFixture(t, p,
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 2)

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCard))
	require.Nil(t, aerr)

	// The parked session lapsed while the buyer sat on the hosted page.
	var gone checkoutDraft
	found, err := f.drafts.Take(context.Background(), "tok-1", &gone)
	require.NoError(t, err)
	require.True(t, found)

	_, aerr = f.svc.CompleteCardPayment(context.Background(), "tok-1")
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusBadRequest, aerr.Code)

	_, _, refunds := p.calls()
	assert.Equal(t, 1, refunds, "captured funds must be refunded when the session is gone")
	assert.Equal(t, []float64{225}, p.refunded(), "refund must target the provider-reported amount")
	assert.Zero(t, f.orders.count())
	assert.Equal(t, 10, f.products.stock("p1"))
}

func TestCompleteCardPaymentExpiredSessionRejectedPaymentDoesNotRefund(t *testing.T) {
	p := &recordingProvider{verifyResult: &payment.VerifyResult{
		Succeeded: false, FailureReason: "kart reddedildi",
	}}
	f := newCheckoutFixture(t, p,
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 1)

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCard))
	require.Nil(t, aerr)

	var gone checkoutDraft
	found, err := f.drafts.Take(context.Background(), "tok-1", &gone)
	require.NoError(t, err)
	require.True(t, found)

	_, aerr = f.svc.CompleteCardPayment(context.Background(), "tok-1")
	require.NotNil(t, aerr)

	_, _, refunds := p.calls()
	assert.Zero(t, refunds, "nothing was captured, nothing to refund")
}

func TestCheckoutCardWithDisabledProviderFailsExplicitly(t *testing.T) {
	f := newCheckoutFixture(t, payment.Disabled{},
		&models.Product{ID: "p1", Name: "Kahve", Price: 100, Stock: 10})
	f.fillCart(t, "p1", 1)

	_, aerr := f.svc.Submit(context.Background(), "u1", validRequest(models.PaymentMethodCard))
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusServiceUnavailable, aerr.Code)
	assert.ErrorIs(t, aerr.Err, payment.ErrNotConfigured,
		"missing credentials must be distinct from a provider rejection")
}
