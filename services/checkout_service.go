package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cmticaret/models"
	"cmticaret/payment"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderNotifier is the slice of the mail dispatcher checkout needs.
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error
}

// CheckoutRequest is a validated checkout submission.
type CheckoutRequest struct {
	ShippingAddress models.Address
	BillingAddress  *models.Address
	PaymentMethod   string
	IdempotencyKey  string
}

// CheckoutResult is either a committed order (bank transfer, cash on
// delivery, or a verified card payment) or a hosted payment page the
// browser must be redirected to.
type CheckoutResult struct {
	Order          *models.Order
	PaymentPageURL string
	Duplicate      bool
}

// checkoutDraft is parked while the buyer is on the hosted payment page.
type checkoutDraft struct {
	UserID          string             `json:"user_id"`
	Items           []models.OrderItem `json:"items"`
	ShippingAddress models.Address     `json:"shipping_address"`
	BillingAddress  models.Address     `json:"billing_address"`
	Subtotal        float64            `json:"subtotal"`
	ShippingFee     float64            `json:"shipping_fee"`
	Total           float64            `json:"total"`
	IdempotencyKey  string             `json:"idempotency_key,omitempty"`
}

// CheckoutService turns a cart into an order, invoking the payment
// provider only for the card method.
type CheckoutService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	provider payment.Provider
	drafts   repository.DraftStore
	idem     repository.IdempotencyStore
	notifier OrderNotifier

	shippingFee   float64
	freeThreshold float64
	currency      string
	siteURL       string
	idemTTL       time.Duration

	logger *zap.Logger
}

type CheckoutConfig struct {
	ShippingFee           float64
	FreeShippingThreshold float64
	Currency              string
	SiteURL               string
	IdempotencyTTL        time.Duration
}

func NewCheckoutService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	provider payment.Provider,
	drafts repository.DraftStore,
	idem repository.IdempotencyStore,
	notifier OrderNotifier,
	cfg CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:         carts,
		products:      products,
		orders:        orders,
		payments:      payments,
		users:         users,
		provider:      provider,
		drafts:        drafts,
		idem:          idem,
		notifier:      notifier,
		shippingFee:   cfg.ShippingFee,
		freeThreshold: cfg.FreeShippingThreshold,
		currency:      cfg.Currency,
		siteURL:       cfg.SiteURL,
		idemTTL:       cfg.IdempotencyTTL,
		logger:        logger,
	}
}

// Totals computes the shipping fee and grand total for a subtotal:
// shipping is waived when the subtotal exceeds the free-shipping
// threshold, otherwise the fixed fee applies.
func (s *CheckoutService) Totals(subtotal float64) (shipping, total float64) {
	if subtotal > s.freeThreshold {
		shipping = 0
	} else {
		shipping = s.shippingFee
	}
	return shipping, subtotal + shipping
}

// Submit validates the request and either commits the order (non-card
// methods) or returns the hosted payment page URL.
func (s *CheckoutService) Submit(ctx context.Context, userID string, req *CheckoutRequest) (*CheckoutResult, *apierr.Error) {
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, apierr.BadRequest("Geçersiz ödeme yöntemi")
	}
	if req.ShippingAddress.FullName == "" || req.ShippingAddress.Line == "" ||
		req.ShippingAddress.City == "" || req.ShippingAddress.Phone == "" {
		return nil, apierr.BadRequest("Teslimat adresi eksik")
	}

	// A repeated idempotency key returns the originally created order
	// instead of creating a duplicate.
	if req.IdempotencyKey != "" {
		orderID, err := s.idem.Get(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("idempotency lookup failed", zap.Error(err))
		} else if orderID != "" {
			order, err := s.orders.FindByID(ctx, orderID)
			if err == nil {
				return &CheckoutResult{Order: order, Duplicate: true}, nil
			}
		}
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, apierr.Internal("Sepet yüklenemedi", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, apierr.ErrEmptyCart
	}

	items, subtotal, svcErr := s.buildOrderItems(ctx, cart)
	if svcErr != nil {
		return nil, svcErr
	}
	shipping, total := s.Totals(subtotal)

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	if req.PaymentMethod == models.PaymentMethodCard {
		return s.startCardPayment(ctx, userID, req, items, subtotal, shipping, total, billing)
	}

	// bank_transfer and cash_on_delivery commit immediately with status
	// pending; the gateway is never invoked.
	order, svcErr := s.commitOrder(ctx, userID, req.PaymentMethod, "", items,
		req.ShippingAddress, billing, subtotal, shipping, total, models.OrderStatusPending, req.IdempotencyKey)
	if svcErr != nil {
		return nil, svcErr
	}
	return &CheckoutResult{Order: order}, nil
}

// buildOrderItems re-reads each product so the order captures the live
// price, not the cart snapshot.
func (s *CheckoutService) buildOrderItems(ctx context.Context, cart *models.Cart) ([]models.OrderItem, float64, *apierr.Error) {
	items := make([]models.OrderItem, 0, len(cart.Items))
	var subtotal float64

	for _, line := range cart.Items {
		if line.Quantity < 1 {
			continue
		}
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, 0, apierr.BadRequest("Sepetteki bir ürün artık satışta değil")
			}
			return nil, 0, apierr.Internal("Ürün bilgisi okunamadı", err)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		subtotal += product.Price * float64(line.Quantity)
	}

	if len(items) == 0 {
		return nil, 0, apierr.ErrEmptyCart
	}
	return items, subtotal, nil
}

// reserveStock decrements each line conditionally; on a short line it
// restores the decrements already applied and rejects.
func (s *CheckoutService) reserveStock(ctx context.Context, items []models.OrderItem) *apierr.Error {
	for i, item := range items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			for _, done := range items[:i] {
				if restoreErr := s.products.IncrementStock(ctx, done.ProductID, done.Quantity); restoreErr != nil {
					s.logger.Error("stock restore failed",
						zap.String("product_id", done.ProductID), zap.Error(restoreErr))
				}
			}
			if errors.Is(err, repository.ErrInsufficientStock) {
				return apierr.New(http.StatusBadRequest, "Yetersiz stok: "+item.Name, err)
			}
			if errors.Is(err, repository.ErrNotFound) {
				return apierr.BadRequest("Sepetteki bir ürün artık satışta değil")
			}
			return apierr.Internal("Stok güncellenemedi", err)
		}
	}
	return nil
}

func (s *CheckoutService) startCardPayment(ctx context.Context, userID string, req *CheckoutRequest,
	items []models.OrderItem, subtotal, shipping, total float64, billing models.Address) (*CheckoutResult, *apierr.Error) {

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apierr.Internal("Kullanıcı bilgisi okunamadı", err)
	}

	draftID := uuid.NewString()
	basket := make([]payment.BasketItem, 0, len(items))
	for _, item := range items {
		basket = append(basket, payment.BasketItem{
			ID:       item.ProductID,
			Name:     item.Name,
			Category: "Genel",
			Price:    item.UnitPrice * float64(item.Quantity),
		})
	}
	if shipping > 0 {
		basket = append(basket, payment.BasketItem{
			ID:    "shipping",
			Name:  "Kargo",
			Price: shipping,
		})
	}

	form, err := s.provider.CreatePaymentForm(ctx, &payment.OrderDraft{
		ConversationID: draftID,
		Buyer: payment.Buyer{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
		},
		Items:       basket,
		AddressLine: req.ShippingAddress.Line,
		City:        req.ShippingAddress.City,
		Total:       total,
		Currency:    s.currency,
		CallbackURL: s.siteURL + "/api/payment/callback",
	})
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, apierr.New(http.StatusServiceUnavailable, "Kart ile ödeme şu anda kullanılamıyor", err)
		}
		s.logger.Error("payment form creation failed", zap.Error(err))
		return nil, apierr.New(http.StatusBadGateway, "Ödeme sayfası oluşturulamadı", err)
	}

	draft := checkoutDraft{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		Subtotal:        subtotal,
		ShippingFee:     shipping,
		Total:           total,
		IdempotencyKey:  req.IdempotencyKey,
	}
	if err := s.drafts.Put(ctx, form.Token, draft, 30*time.Minute); err != nil {
		return nil, apierr.Internal("Ödeme başlatılamadı", err)
	}

	return &CheckoutResult{PaymentPageURL: form.PaymentPageURL}, nil
}

// CompleteCardPayment reconciles the provider callback token. Only a
// verified success writes the order record.
func (s *CheckoutService) CompleteCardPayment(ctx context.Context, token string) (*models.Order, *apierr.Error) {
	result, err := s.provider.VerifyPayment(ctx, token)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, apierr.New(http.StatusServiceUnavailable, "Kart ile ödeme şu anda kullanılamıyor", err)
		}
		s.logger.Error("payment verification failed", zap.Error(err))
		return nil, apierr.New(http.StatusBadGateway, "Ödeme doğrulanamadı", err)
	}

	var draft checkoutDraft
	found, err := s.drafts.Take(ctx, token, &draft)
	if err != nil {
		return nil, apierr.Internal("Ödeme kaydı okunamadı", err)
	}
	if !found {
		// The draft TTL elapsed while the buyer sat on the hosted page.
		// Funds may already be captured; a success without a draft must
		// be refunded, there is no order to attach it to.
		if result.Succeeded {
			s.logger.Error("payment captured for expired checkout draft, refunding",
				zap.String("payment_id", result.PaymentID),
				zap.Float64("amount", result.PaidAmount))
			if refundErr := s.provider.CreateRefund(ctx, result.PaymentID, result.PaidAmount, s.currency); refundErr != nil {
				s.logger.Error("refund failed", zap.String("payment_id", result.PaymentID), zap.Error(refundErr))
			}
		}
		return nil, apierr.BadRequest("Ödeme oturumu bulunamadı veya süresi doldu")
	}

	if !result.Succeeded {
		reason := result.FailureReason
		if reason == "" {
			reason = "ödeme reddedildi"
		}
		return nil, apierr.New(http.StatusBadGateway, "Ödeme başarısız: "+reason, nil)
	}

	// Funds are captured; a short stock line at this point is refunded.
	if svcErr := s.reserveStock(ctx, draft.Items); svcErr != nil {
		s.logger.Error("stock reservation failed after captured payment, refunding",
			zap.String("payment_id", result.PaymentID))
		if refundErr := s.provider.CreateRefund(ctx, result.PaymentID, draft.Total, s.currency); refundErr != nil {
			s.logger.Error("refund failed", zap.String("payment_id", result.PaymentID), zap.Error(refundErr))
		}
		return nil, svcErr
	}

	order, svcErr := s.commitOrderReserved(ctx, draft.UserID, models.PaymentMethodCard, result.PaymentID,
		draft.Items, draft.ShippingAddress, draft.BillingAddress,
		draft.Subtotal, draft.ShippingFee, draft.Total, models.OrderStatusPaid, draft.IdempotencyKey)
	if svcErr != nil {
		return nil, svcErr
	}

	paymentRec := &models.Payment{
		ID:                uuid.NewString(),
		OrderID:           order.ID,
		Provider:          s.provider.Name(),
		ProviderPaymentID: result.PaymentID,
		Amount:            order.Total,
		Currency:          s.currency,
		Status:            "captured",
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.payments.Create(ctx, paymentRec); err != nil {
		s.logger.Error("payment record write failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

// commitOrder reserves stock and writes the order.
func (s *CheckoutService) commitOrder(ctx context.Context, userID, method, paymentID string,
	items []models.OrderItem, shippingAddr, billingAddr models.Address,
	subtotal, shipping, total float64, status, idemKey string) (*models.Order, *apierr.Error) {

	if svcErr := s.reserveStock(ctx, items); svcErr != nil {
		return nil, svcErr
	}
	return s.commitOrderReserved(ctx, userID, method, paymentID, items, shippingAddr, billingAddr,
		subtotal, shipping, total, status, idemKey)
}

// commitOrderReserved writes the order assuming stock is already held.
func (s *CheckoutService) commitOrderReserved(ctx context.Context, userID, method, paymentID string,
	items []models.OrderItem, shippingAddr, billingAddr models.Address,
	subtotal, shipping, total float64, status, idemKey string) (*models.Order, *apierr.Error) {

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: shippingAddr,
		BillingAddress:  billingAddr,
		Subtotal:        subtotal,
		ShippingFee:     shipping,
		Total:           total,
		PaymentMethod:   method,
		PaymentID:       paymentID,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("order write failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apierr.Internal("Sipariş oluşturulamadı", err)
	}

	if idemKey != "" {
		if err := s.idem.Set(ctx, idemKey, order.ID, s.idemTTL); err != nil {
			s.logger.Warn("idempotency record failed", zap.Error(err))
		}
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart clear after checkout failed", zap.String("user_id", userID), zap.Error(err))
	}

	// Confirmation mail is best-effort: the order is committed, a send
	// failure is logged and never rolls it back.
	go s.sendConfirmation(order)

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("method", method),
		zap.Float64("total", total),
	)
	return order, nil
}

func (s *CheckoutService) sendConfirmation(order *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("confirmation mail skipped, user lookup failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if err := s.notifier.SendOrderConfirmation(ctx, user, order); err != nil {
		s.logger.Warn("confirmation mail failed",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}
