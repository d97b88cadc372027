package models

import "time"

// Order statuses. Transitions are admin- or payment-callback-driven; no
// transition table is enforced.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCard           = "card"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

type Address struct {
	FullName string `json:"full_name" bson:"full_name"`
	Line     string `json:"line" bson:"line"`
	City     string `json:"city" bson:"city"`
	Phone    string `json:"phone" bson:"phone"`
}

// OrderItem is a purchased line. UnitPrice is the price at purchase time,
// not a reference into the live catalog.
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
}

// Order is immutable once placed except for Status.
type Order struct {
	ID              string      `json:"id" bson:"_id"`
	UserID          string      `json:"user_id" bson:"user_id"`
	Items           []OrderItem `json:"items" bson:"items"`
	ShippingAddress Address     `json:"shipping_address" bson:"shipping_address"`
	BillingAddress  Address     `json:"billing_address" bson:"billing_address"`
	Subtotal        float64     `json:"subtotal" bson:"subtotal"`
	ShippingFee     float64     `json:"shipping_fee" bson:"shipping_fee"`
	Total           float64     `json:"total" bson:"total"`
	PaymentMethod   string      `json:"payment_method" bson:"payment_method"`
	PaymentID       string      `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	Status          string      `json:"status" bson:"status"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
}

// Payment records a provider-confirmed transaction for an order.
type Payment struct {
	ID                string    `json:"id" bson:"_id"`
	OrderID           string    `json:"order_id" bson:"order_id"`
	Provider          string    `json:"provider" bson:"provider"`
	ProviderPaymentID string    `json:"provider_payment_id" bson:"provider_payment_id"`
	Amount            float64   `json:"amount" bson:"amount"`
	Currency          string    `json:"currency" bson:"currency"`
	Status            string    `json:"status" bson:"status"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}
