package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"cmticaret/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingSender struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (s *capturingSender) SendEmail(_ context.Context, to, subject, body string) (SendResult, error) {
	if s.err != nil {
		return SendResult{}, s.err
	}
	s.to = append(s.to, to)
	s.subject = append(s.subject, subject)
	s.body = append(s.body, body)
	return SendResult{MessageID: "m1", SentAt: time.Now()}, nil
}

func testOrder() *models.Order {
	return &models.Order{
		ID:     "order-1",
		UserID: "u1",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Kahve", Quantity: 2, UnitPrice: 100},
		},
		Subtotal:    200,
		ShippingFee: 25,
		Total:       225,
		Status:      models.OrderStatusPaid,
	}
}

func TestSendOrderConfirmationRendersOrderDetails(t *testing.T) {
	sender := &capturingSender{}
	n, err := NewNotifier(sender, "admin@example.com", "https://shop.example", zap.NewNop())
	require.NoError(t, err)

	user := &models.User{Name: "Ayşe", Email: "ayse@example.com"}
	require.NoError(t, n.SendOrderConfirmation(context.Background(), user, testOrder()))

	require.Len(t, sender.to, 1)
	assert.Equal(t, "ayse@example.com", sender.to[0])
	assert.Contains(t, sender.subject[0], "order-1")
	assert.Contains(t, sender.body[0], "Kahve")
	assert.Contains(t, sender.body[0], "225.00")
}

func TestSendOrderStatusUpdateUsesTurkishLabel(t *testing.T) {
	sender := &capturingSender{}
	n, err := NewNotifier(sender, "", "https://shop.example", zap.NewNop())
	require.NoError(t, err)

	order := testOrder()
	order.Status = models.OrderStatusShipped
	user := &models.User{Name: "Ayşe", Email: "ayse@example.com"}
	require.NoError(t, n.SendOrderStatusUpdate(context.Background(), user, order))

	require.Len(t, sender.subject, 1)
	assert.Contains(t, sender.subject[0], "Kargoya Verildi")
}

func TestSendWelcomeSwallowsSendFailure(t *testing.T) {
	sender := &capturingSender{err: errors.New("smtp down")}
	n, err := NewNotifier(sender, "", "https://shop.example", zap.NewNop())
	require.NoError(t, err)

	// Must not panic or propagate; registration never depends on mail.
	n.SendWelcome(context.Background(), &models.User{Name: "Ayşe", Email: "ayse@example.com"})
	assert.Empty(t, sender.to)
}

func TestInventoryAlertsGoToAdminAddress(t *testing.T) {
	sender := &capturingSender{}
	n, err := NewNotifier(sender, "admin@example.com", "https://shop.example", zap.NewNop())
	require.NoError(t, err)

	products := []models.Product{{ID: "p1", Name: "Kahve", Stock: 2, MinStock: 5}}
	require.NoError(t, n.SendLowStockAlert(context.Background(), products))
	require.NoError(t, n.SendOutOfStockAlert(context.Background(), products))

	require.Len(t, sender.to, 2)
	assert.Equal(t, "admin@example.com", sender.to[0])
	assert.Equal(t, "admin@example.com", sender.to[1])
	assert.Contains(t, sender.body[0], "Kahve")
}

func TestInventoryAlertFailsWithoutAdminAddress(t *testing.T) {
	n, err := NewNotifier(&capturingSender{}, "", "https://shop.example", zap.NewNop())
	require.NoError(t, err)

	err = n.SendLowStockAlert(context.Background(), []models.Product{{ID: "p1", Name: "Kahve"}})
	assert.Error(t, err)
}
