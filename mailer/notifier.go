package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"cmticaret/models"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	tmplOrderConfirmation = "order_confirmation.html"
	tmplOrderStatus       = "order_status.html"
	tmplWelcome           = "welcome.html"
	tmplLowStock          = "low_stock_alert.html"
	tmplOutOfStock        = "out_of_stock_alert.html"
)

var statusLabels = map[string]string{
	models.OrderStatusPending:   "Beklemede",
	models.OrderStatusPaid:      "Ödeme Alındı",
	models.OrderStatusShipped:   "Kargoya Verildi",
	models.OrderStatusDelivered: "Teslim Edildi",
	models.OrderStatusCancelled: "İptal Edildi",
}

// Notifier renders the fixed set of HTML notifications and hands them to
// the outbound sender. Templates escape all interpolated values.
type Notifier struct {
	sender     Sender
	templates  *template.Template
	adminEmail string
	siteURL    string
	logger     *zap.Logger
}

func NewNotifier(sender Sender, adminEmail, siteURL string, logger *zap.Logger) (*Notifier, error) {
	tmpls, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}
	return &Notifier{
		sender:     sender,
		templates:  tmpls,
		adminEmail: adminEmail,
		siteURL:    siteURL,
		logger:     logger,
	}, nil
}

func (n *Notifier) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := n.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return buf.String(), nil
}

// SendOrderConfirmation mails the customer after an order is committed.
// The order is already persisted; the caller logs failures and moves on.
func (n *Notifier) SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error {
	body, err := n.render(tmplOrderConfirmation, map[string]interface{}{
		"Name":    user.Name,
		"Order":   order,
		"SiteURL": n.siteURL,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Siparişiniz alındı — %s", order.ID)
	_, err = n.sender.SendEmail(ctx, user.Email, subject, body)
	return err
}

// SendOrderStatusUpdate mails the customer when an admin or the payment
// callback changes the order status.
func (n *Notifier) SendOrderStatusUpdate(ctx context.Context, user *models.User, order *models.Order) error {
	label, ok := statusLabels[order.Status]
	if !ok {
		label = order.Status
	}

	body, err := n.render(tmplOrderStatus, map[string]interface{}{
		"Name":        user.Name,
		"Order":       order,
		"StatusLabel": label,
		"SiteURL":     n.siteURL,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Sipariş durumu güncellendi — %s", label)
	_, err = n.sender.SendEmail(ctx, user.Email, subject, body)
	return err
}

// SendWelcome greets a new account. Failures are swallowed: logged, never
// surfaced to registration.
func (n *Notifier) SendWelcome(ctx context.Context, user *models.User) {
	body, err := n.render(tmplWelcome, map[string]interface{}{
		"Name":    user.Name,
		"SiteURL": n.siteURL,
	})
	if err != nil {
		n.logger.Warn("welcome mail render failed", zap.Error(err))
		return
	}

	if _, err := n.sender.SendEmail(ctx, user.Email, "Hoş geldiniz!", body); err != nil {
		n.logger.Warn("welcome mail send failed", zap.String("email", user.Email), zap.Error(err))
	}
}

// SendLowStockAlert mails one aggregate alert covering every low-stock
// product to the configured admin address.
func (n *Notifier) SendLowStockAlert(ctx context.Context, products []models.Product) error {
	return n.sendInventoryAlert(ctx, tmplLowStock, "Düşük stok uyarısı", products)
}

// SendOutOfStockAlert mails one aggregate alert covering every
// out-of-stock product to the configured admin address.
func (n *Notifier) SendOutOfStockAlert(ctx context.Context, products []models.Product) error {
	return n.sendInventoryAlert(ctx, tmplOutOfStock, "Stok tükendi uyarısı", products)
}

func (n *Notifier) sendInventoryAlert(ctx context.Context, tmpl, subject string, products []models.Product) error {
	if n.adminEmail == "" {
		return fmt.Errorf("ADMIN_ALERT_EMAIL not set")
	}

	body, err := n.render(tmpl, map[string]interface{}{
		"Products": products,
		"SiteURL":  n.siteURL,
	})
	if err != nil {
		return err
	}

	_, err = n.sender.SendEmail(ctx, n.adminEmail, subject, body)
	return err
}
