package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"

	"go.uber.org/zap"
)

// StatusNotifier is the slice of the mail dispatcher order updates need.
type StatusNotifier interface {
	SendOrderStatusUpdate(ctx context.Context, user *models.User, order *models.Order) error
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// OrderService reads orders and applies admin status changes.
type OrderService struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	notifier StatusNotifier
	logger   *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, notifier StatusNotifier, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, users: users, notifier: notifier, logger: logger}
}

// GetUserOrders returns the caller's own orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) (*OrderListResponse, *apierr.Error) {
	return s.list(ctx, repository.OrderFilter{UserID: userID, Page: page, Limit: limit})
}

// GetAllOrders returns orders across users with optional filters (admin).
func (s *OrderService) GetAllOrders(ctx context.Context, filter repository.OrderFilter) (*OrderListResponse, *apierr.Error) {
	if filter.Status != "" && !models.ValidOrderStatus(filter.Status) {
		return nil, apierr.BadRequest("Geçersiz sipariş durumu")
	}
	return s.list(ctx, filter)
}

func (s *OrderService) list(ctx context.Context, filter repository.OrderFilter) (*OrderListResponse, *apierr.Error) {
	orders, total, err := s.orders.Find(ctx, filter)
	if err != nil {
		s.logger.Error("order listing failed", zap.Error(err))
		return nil, apierr.Internal("Siparişler yüklenemedi", err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

// GetOrder returns the order when the caller owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, callerID string, isAdmin bool, orderID string) (*models.Order, *apierr.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Sipariş bulunamadı")
		}
		return nil, apierr.Internal("Sipariş yüklenemedi", err)
	}
	if !isAdmin && order.UserID != callerID {
		return nil, apierr.NotFound("Sipariş bulunamadı")
	}
	return order, nil
}

// UpdateStatus sets a new status. Any status may follow any other: there
// is no transition table, changes are direct admin (or payment callback)
// action. A status-change mail is dispatched best-effort.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, *apierr.Error) {
	if !models.ValidOrderStatus(status) {
		return nil, apierr.BadRequest("Geçersiz sipariş durumu")
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Sipariş bulunamadı")
		}
		s.logger.Error("order status update failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, apierr.New(http.StatusInternalServerError, "Sipariş güncellenemedi", err)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apierr.Internal("Sipariş yüklenemedi", err)
	}

	go s.sendStatusMail(order)

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", status),
	)
	return order, nil
}

func (s *OrderService) sendStatusMail(order *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("status mail skipped, user lookup failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if err := s.notifier.SendOrderStatusUpdate(ctx, user, order); err != nil {
		s.logger.Warn("status mail failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

func totalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
