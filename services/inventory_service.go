package services

import (
	"context"
	"fmt"

	"cmticaret/models"
	"cmticaret/repository"

	"go.uber.org/zap"
)

// InventoryNotifier is the slice of the mail dispatcher the sweep needs.
type InventoryNotifier interface {
	SendLowStockAlert(ctx context.Context, products []models.Product) error
	SendOutOfStockAlert(ctx context.Context, products []models.Product) error
}

// Alert condition names, also used as suppression-set keys.
const (
	ConditionLowStock   = "low_stock"
	ConditionOutOfStock = "out_of_stock"
)

// SweepResult reports what a sweep found and alerted on.
type SweepResult struct {
	LowStock   int
	OutOfStock int
	AlertedLow int
	AlertedOut int
}

// InventoryService is a stateless point-in-time sweep over the catalog.
// Scheduling is external (cron runs cmd/sweeper); the sweep never blocks
// user-facing requests.
type InventoryService struct {
	products repository.ProductRepository
	alerts   repository.AlertStore
	notifier InventoryNotifier
	logger   *zap.Logger
}

func NewInventoryService(products repository.ProductRepository, alerts repository.AlertStore, notifier InventoryNotifier, logger *zap.Logger) *InventoryService {
	return &InventoryService{products: products, alerts: alerts, notifier: notifier, logger: logger}
}

// Sweep classifies every product and sends at most one aggregate alert
// per condition. Alerts fire on state transition only: products covered
// by the previous alert for a condition are suppressed until they leave
// and re-enter it.
func (s *InventoryService) Sweep(ctx context.Context) (*SweepResult, error) {
	low, err := s.products.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("low-stock query failed: %w", err)
	}
	out, err := s.products.FindOutOfStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("out-of-stock query failed: %w", err)
	}

	result := &SweepResult{LowStock: len(low), OutOfStock: len(out)}

	alertedLow, err := s.alertCondition(ctx, ConditionLowStock, low, s.notifier.SendLowStockAlert)
	if err != nil {
		return result, err
	}
	result.AlertedLow = alertedLow

	alertedOut, err := s.alertCondition(ctx, ConditionOutOfStock, out, s.notifier.SendOutOfStockAlert)
	if err != nil {
		return result, err
	}
	result.AlertedOut = alertedOut

	s.logger.Info("inventory sweep completed",
		zap.Int("low_stock", result.LowStock),
		zap.Int("out_of_stock", result.OutOfStock),
		zap.Int("alerted_low", result.AlertedLow),
		zap.Int("alerted_out", result.AlertedOut),
	)
	return result, nil
}

func (s *InventoryService) alertCondition(ctx context.Context, condition string, products []models.Product,
	send func(context.Context, []models.Product) error) (int, error) {

	previous, err := s.alerts.Alerted(ctx, condition)
	if err != nil {
		return 0, fmt.Errorf("suppression lookup failed for %s: %w", condition, err)
	}

	fresh := make([]models.Product, 0, len(products))
	currentIDs := make([]string, 0, len(products))
	for _, p := range products {
		currentIDs = append(currentIDs, p.ID)
		if !previous[p.ID] {
			fresh = append(fresh, p)
		}
	}

	if len(fresh) > 0 {
		if err := send(ctx, fresh); err != nil {
			// Leave the suppression set untouched so the next sweep
			// retries the alert.
			return 0, fmt.Errorf("%s alert failed: %w", condition, err)
		}
	}

	if err := s.alerts.Replace(ctx, condition, currentIDs); err != nil {
		s.logger.Warn("suppression set update failed",
			zap.String("condition", condition), zap.Error(err))
	}
	return len(fresh), nil
}
