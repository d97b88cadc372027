package services

import (
	"context"
	"net/http"
	"time"

	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"

	"go.uber.org/zap"
)

// CartService owns the persisted cart of authenticated users. Anonymous
// carts live in browser storage and never reach this service; at login
// the client replaces its anonymous cart with the persisted one.
type CartService struct {
	repo   repository.CartRepository
	logger *zap.Logger
}

func NewCartService(repo repository.CartRepository, logger *zap.Logger) *CartService {
	return &CartService{repo: repo, logger: logger}
}

// Get returns the user's cart, empty when none is stored.
func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, *apierr.Error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get cart", zap.String("user_id", userID), zap.Error(err))
		return nil, apierr.Internal("Sepet yüklenemedi", err)
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

// AddItem merges qty into any existing line for the product by summing;
// a resulting quantity of zero or less drops the line.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int, snapshot models.ProductSnapshot) (*models.Cart, *apierr.Error) {
	cart, svcErr := s.Get(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	found := false
	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items[i].Quantity += qty
			if snapshot.Name != "" {
				cart.Items[i].Snapshot = snapshot
			}
			if cart.Items[i].Quantity <= 0 {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			}
			found = true
			break
		}
	}
	if !found {
		if qty <= 0 {
			return cart, nil
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  qty,
			Snapshot:  snapshot,
		})
	}

	return s.save(ctx, cart)
}

// UpdateQuantity sets the line quantity absolutely; zero or less removes
// the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*models.Cart, *apierr.Error) {
	cart, svcErr := s.Get(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	for i, item := range cart.Items {
		if item.ProductID == productID {
			if qty <= 0 {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			} else {
				cart.Items[i].Quantity = qty
			}
			return s.save(ctx, cart)
		}
	}

	// Absent line: setting a positive quantity creates it without a
	// snapshot; zero or less is a no-op.
	if qty > 0 {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: qty})
		return s.save(ctx, cart)
	}
	return cart, nil
}

// RemoveItem drops the line for the product. Removing an absent line is
// a no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, *apierr.Error) {
	cart, svcErr := s.Get(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items

	return s.save(ctx, cart)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID string) *apierr.Error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		s.logger.Error("failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return apierr.Internal("Sepet temizlenemedi", err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, *apierr.Error) {
	cart.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, cart); err != nil {
		s.logger.Error("failed to save cart", zap.String("user_id", cart.UserID), zap.Error(err))
		return nil, apierr.New(http.StatusInternalServerError, "Sepet kaydedilemedi", err)
	}
	return cart, nil
}
