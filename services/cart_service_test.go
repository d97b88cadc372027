package services

import (
	"context"
	"testing"

	"cmticaret/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCartService() (*CartService, *fakeCartRepo) {
	repo := newFakeCartRepo()
	return NewCartService(repo, zap.NewNop()), repo
}

func TestCartGetReturnsEmptyCartWhenNoneStored(t *testing.T) {
	svc, _ := newCartService()

	cart, err := svc.Get(context.Background(), "u1")
	require.Nil(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestCartAddItemMergesBySumming(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()
	snap := models.ProductSnapshot{Name: "Kahve", Price: 120}

	_, err := svc.AddItem(ctx, "u1", "p1", 2, snap)
	require.Nil(t, err)
	cart, err := svc.AddItem(ctx, "u1", "p1", 3, snap)
	require.Nil(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 600.0, cart.Subtotal())
}

func TestCartAddItemNegativeQuantityDropsLine(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()
	snap := models.ProductSnapshot{Name: "Kahve", Price: 120}

	_, err := svc.AddItem(ctx, "u1", "p1", 2, snap)
	require.Nil(t, err)
	cart, err := svc.AddItem(ctx, "u1", "p1", -2, snap)
	require.Nil(t, err)

	assert.Empty(t, cart.Items)
}

func TestCartAddItemNewLineWithNonPositiveQuantityIgnored(t *testing.T) {
	svc, _ := newCartService()

	cart, err := svc.AddItem(context.Background(), "u1", "p1", 0, models.ProductSnapshot{})
	require.Nil(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartUpdateQuantitySetsAbsolutely(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", "p1", 2, models.ProductSnapshot{Name: "Kahve", Price: 120})
	require.Nil(t, err)

	cart, err := svc.UpdateQuantity(ctx, "u1", "p1", 7)
	require.Nil(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestCartUpdateQuantityToZeroRemovesLine(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", "p1", 2, models.ProductSnapshot{Name: "Kahve", Price: 120})
	require.Nil(t, err)

	cart, err := svc.UpdateQuantity(ctx, "u1", "p1", 0)
	require.Nil(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartRemoveAbsentLineIsNoop(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", "p1", 1, models.ProductSnapshot{Name: "Kahve", Price: 120})
	require.Nil(t, err)

	cart, err := svc.RemoveItem(ctx, "u1", "p-missing")
	require.Nil(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartClearEmptiesCart(t *testing.T) {
	svc, _ := newCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", "p1", 1, models.ProductSnapshot{Name: "Kahve", Price: 120})
	require.Nil(t, err)
	require.Nil(t, svc.Clear(ctx, "u1"))

	cart, err := svc.Get(ctx, "u1")
	require.Nil(t, err)
	assert.Empty(t, cart.Items)
}
