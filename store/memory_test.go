package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitmeal-api/models"
)

func TestMemoryCartRoundTripDoesNotAlias(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	meal := &models.Meal{Name: "Bowl", Price: 100, Calories: 10, Category: models.CategoryMaintain, IsAvailable: true}
	require.NoError(t, mem.CreateMeal(ctx, meal))

	cart := &models.Cart{UserID: 7, Items: []models.CartItem{{MealID: meal.ID, Quantity: 1}}}
	require.NoError(t, mem.CreateCart(ctx, cart))

	loaded, err := mem.CartByUser(ctx, 7)
	require.NoError(t, err)
	loaded.Items[0].Quantity = 99

	// mutating a loaded copy must not leak into the store
	again, err := mem.CartByUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMemoryCartByUserNotFound(t *testing.T) {
	_, err := NewMemory().CartByUser(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRejectsDuplicateOrderNumbers(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	first := &models.Order{UserID: 1, OrderNumber: "EC1", PaymentMethod: models.PaymentCOD,
		PaymentStatus: models.PaymentPending, OrderStatus: models.StatusConfirmed}
	require.NoError(t, mem.CreateOrder(ctx, first))

	dup := &models.Order{UserID: 2, OrderNumber: "EC1", PaymentMethod: models.PaymentCOD,
		PaymentStatus: models.PaymentPending, OrderStatus: models.StatusConfirmed}
	assert.ErrorIs(t, mem.CreateOrder(ctx, dup), ErrDuplicateOrderNumber)
}

func TestMemoryRelatedMealsFilterAndLimit(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	base := &models.Meal{Name: "Base", Category: models.CategoryWeightLoss, IsAvailable: true}
	require.NoError(t, mem.CreateMeal(ctx, base))
	for i := 0; i < 6; i++ {
		m := &models.Meal{Name: "Rel", Category: models.CategoryWeightLoss, IsAvailable: true}
		require.NoError(t, mem.CreateMeal(ctx, m))
	}
	other := &models.Meal{Name: "Other", Category: models.CategoryMuscleGain, IsAvailable: true}
	require.NoError(t, mem.CreateMeal(ctx, other))

	related, err := mem.RelatedMeals(ctx, base, 4)
	require.NoError(t, err)
	assert.Len(t, related, 4)
	for _, m := range related {
		assert.Equal(t, models.CategoryWeightLoss, m.Category)
		assert.NotEqual(t, base.ID, m.ID)
	}
}
