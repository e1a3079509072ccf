// Package cart maintains the authoritative per-user mapping from meal
// to quantity and keeps the derived totals consistent after every
// mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fitmeal-api/models"
	"fitmeal-api/store"
)

// ErrMealUnavailable is returned when a meal exists but is not
// currently orderable.
var ErrMealUnavailable = errors.New("meal is not available")

// Engine owns all cart mutations. Operations against the same user's
// cart serialize on a per-user lock so concurrent requests cannot lose
// updates racing on the same item.
type Engine struct {
	store   store.Store
	logger  *zap.Logger
	timeout time.Duration
	locks   sync.Map // user id -> *sync.Mutex
}

func NewEngine(st store.Store, logger *zap.Logger, timeout time.Duration) *Engine {
	return &Engine{store: st, logger: logger, timeout: timeout}
}

// LockUser acquires the per-user cart lock and returns its release
// function. Checkout takes the same lock so a concurrent checkout and
// cart mutation cannot interleave.
func (e *Engine) LockUser(userID uint) func() {
	v, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (e *Engine) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// GetOrCreate returns the user's cart, creating an empty one on first
// access.
func (e *Engine) GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	unlock := e.LockUser(userID)
	defer unlock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.getOrCreate(ctx, userID)
}

func (e *Engine) getOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := e.store.CartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	cart = &models.Cart{UserID: userID}
	if err := e.store.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem puts quantity units of the meal in the user's cart. If the
// meal is already present its quantity is incremented, not duplicated.
// A quantity below 1 is treated as 1.
func (e *Engine) AddItem(ctx context.Context, userID, mealID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	unlock := e.LockUser(userID)
	defer unlock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	meal, err := e.store.MealByID(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("add item: meal %d: %w", mealID, err)
	}
	if !meal.IsAvailable {
		return nil, fmt.Errorf("add item: meal %d: %w", mealID, ErrMealUnavailable)
	}

	cart, err := e.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if item := cart.Item(mealID); item != nil {
		item.Quantity += quantity
		item.Meal = meal
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			CartID:   cart.ID,
			MealID:   mealID,
			Meal:     meal,
			Quantity: quantity,
		})
	}

	e.recomputeTotals(ctx, cart)
	if err := e.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItemQuantity sets the item's quantity to exactly quantity.
// A quantity of zero or less removes the item.
func (e *Engine) UpdateItemQuantity(ctx context.Context, userID, mealID uint, quantity int) (*models.Cart, error) {
	unlock := e.LockUser(userID)
	defer unlock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	cart, err := e.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := cart.Item(mealID)
	if item == nil {
		return nil, fmt.Errorf("update item: meal %d not in cart: %w", mealID, store.ErrNotFound)
	}
	if quantity <= 0 {
		cart.RemoveItem(mealID)
	} else {
		item.Quantity = quantity
	}

	e.recomputeTotals(ctx, cart)
	if err := e.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops the meal from the cart. Removing an absent item is
// not an error.
func (e *Engine) RemoveItem(ctx context.Context, userID, mealID uint) (*models.Cart, error) {
	unlock := e.LockUser(userID)
	defer unlock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	cart, err := e.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(mealID)
	e.recomputeTotals(ctx, cart)
	if err := e.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart and zeroes both totals.
func (e *Engine) Clear(ctx context.Context, userID uint) (*models.Cart, error) {
	unlock := e.LockUser(userID)
	defer unlock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	cart, err := e.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	reset(cart)
	if err := e.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearLocked empties an already-loaded cart under a lock the caller
// holds. Used by checkout after the order has committed.
func (e *Engine) ClearLocked(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	reset(cart)
	return e.store.SaveCart(ctx, cart)
}

// CartForCheckout loads the user's cart with meals resolved, under a
// lock the caller already holds.
func (e *Engine) CartForCheckout(ctx context.Context, userID uint) (*models.Cart, error) {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	return e.getOrCreate(ctx, userID)
}

func reset(cart *models.Cart) {
	cart.Items = nil
	cart.TotalPrice = 0
	cart.TotalCalories = 0
}

// recomputeTotals re-derives TotalPrice and TotalCalories from the
// current items. Price is rounded to two decimal places. Items whose
// meal no longer resolves are skipped so a meal deleted after being
// added does not poison the cart.
func (e *Engine) recomputeTotals(ctx context.Context, cart *models.Cart) {
	price := decimal.Zero
	calories := 0
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Meal == nil {
			meal, err := e.store.MealByID(ctx, item.MealID)
			if err != nil {
				e.logger.Debug("skipping unresolvable meal in totals",
					zap.Uint("meal_id", item.MealID), zap.Error(err))
				continue
			}
			item.Meal = meal
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		price = price.Add(decimal.NewFromFloat(item.Meal.Price).Mul(qty))
		calories += item.Meal.Calories * item.Quantity
	}
	cart.TotalPrice = price.Round(2).InexactFloat64()
	cart.TotalCalories = calories
}
