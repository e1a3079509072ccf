package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitmeal-api/cart"
	"fitmeal-api/models"
	"fitmeal-api/payment"
	"fitmeal-api/store"
)

func newTestService(t *testing.T) (*Service, *cart.Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	logger := zap.NewNop()
	carts := cart.NewEngine(mem, logger, 0)
	payments := payment.NewGenerator(payment.BankConfig{
		BankName:    "Vietcombank",
		Account:     "0123456789",
		AccountName: "FITMEAL JSC",
	})
	return NewService(mem, carts, payments, logger, 0), carts, mem
}

func seedMeal(t *testing.T, mem *store.Memory, name string, price float64, calories int) *models.Meal {
	t.Helper()
	meal := &models.Meal{
		Name:        name,
		Price:       price,
		Calories:    calories,
		Category:    models.CategoryMaintain,
		IsAvailable: true,
	}
	require.NoError(t, mem.CreateMeal(context.Background(), meal))
	return meal
}

func testShipping() models.ShippingInfo {
	return models.ShippingInfo{
		Name:    "Nguyen Van A",
		Phone:   "0901234567",
		Address: "12 Ly Thuong Kiet",
		City:    "Hanoi",
	}
}

func TestCheckoutSnapshotsItemsAndClearsCart(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	mealA := seedMeal(t, mem, "Grilled Chicken Bowl", 85000, 450)
	mealB := seedMeal(t, mem, "Salmon Salad", 65000, 380)

	_, err := carts.AddItem(ctx, 1, mealA.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, 1, mealB.ID, 1)
	require.NoError(t, err)

	ord, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
	require.NoError(t, err)

	assert.Equal(t, float64(235000), ord.TotalPrice)
	assert.Equal(t, 1280, ord.TotalCalories)
	assert.Equal(t, models.StatusConfirmed, ord.OrderStatus)
	assert.Equal(t, models.PaymentPending, ord.PaymentStatus)
	assert.NotEmpty(t, ord.OrderNumber)

	require.Len(t, ord.Items, 2)
	byMeal := map[uint]models.OrderItem{}
	for _, it := range ord.Items {
		byMeal[it.MealID] = it
	}
	assert.Equal(t, "Grilled Chicken Bowl", byMeal[mealA.ID].Name)
	assert.Equal(t, float64(85000), byMeal[mealA.ID].Price)
	assert.Equal(t, 450, byMeal[mealA.ID].Calories)
	assert.Equal(t, 2, byMeal[mealA.ID].Quantity)
	assert.Equal(t, 1, byMeal[mealB.ID].Quantity)

	// the cart comes back empty with zero totals
	c, err := carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalPrice)
	assert.Zero(t, c.TotalCalories)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, carts, _ := newTestService(t)
	ctx := context.Background()

	_, err := carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, err := svc.List(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutInvalidPaymentMethod(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	meal := seedMeal(t, mem, "Tofu Bowl", 60000, 300)
	_, err := carts.AddItem(ctx, 1, meal.ID, 1)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, 1, testShipping(), "credit-card")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestCheckoutBankTransferGetsQRPayload(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	meal := seedMeal(t, mem, "Beef Bowl", 99000, 520)

	_, err := carts.AddItem(ctx, 1, meal.ID, 1)
	require.NoError(t, err)
	ord, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentBankTransfer)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ord.QRCode, "data:image/png;base64,"))

	// cash on delivery needs no payload
	_, err = carts.AddItem(ctx, 2, meal.ID, 1)
	require.NoError(t, err)
	codOrder, err := svc.Checkout(ctx, 2, testShipping(), models.PaymentCOD)
	require.NoError(t, err)
	assert.Empty(t, codOrder.QRCode)
}

func TestConcurrentCheckoutsSameUser(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	meal := seedMeal(t, mem, "Contended Bowl", 50000, 400)

	_, err := carts.AddItem(ctx, 1, meal.ID, 2)
	require.NoError(t, err)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
			results <- err
		}()
	}

	var successes, emptyCarts int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrEmptyCart):
			emptyCarts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, emptyCarts)

	orders, err := svc.List(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderNumbersUniqueUnderConcurrency(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	meal := seedMeal(t, mem, "Popular Bowl", 70000, 350)

	const n = 30
	for u := uint(1); u <= n; u++ {
		_, err := carts.AddItem(ctx, u, meal.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	wg.Add(n)
	for u := uint(1); u <= n; u++ {
		go func(userID uint) {
			defer wg.Done()
			ord, err := svc.Checkout(ctx, userID, testShipping(), models.PaymentCOD)
			if assert.NoError(t, err) {
				numbers <- ord.OrderNumber
			}
		}(u)
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

// collidingStore rejects the first insert with a duplicate order
// number so the retry path is exercised.
type collidingStore struct {
	*store.Memory
	mu         sync.Mutex
	collisions int
	firstTried string
}

func (c *collidingStore) CreateOrder(ctx context.Context, o *models.Order) error {
	c.mu.Lock()
	if c.collisions > 0 {
		c.collisions--
		c.firstTried = o.OrderNumber
		c.mu.Unlock()
		return store.ErrDuplicateOrderNumber
	}
	c.mu.Unlock()
	return c.Memory.CreateOrder(ctx, o)
}

func TestQRPayloadUsesFinalOrderNumberAfterCollision(t *testing.T) {
	cs := &collidingStore{Memory: store.NewMemory(), collisions: 1}
	logger := zap.NewNop()
	carts := cart.NewEngine(cs, logger, 0)
	payments := payment.NewGenerator(payment.BankConfig{
		BankName:    "Vietcombank",
		Account:     "0123456789",
		AccountName: "FITMEAL JSC",
	})
	svc := NewService(cs, carts, payments, logger, 0)
	ctx := context.Background()

	meal := seedMeal(t, cs.Memory, "Retry Bowl", 99000, 520)
	_, err := carts.AddItem(ctx, 1, meal.ID, 1)
	require.NoError(t, err)

	placed, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentBankTransfer)
	require.NoError(t, err)
	require.NotEqual(t, cs.firstTried, placed.OrderNumber)

	persisted, err := cs.OrderByID(ctx, placed.ID)
	require.NoError(t, err)

	// the payload must reference the number that actually persisted,
	// not the one the collision threw away
	want, err := payments.QRDataURL(persisted.TotalPrice, persisted.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, want, persisted.QRCode)
}

// faultyStore fails selected writes with a retryable storage error.
type faultyStore struct {
	*store.Memory
	failSaveCart    bool
	failCreateOrder bool
}

func (f *faultyStore) SaveCart(ctx context.Context, c *models.Cart) error {
	if f.failSaveCart {
		return &store.StorageError{Op: "save cart", Err: errors.New("disk full")}
	}
	return f.Memory.SaveCart(ctx, c)
}

func (f *faultyStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if f.failCreateOrder {
		return &store.StorageError{Op: "create order", Err: errors.New("connection reset")}
	}
	return f.Memory.CreateOrder(ctx, o)
}

func TestCheckoutSurfacesStorageError(t *testing.T) {
	fs := &faultyStore{Memory: store.NewMemory()}
	logger := zap.NewNop()
	carts := cart.NewEngine(fs, logger, 0)
	payments := payment.NewGenerator(payment.BankConfig{})
	svc := NewService(fs, carts, payments, logger, 0)
	ctx := context.Background()

	meal := seedMeal(t, fs.Memory, "Doomed Bowl", 50000, 300)
	_, err := carts.AddItem(ctx, 1, meal.ID, 1)
	require.NoError(t, err)

	fs.failCreateOrder = true
	_, err = svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
	var serr *store.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "create order", serr.Op)

	// the failed checkout leaves the cart intact for a retry
	fs.failCreateOrder = false
	c, err := carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	_, err = svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
	require.NoError(t, err)
}

func TestCheckoutSucceedsWhenCartClearFails(t *testing.T) {
	fs := &faultyStore{Memory: store.NewMemory()}
	logger := zap.NewNop()
	carts := cart.NewEngine(fs, logger, 0)
	payments := payment.NewGenerator(payment.BankConfig{})
	svc := NewService(fs, carts, payments, logger, 0)
	ctx := context.Background()

	meal := seedMeal(t, fs.Memory, "Sticky Bowl", 85000, 450)
	_, err := carts.AddItem(ctx, 1, meal.ID, 2)
	require.NoError(t, err)

	// the order commits, then the post-commit cart clear fails
	fs.failSaveCart = true
	placed, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
	require.NoError(t, err)

	persisted, err := fs.OrderByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(170000), persisted.TotalPrice)

	// the cart still holds its items; clearing it is recovered later
	fs.failSaveCart = false
	c, err := carts.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestStatusChangeLeavesOrderContentsAlone(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	meal := seedMeal(t, mem, "Frozen Bowl", 85000, 450)

	_, err := carts.AddItem(ctx, 1, meal.ID, 2)
	require.NoError(t, err)
	placed, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
	require.NoError(t, err)

	// out-of-order transitions are permitted by design
	updated, err := svc.SetOrderStatus(ctx, placed.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.OrderStatus)
	assert.Equal(t, placed.TotalPrice, updated.TotalPrice)
	assert.Equal(t, placed.TotalCalories, updated.TotalCalories)
	assert.Equal(t, len(placed.Items), len(updated.Items))
	assert.Equal(t, placed.OrderNumber, updated.OrderNumber)

	// terminal states are not locked: an admin can back out of them
	updated, err = svc.SetOrderStatus(ctx, placed.ID, models.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.OrderStatus)

	_, err = svc.SetOrderStatus(ctx, placed.ID, "shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPaymentStatusIndependentOfOrderStatus(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	meal := seedMeal(t, mem, "Paid Bowl", 40000, 200)

	_, err := carts.AddItem(ctx, 1, meal.ID, 1)
	require.NoError(t, err)
	placed, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentBankTransfer)
	require.NoError(t, err)

	updated, err := svc.SetPaymentStatus(ctx, placed.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, models.StatusConfirmed, updated.OrderStatus)

	_, err = svc.SetPaymentStatus(ctx, placed.ID, "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSnapshotSurvivesMealMutationAndDeletion(t *testing.T) {
	svc, carts, mem := newTestService(t)
	ctx := context.Background()
	meal := seedMeal(t, mem, "Original Bowl", 85000, 450)

	_, err := carts.AddItem(ctx, 1, meal.ID, 1)
	require.NoError(t, err)
	placed, err := svc.Checkout(ctx, 1, testShipping(), models.PaymentCOD)
	require.NoError(t, err)

	meal.Name = "Renamed Bowl"
	meal.Price = 120000
	require.NoError(t, mem.SaveMeal(ctx, meal))

	fetched, err := svc.ByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Bowl", fetched.Items[0].Name)
	assert.Equal(t, float64(85000), fetched.Items[0].Price)
	assert.Equal(t, 450, fetched.Items[0].Calories)

	require.NoError(t, mem.DeleteMeal(ctx, meal.ID))
	fetched, err = svc.ByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Bowl", fetched.Items[0].Name)
	assert.Equal(t, float64(85000), fetched.TotalPrice)
}
