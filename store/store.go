package store

import (
	"context"
	"errors"
	"fmt"

	"fitmeal-api/models"
)

// ErrNotFound is returned when a record does not resolve by its key.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateOrderNumber is returned by CreateOrder when the generated
// order number collides with an existing one. Callers retry with a
// fresh number.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// StorageError wraps a persistence-layer failure. Callers treat it as
// transient and retryable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MealFilter narrows Meals listings.
type MealFilter struct {
	Category      models.MealCategory
	Search        string
	BestSeller    bool
	AvailableOnly bool
}

// OrderFilter narrows Orders listings.
type OrderFilter struct {
	Status models.OrderStatus
	UserID uint
	Limit  int
}

// Store is the persistence boundary for users, meals, carts and orders.
// Two implementations exist: Gorm (sqlite) for production and Memory for
// tests and mock mode; the choice is made once at startup.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	Users(ctx context.Context) ([]models.User, error)

	// Meals
	CreateMeal(ctx context.Context, m *models.Meal) error
	SaveMeal(ctx context.Context, m *models.Meal) error
	DeleteMeal(ctx context.Context, id uint) error
	MealByID(ctx context.Context, id uint) (*models.Meal, error)
	Meals(ctx context.Context, f MealFilter) ([]models.Meal, error)
	RelatedMeals(ctx context.Context, meal *models.Meal, limit int) ([]models.Meal, error)

	// Carts
	CartByUser(ctx context.Context, userID uint) (*models.Cart, error)
	CreateCart(ctx context.Context, c *models.Cart) error
	SaveCart(ctx context.Context, c *models.Cart) error

	// Orders
	CreateOrder(ctx context.Context, o *models.Order) error
	SaveOrder(ctx context.Context, o *models.Order) error
	OrderByID(ctx context.Context, id uint) (*models.Order, error)
	Orders(ctx context.Context, f OrderFilter) ([]models.Order, error)
}
