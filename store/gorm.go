package store

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fitmeal-api/models"
)

// Gorm is the sqlite-backed Store.
type Gorm struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the sqlite database at path and
// migrates the schema.
func OpenSQLite(path string) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, &StorageError{Op: "open sqlite", Err: err}
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return nil, &StorageError{Op: "migrate", Err: err}
	}

	return &Gorm{db: db}, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}

// ── Users ───────────────────────────────────────────────────────────

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	return wrap("create user", s.db.WithContext(ctx).Create(u).Error)
}

func (s *Gorm) SaveUser(ctx context.Context, u *models.User) error {
	return wrap("save user", s.db.WithContext(ctx).Save(u).Error)
}

func (s *Gorm) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrap("user by id", err)
	}
	return &u, nil
}

func (s *Gorm) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrap("user by email", err)
	}
	return &u, nil
}

func (s *Gorm) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&users).Error
	return users, wrap("list users", err)
}

// ── Meals ───────────────────────────────────────────────────────────

func (s *Gorm) CreateMeal(ctx context.Context, m *models.Meal) error {
	return wrap("create meal", s.db.WithContext(ctx).Create(m).Error)
}

func (s *Gorm) SaveMeal(ctx context.Context, m *models.Meal) error {
	return wrap("save meal", s.db.WithContext(ctx).Save(m).Error)
}

func (s *Gorm) DeleteMeal(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Meal{}, id)
	if res.Error != nil {
		return wrap("delete meal", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) MealByID(ctx context.Context, id uint) (*models.Meal, error) {
	var m models.Meal
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, wrap("meal by id", err)
	}
	return &m, nil
}

func (s *Gorm) Meals(ctx context.Context, f MealFilter) ([]models.Meal, error) {
	query := s.db.WithContext(ctx)
	if f.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.BestSeller {
		query = query.Where("is_best_seller = ?", true)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("name LIKE ? OR name_vi LIKE ? OR description LIKE ?", like, like, like)
	}
	var meals []models.Meal
	err := query.Order("created_at desc").Find(&meals).Error
	return meals, wrap("list meals", err)
}

func (s *Gorm) RelatedMeals(ctx context.Context, meal *models.Meal, limit int) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("category = ? AND id <> ? AND is_available = ?", meal.Category, meal.ID, true).
		Limit(limit).
		Find(&meals).Error
	return meals, wrap("related meals", err)
}

// ── Carts ───────────────────────────────────────────────────────────

func (s *Gorm) CartByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items.Meal").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, wrap("cart by user", err)
	}
	return &cart, nil
}

func (s *Gorm) CreateCart(ctx context.Context, c *models.Cart) error {
	return wrap("create cart", s.db.WithContext(ctx).Create(c).Error)
}

// SaveCart replaces the cart's items wholesale so removals persist.
// Items are written without their Meal association: the cart engine
// only ever reads catalog rows, so a cart save must never push a stale
// in-memory meal copy back into the meals table.
func (s *Gorm) SaveCart(ctx context.Context, c *models.Cart) error {
	items := make([]models.CartItem, len(c.Items))
	for i, it := range c.Items {
		it.ID = 0
		it.CartID = c.ID
		it.Meal = nil
		items[i] = it
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", c.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Cart{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
			"total_price":    c.TotalPrice,
			"total_calories": c.TotalCalories,
		}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	return wrap("save cart", err)
}

// ── Orders ──────────────────────────────────────────────────────────

func (s *Gorm) CreateOrder(ctx context.Context, o *models.Order) error {
	err := s.db.WithContext(ctx).Create(o).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrderNumber
	}
	return wrap("create order", err)
}

// SaveOrder persists the only fields mutable after creation: the two
// status axes and the payment payload. Items and totals are frozen at
// checkout and never written again.
func (s *Gorm) SaveOrder(ctx context.Context, o *models.Order) error {
	err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"order_status":   o.OrderStatus,
		"payment_status": o.PaymentStatus,
		"qr_code":        o.QRCode,
	}).Error
	return wrap("save order", err)
}

func (s *Gorm) OrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("Items.Meal").
		Preload("User").
		First(&o, id).Error
	if err != nil {
		return nil, wrap("order by id", err)
	}
	return &o, nil
}

func (s *Gorm) Orders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items.Meal").Preload("User")
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		query = query.Where("order_status = ?", f.Status)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	var orders []models.Order
	err := query.Order("created_at desc").Find(&orders).Error
	return orders, wrap("list orders", err)
}
