package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fitmeal-api/models"
)

// Memory is an in-memory Store. It backs tests and the STORE=memory
// mode; all methods copy records in and out so callers never alias
// internal state.
type Memory struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	meals  map[uint]*models.Meal
	carts  map[uint]*models.Cart // keyed by user id
	orders map[uint]*models.Order
	nextID map[string]uint
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[uint]*models.User),
		meals:  make(map[uint]*models.Meal),
		carts:  make(map[uint]*models.Cart),
		orders: make(map[uint]*models.Order),
		nextID: make(map[string]uint),
	}
}

func (s *Memory) id(kind string) uint {
	s.nextID[kind]++
	return s.nextID[kind]
}

func copyUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func copyMeal(m *models.Meal) *models.Meal {
	cp := *m
	cp.Ingredients = append([]string(nil), m.Ingredients...)
	cp.IngredientsVi = append([]string(nil), m.IngredientsVi...)
	return &cp
}

func copyCart(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = make([]models.CartItem, len(c.Items))
	for i, it := range c.Items {
		cp.Items[i] = it
		if it.Meal != nil {
			cp.Items[i].Meal = copyMeal(it.Meal)
		}
	}
	return &cp
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = make([]models.OrderItem, len(o.Items))
	for i, it := range o.Items {
		cp.Items[i] = it
		if it.Meal != nil {
			cp.Items[i].Meal = copyMeal(it.Meal)
		}
	}
	if o.User != nil {
		cp.User = copyUser(o.User)
	}
	return &cp
}

// ── Users ───────────────────────────────────────────────────────────

func (s *Memory) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id("user")
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Memory) SaveUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Memory) UserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Memory) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) Users(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Meals ───────────────────────────────────────────────────────────

func (s *Memory) CreateMeal(ctx context.Context, m *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id("meal")
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	s.meals[m.ID] = copyMeal(m)
	return nil
}

func (s *Memory) SaveMeal(ctx context.Context, m *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meals[m.ID]; !ok {
		return ErrNotFound
	}
	m.UpdatedAt = time.Now()
	s.meals[m.ID] = copyMeal(m)
	return nil
}

func (s *Memory) DeleteMeal(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meals[id]; !ok {
		return ErrNotFound
	}
	delete(s.meals, id)
	return nil
}

func (s *Memory) MealByID(ctx context.Context, id uint) (*models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyMeal(m), nil
}

func matchMeal(m *models.Meal, f MealFilter) bool {
	if f.AvailableOnly && !m.IsAvailable {
		return false
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.BestSeller && !m.IsBestSeller {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.NameVi), q) &&
			!strings.Contains(strings.ToLower(m.Description), q) {
			return false
		}
	}
	return true
}

func (s *Memory) Meals(ctx context.Context, f MealFilter) ([]models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Meal
	for _, m := range s.meals {
		if matchMeal(m, f) {
			out = append(out, *copyMeal(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) RelatedMeals(ctx context.Context, meal *models.Meal, limit int) ([]models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Meal
	for _, m := range s.meals {
		if m.ID != meal.ID && m.Category == meal.Category && m.IsAvailable {
			out = append(out, *copyMeal(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Carts ───────────────────────────────────────────────────────────

func (s *Memory) CartByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyCart(c)
	for i := range cp.Items {
		if m, ok := s.meals[cp.Items[i].MealID]; ok {
			cp.Items[i].Meal = copyMeal(m)
		}
	}
	return cp, nil
}

func (s *Memory) CreateCart(ctx context.Context, c *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id("cart")
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.carts[c.UserID] = copyCart(c)
	return nil
}

func (s *Memory) SaveCart(ctx context.Context, c *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[c.UserID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	s.carts[c.UserID] = copyCart(c)
	return nil
}

// ── Orders ──────────────────────────────────────────────────────────

func (s *Memory) CreateOrder(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return ErrDuplicateOrderNumber
		}
	}
	o.ID = s.id("order")
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = s.id("order_item")
		o.Items[i].OrderID = o.ID
	}
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *Memory) SaveOrder(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now()
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *Memory) OrderByID(ctx context.Context, id uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	s.resolveOrder(cp)
	return cp, nil
}

func (s *Memory) Orders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.OrderStatus != f.Status {
			continue
		}
		cp := copyOrder(o)
		s.resolveOrder(cp)
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// resolveOrder attaches live meal and user records for display. Missing
// meals are left nil; the snapshot fields on the item are authoritative.
func (s *Memory) resolveOrder(o *models.Order) {
	for i := range o.Items {
		if m, ok := s.meals[o.Items[i].MealID]; ok {
			o.Items[i].Meal = copyMeal(m)
		}
	}
	if u, ok := s.users[o.UserID]; ok {
		o.User = copyUser(u)
	}
}
