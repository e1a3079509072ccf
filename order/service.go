// Package order converts carts into immutable orders and tracks their
// status lifecycle.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fitmeal-api/cart"
	"fitmeal-api/models"
	"fitmeal-api/payment"
	"fitmeal-api/store"
)

// ErrEmptyCart is returned when checkout is attempted with no items.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidStatus is returned for a status value outside the known
// enums.
var ErrInvalidStatus = errors.New("invalid status value")

// ErrInvalidPaymentMethod is returned for an unknown payment method.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// createAttempts bounds the retry loop on order-number collisions.
const createAttempts = 5

type Service struct {
	store    store.Store
	carts    *cart.Engine
	payments *payment.Generator
	logger   *zap.Logger
	timeout  time.Duration
}

func NewService(st store.Store, carts *cart.Engine, payments *payment.Generator, logger *zap.Logger, timeout time.Duration) *Service {
	return &Service{store: st, carts: carts, payments: payments, logger: logger, timeout: timeout}
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Checkout converts the user's cart into an order and clears the cart.
// It runs under the same per-user lock as cart mutations, so two
// concurrent checkouts serialize and the second one sees an empty cart.
func (s *Service) Checkout(ctx context.Context, userID uint, ship models.ShippingInfo, method models.PaymentMethod) (*models.Order, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("checkout: %q: %w", method, ErrInvalidPaymentMethod)
	}

	unlock := s.carts.LockUser(userID)
	defer unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	userCart, err := s.carts.CartForCheckout(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(userCart.Items) == 0 {
		return nil, fmt.Errorf("checkout: user %d: %w", userID, ErrEmptyCart)
	}

	items := snapshotItems(userCart)
	if len(items) == 0 {
		// every item referenced a meal that no longer resolves
		return nil, fmt.Errorf("checkout: user %d: %w", userID, ErrEmptyCart)
	}

	order := &models.Order{
		UserID: userID,
		Items:  items,
		// Totals are copied verbatim from the cart, not recomputed, so
		// the order matches exactly what the cart displayed.
		TotalPrice:    userCart.TotalPrice,
		TotalCalories: userCart.TotalCalories,
		ShippingInfo:  ship,
		PaymentMethod: method,
		PaymentStatus: models.PaymentPending,
		OrderStatus:   models.StatusConfirmed,
	}

	if err := s.create(ctx, order); err != nil {
		return nil, err
	}

	// The payload embeds the order number, so it is built only after
	// the insert has settled any number collisions.
	if method == models.PaymentBankTransfer || method == models.PaymentQRCode {
		if qr := s.paymentPayload(order.TotalPrice, order.OrderNumber); qr != "" {
			order.QRCode = qr
			if err := s.store.SaveOrder(ctx, order); err != nil {
				s.logger.Error("payment payload not persisted",
					zap.String("order_number", order.OrderNumber), zap.Error(err))
			}
		}
	}

	// The order has committed; a cart left non-empty at this point is a
	// recoverable inconsistency, not a failed checkout.
	if err := s.carts.ClearLocked(ctx, userCart); err != nil {
		s.logger.Error("cart not cleared after checkout",
			zap.Uint("user_id", userID),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}

	if resolved, err := s.store.OrderByID(ctx, order.ID); err == nil {
		return resolved, nil
	}
	return order, nil
}

// snapshotItems freezes the cart's lines. Name, price and calories come
// from the meal as it exists right now; items whose meal no longer
// resolves are skipped, matching how totals treat them.
func snapshotItems(c *models.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Meal == nil {
			continue
		}
		items = append(items, models.OrderItem{
			MealID:   it.MealID,
			Name:     it.Meal.Name,
			Price:    it.Meal.Price,
			Calories: it.Meal.Calories,
			Quantity: it.Quantity,
		})
	}
	return items
}

// create inserts the order, regenerating the order number while the
// store reports a collision. Timestamp plus random suffix makes a
// collision nearly impossible, but the unique constraint is what
// actually guarantees it.
func (s *Service) create(ctx context.Context, o *models.Order) error {
	if o.OrderNumber == "" {
		o.OrderNumber = NewOrderNumber()
	}
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = s.store.CreateOrder(ctx, o)
		if !errors.Is(err, store.ErrDuplicateOrderNumber) {
			return err
		}
		s.logger.Warn("order number collision, regenerating",
			zap.String("order_number", o.OrderNumber))
		o.OrderNumber = NewOrderNumber()
	}
	return err
}

// paymentPayload builds the QR payment-instruction payload. Failure is
// non-fatal: it is retried once, then logged and the order proceeds
// without a payload.
func (s *Service) paymentPayload(amount float64, orderNumber string) string {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var qr string
		qr, err = s.payments.QRDataURL(amount, orderNumber)
		if err == nil {
			return qr
		}
	}
	s.logger.Error("payment instructions failed, order proceeds without payload",
		zap.String("order_number", orderNumber), zap.Error(err))
	return ""
}

// ByID returns one order with meal and user data resolved.
func (s *Service) ByID(ctx context.Context, id uint) (*models.Order, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.OrderByID(ctx, id)
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.Orders(ctx, store.OrderFilter{UserID: userID})
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.Orders(ctx, f)
}

// SetOrderStatus moves the order to the given fulfillment status. Any
// status may follow any other, including leaving completed or
// cancelled: administrators resolve mistakes by setting the status
// again, so the lifecycle is deliberately permissive.
func (s *Service) SetOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("order status %q: %w", status, ErrInvalidStatus)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.OrderStatus = status
	if err := s.store.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SetPaymentStatus moves the order's payment settlement state,
// independent of the fulfillment status.
func (s *Service) SetPaymentStatus(ctx context.Context, orderID uint, status models.PaymentStatus) (*models.Order, error) {
	if !models.ValidPaymentStatus(status) {
		return nil, fmt.Errorf("payment status %q: %w", status, ErrInvalidStatus)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.PaymentStatus = status
	if err := s.store.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
