package models

import "time"

// OrderStatus tracks fulfillment progress of an order.
type OrderStatus string

const (
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusConfirmed, StatusPreparing, StatusDelivering, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks payment settlement, independent of OrderStatus.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// ValidPaymentStatus reports whether s is one of the known payment states.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentQRCode       PaymentMethod = "qr-code"
)

// ValidPaymentMethod reports whether m is one of the known methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentQRCode:
		return true
	}
	return false
}

// ShippingInfo is the delivery contact captured at checkout.
type ShippingInfo struct {
	Name     string `json:"name" gorm:"not null"`
	Phone    string `json:"phone" gorm:"not null"`
	Email    string `json:"email"`
	Address  string `json:"address" gorm:"not null"`
	City     string `json:"city" gorm:"not null"`
	District string `json:"district"`
	Ward     string `json:"ward"`
	Note     string `json:"note"`
}

type Order struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"user_id" gorm:"not null;index"`
	User          *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items         []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
	TotalPrice    float64       `json:"total_price" gorm:"not null"`
	TotalCalories int           `json:"total_calories" gorm:"not null"`
	ShippingInfo  ShippingInfo  `json:"shipping_info" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"not null"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"not null;default:'pending'"`
	OrderStatus   OrderStatus   `json:"order_status" gorm:"not null;default:'confirmed'"`
	OrderNumber   string        `json:"order_number" gorm:"uniqueIndex;not null"`
	QRCode        string        `json:"qr_code,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderItem is a per-order line item snapshot. Name, price and calories
// are copied from the meal at order time so historical orders stay
// stable even if the meal changes or is deleted later.
type OrderItem struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	OrderID  uint    `json:"order_id" gorm:"not null;index"`
	MealID   uint    `json:"meal_id" gorm:"not null"`
	Meal     *Meal   `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	Name     string  `json:"name" gorm:"not null"`
	Price    float64 `json:"price" gorm:"not null"`
	Calories int     `json:"calories" gorm:"not null"`
	Quantity int     `json:"quantity" gorm:"not null"`
}
