package models

import "time"

// Cart is the live pre-checkout collection of (meal, quantity) pairs
// for one user. Totals are derived state, recomputed by the cart engine
// after every mutation.
type Cart struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Items         []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalPrice    float64    `json:"total_price"`
	TotalCalories int        `json:"total_calories"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	CartID   uint  `json:"cart_id" gorm:"not null;uniqueIndex:idx_cart_meal"`
	MealID   uint  `json:"meal_id" gorm:"not null;uniqueIndex:idx_cart_meal"`
	Meal     *Meal `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	Quantity int   `json:"quantity" gorm:"not null"`
}

// Item returns a pointer to the cart item for mealID, or nil.
func (c *Cart) Item(mealID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].MealID == mealID {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem drops the item for mealID if present.
func (c *Cart) RemoveItem(mealID uint) {
	for i := range c.Items {
		if c.Items[i].MealID == mealID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}
