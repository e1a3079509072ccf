package models

import "time"

// MealCategory groups meals by nutrition goal
type MealCategory string

const (
	CategoryWeightLoss MealCategory = "weight-loss"
	CategoryMaintain   MealCategory = "maintain"
	CategoryMuscleGain MealCategory = "muscle-gain"
)

// ValidMealCategory reports whether c is one of the known categories.
func ValidMealCategory(c MealCategory) bool {
	switch c {
	case CategoryWeightLoss, CategoryMaintain, CategoryMuscleGain:
		return true
	}
	return false
}

type Meal struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"not null"`
	NameVi        string       `json:"name_vi"`
	Image         string       `json:"image"`
	Price         float64      `json:"price" gorm:"not null"`
	Calories      int          `json:"calories" gorm:"not null"`
	Protein       float64      `json:"protein"`
	Carb          float64      `json:"carb"`
	Fat           float64      `json:"fat"`
	Category      MealCategory `json:"category" gorm:"not null;index"`
	Ingredients   []string     `json:"ingredients" gorm:"serializer:json"`
	IngredientsVi []string     `json:"ingredients_vi" gorm:"serializer:json"`
	Description   string       `json:"description"`
	DescriptionVi string       `json:"description_vi"`
	IsAvailable   bool         `json:"is_available" gorm:"not null;default:true"`
	Rating        float64      `json:"rating" gorm:"default:5"`
	IsBestSeller  bool         `json:"is_best_seller" gorm:"default:false"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
