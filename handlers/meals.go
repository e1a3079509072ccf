package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmeal-api/models"
	"fitmeal-api/store"
)

const relatedMealsLimit = 4

// ListMeals returns available meals, optionally filtered (public)
func (h *Handler) ListMeals(c *gin.Context) {
	filter := store.MealFilter{
		AvailableOnly: true,
		Category:      models.MealCategory(c.Query("category")),
		Search:        c.Query("search"),
		BestSeller:    c.Query("best_seller") == "true",
	}
	meals, err := h.store.Meals(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(meals), "meals": meals})
}

// GetMeal returns a single meal (public)
func (h *Handler) GetMeal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	meal, err := h.store.MealByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// GetRelatedMeals returns available meals from the same category (public)
func (h *Handler) GetRelatedMeals(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	meal, err := h.store.MealByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	related, err := h.store.RelatedMeals(c.Request.Context(), meal, relatedMealsLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(related), "meals": related})
}
