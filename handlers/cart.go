package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmeal-api/middleware"
)

type AddToCartRequest struct {
	MealID   uint `json:"meal_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	MealID   uint `json:"meal_id" binding:"required"`
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the caller's cart, creating it on first access
func (h *Handler) GetCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	userCart, err := h.carts.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": userCart})
}

// AddToCart puts a meal in the caller's cart, incrementing quantity if
// it is already there
func (h *Handler) AddToCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userCart, err := h.carts.AddItem(c.Request.Context(), userID, req.MealID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": userCart})
}

// UpdateCartItem sets an item's quantity exactly; zero or below removes it
func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userCart, err := h.carts.UpdateItemQuantity(c.Request.Context(), userID, req.MealID, *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": userCart})
}

// RemoveFromCart drops a meal from the cart; removing an absent meal
// succeeds
func (h *Handler) RemoveFromCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	mealID, ok := idParam(c, "mealId")
	if !ok {
		return
	}
	userCart, err := h.carts.RemoveItem(c.Request.Context(), userID, mealID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": userCart})
}

// ClearCart empties the caller's cart
func (h *Handler) ClearCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	userCart, err := h.carts.Clear(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": userCart})
}
