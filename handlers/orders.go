package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmeal-api/middleware"
	"fitmeal-api/models"
)

type ShippingInfoRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city" binding:"required"`
	District string `json:"district"`
	Ward     string `json:"ward"`
	Note     string `json:"note"`
}

type CheckoutRequest struct {
	ShippingInfo  ShippingInfoRequest  `json:"shipping_info" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
}

// Checkout converts the caller's cart into an order
func (h *Handler) Checkout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ship := models.ShippingInfo{
		Name:     req.ShippingInfo.Name,
		Phone:    req.ShippingInfo.Phone,
		Email:    req.ShippingInfo.Email,
		Address:  req.ShippingInfo.Address,
		City:     req.ShippingInfo.City,
		District: req.ShippingInfo.District,
		Ward:     req.ShippingInfo.Ward,
		Note:     req.ShippingInfo.Note,
	}

	createdOrder, err := h.orders.Checkout(c.Request.Context(), userID, ship, req.PaymentMethod)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   createdOrder,
	})
}

// GetMyOrders returns the caller's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrder returns one order; only the owner or an admin may view it
func (h *Handler) GetOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	ord, err := h.orders.ByID(c.Request.Context(), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if ord.UserID != userID && middleware.GetRole(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": ord})
}
