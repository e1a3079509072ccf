package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmeal-api/models"
	"fitmeal-api/store"
)

// AdminGetAllUsers returns all users — admin only
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.store.Users(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminToggleUserStatus flips a user's active flag — admin only
func (h *Handler) AdminToggleUserStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := h.store.UserByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	user.IsActive = !user.IsActive
	if err := h.store.SaveUser(c.Request.Context(), user); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// AdminGetAllOrders returns all orders with a per-status summary — admin only
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	filter := store.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	summary := map[string]int{}
	var paidRevenue float64
	for _, o := range orders {
		summary[string(o.OrderStatus)]++
		if o.PaymentStatus == models.PaymentPaid {
			paidRevenue += o.TotalPrice
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"paid_revenue":  paidRevenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

type UpdateOrderStatusRequest struct {
	OrderStatus models.OrderStatus `json:"order_status" binding:"required"`
}

// AdminUpdateOrderStatus sets an order's fulfillment status — admin only
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ord, err := h.orders.SetOrderStatus(c.Request.Context(), orderID, req.OrderStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": ord})
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required"`
}

// AdminUpdatePaymentStatus sets an order's payment status — admin only
func (h *Handler) AdminUpdatePaymentStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ord, err := h.orders.SetPaymentStatus(c.Request.Context(), orderID, req.PaymentStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": ord})
}

type MealRequest struct {
	Name          string              `json:"name" binding:"required"`
	NameVi        string              `json:"name_vi"`
	Image         string              `json:"image"`
	Price         float64             `json:"price" binding:"required,gte=0"`
	Calories      int                 `json:"calories" binding:"gte=0"`
	Protein       float64             `json:"protein" binding:"gte=0"`
	Carb          float64             `json:"carb" binding:"gte=0"`
	Fat           float64             `json:"fat" binding:"gte=0"`
	Category      models.MealCategory `json:"category" binding:"required"`
	Ingredients   []string            `json:"ingredients"`
	IngredientsVi []string            `json:"ingredients_vi"`
	Description   string              `json:"description"`
	DescriptionVi string              `json:"description_vi"`
	IsAvailable   *bool               `json:"is_available"`
	IsBestSeller  bool                `json:"is_best_seller"`
}

func (r *MealRequest) apply(m *models.Meal) {
	m.Name = r.Name
	m.NameVi = r.NameVi
	m.Image = r.Image
	m.Price = r.Price
	m.Calories = r.Calories
	m.Protein = r.Protein
	m.Carb = r.Carb
	m.Fat = r.Fat
	m.Category = r.Category
	m.Ingredients = r.Ingredients
	m.IngredientsVi = r.IngredientsVi
	m.Description = r.Description
	m.DescriptionVi = r.DescriptionVi
	m.IsAvailable = r.IsAvailable == nil || *r.IsAvailable
	m.IsBestSeller = r.IsBestSeller
}

// AdminCreateMeal adds a meal to the catalog — admin only
func (h *Handler) AdminCreateMeal(c *gin.Context) {
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidMealCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category. Must be: weight-loss, maintain, or muscle-gain"})
		return
	}
	var meal models.Meal
	req.apply(&meal)
	if meal.Rating == 0 {
		meal.Rating = 5
	}
	if err := h.store.CreateMeal(c.Request.Context(), &meal); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

// AdminUpdateMeal replaces a meal's fields — admin only. Orders that
// already snapshotted this meal are unaffected.
func (h *Handler) AdminUpdateMeal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidMealCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category. Must be: weight-loss, maintain, or muscle-gain"})
		return
	}
	meal, err := h.store.MealByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	req.apply(meal)
	if err := h.store.SaveMeal(c.Request.Context(), meal); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// AdminDeleteMeal removes a meal from the catalog — admin only
func (h *Handler) AdminDeleteMeal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteMeal(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted"})
}

// AdminDashboardStats returns headline counts for the admin dashboard
func (h *Handler) AdminDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.store.Users(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	meals, err := h.store.Meals(ctx, store.MealFilter{})
	if err != nil {
		h.fail(c, err)
		return
	}
	orders, err := h.orders.List(ctx, store.OrderFilter{})
	if err != nil {
		h.fail(c, err)
		return
	}

	var customers int
	for _, u := range users {
		if u.Role == models.RoleUser {
			customers++
		}
	}
	var paidRevenue float64
	for _, o := range orders {
		if o.PaymentStatus == models.PaymentPaid {
			paidRevenue += o.TotalPrice
		}
	}
	recent := orders
	if len(recent) > 10 {
		recent = recent[:10]
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":   customers,
		"total_meals":   len(meals),
		"total_orders":  len(orders),
		"total_revenue": paidRevenue,
		"recent_orders": recent,
	})
}
