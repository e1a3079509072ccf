package routes

import (
	"github.com/gin-gonic/gin"

	"fitmeal-api/handlers"
	"fitmeal-api/middleware"
	"fitmeal-api/models"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, jwtSecret []byte) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/meals", h.ListMeals)
		public.GET("/meals/:id", h.GetMeal)
		public.GET("/meals/:id/related", h.GetRelatedMeals)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(jwtSecret))
	{
		auth.GET("/auth/me", h.GetProfile)
		auth.PUT("/auth/profile", h.UpdateProfile)
		auth.PUT("/auth/password", h.ChangePassword)

		auth.GET("/cart", h.GetCart)
		auth.POST("/cart/add", h.AddToCart)
		auth.PUT("/cart/update", h.UpdateCartItem)
		auth.DELETE("/cart/remove/:mealId", h.RemoveFromCart)
		auth.DELETE("/cart/clear", h.ClearCart)

		auth.POST("/orders", h.Checkout)
		auth.GET("/orders/myorders", h.GetMyOrders)
		auth.GET("/orders/:id", h.GetOrder)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/stats", h.AdminDashboardStats)

		admin.GET("/users", h.AdminGetAllUsers)
		admin.PUT("/users/:id/toggle-status", h.AdminToggleUserStatus)

		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:id/status", h.AdminUpdateOrderStatus)
		admin.PUT("/orders/:id/payment", h.AdminUpdatePaymentStatus)

		admin.POST("/meals", h.AdminCreateMeal)
		admin.PUT("/meals/:id", h.AdminUpdateMeal)
		admin.DELETE("/meals/:id", h.AdminDeleteMeal)
	}
}
