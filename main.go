package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fitmeal-api/cart"
	"fitmeal-api/config"
	"fitmeal-api/handlers"
	"fitmeal-api/models"
	"fitmeal-api/order"
	"fitmeal-api/payment"
	"fitmeal-api/routes"
	"fitmeal-api/store"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if os.Getenv("GIN_MODE") == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// The store is picked once here; everything downstream only sees
	// the interface.
	var st store.Store
	switch cfg.StoreDriver {
	case "memory":
		st = store.NewMemory()
		logger.Warn("using in-memory store, data will not survive restarts")
	default:
		st, err = store.OpenSQLite(cfg.DBPath)
		if err != nil {
			logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
		}
	}

	if err := ensureAdmin(st, cfg, logger); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	carts := cart.NewEngine(st, logger, cfg.StoreTimeout)
	payments := payment.NewGenerator(payment.BankConfig{
		BankName:    cfg.BankName,
		Account:     cfg.BankAccount,
		AccountName: cfg.BankAccountName,
	})
	orders := order.NewService(st, carts, payments, logger, cfg.StoreTimeout)
	h := handlers.New(st, carts, orders, cfg, logger)

	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "FitMeal Storefront API",
			"version": "1.0.0",
		})
	})

	routes.SetupRoutes(r, h, cfg.JWTSecret)

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// ensureAdmin creates the bootstrap admin account if ADMIN_EMAIL is set
// and no account exists for it. Registration never hands out the admin
// role, so this is the only way in.
func ensureAdmin(st store.Store, cfg config.Config, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	ctx := context.Background()
	if _, err := st.UserByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		return err
	}
	logger.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
	return nil
}
