package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitmeal-api/cart"
	"fitmeal-api/config"
	"fitmeal-api/order"
	"fitmeal-api/store"
)

// Handler holds the injected services shared by all HTTP handlers.
type Handler struct {
	store  store.Store
	carts  *cart.Engine
	orders *order.Service
	cfg    config.Config
	logger *zap.Logger
}

func New(st store.Store, carts *cart.Engine, orders *order.Service, cfg config.Config, logger *zap.Logger) *Handler {
	return &Handler{store: st, carts: carts, orders: orders, cfg: cfg, logger: logger}
}

// fail maps a service error to a transport response.
func (h *Handler) fail(c *gin.Context, err error) {
	var storageErr *store.StorageError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrMealUnavailable),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &storageErr):
		h.logger.Error("storage failure", zap.String("op", storageErr.Op), zap.Error(storageErr.Err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage temporarily unavailable, please retry"})
	default:
		h.logger.Error("unexpected failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
