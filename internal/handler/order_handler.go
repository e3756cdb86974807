package handler

import (
	"net/http"
	"strconv"

	"lipa/internal/middleware"
	"lipa/internal/repository"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderRepo *repository.OrderRepository
}

func NewOrderHandler(orderRepo *repository.OrderRepository) *OrderHandler {
	return &OrderHandler{orderRepo: orderRepo}
}

// List returns the authenticated user's order history, newest first.
func (h *OrderHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, err := h.orderRepo.ListByUser(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get returns one order by reference.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderRepo.GetByReference(c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Reconcile lists manual_check orders for the restaurant dashboard: payments
// the customer asserted themselves that still need verifying with the
// provider.
func (h *OrderHandler) Reconcile(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	orders, err := h.orderRepo.ListManualCheck(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
