package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyshik7/ecommerce-website/internal/cache"
	"github.com/moyshik7/ecommerce-website/internal/middleware"
	"github.com/moyshik7/ecommerce-website/internal/models"
	"github.com/moyshik7/ecommerce-website/internal/repository"
	"github.com/moyshik7/ecommerce-website/internal/service"
)

type OrderHandler struct {
	service *service.OrderService
	orders  *repository.OrderRepository
	cache   *cache.Cache
}

func NewOrderHandler(svc *service.OrderService, orders *repository.OrderRepository, cache *cache.Cache) *OrderHandler {
	return &OrderHandler{service: svc, orders: orders, cache: cache}
}

// POST /api/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), userID, input)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	// Stock changed, cached catalog entries are stale.
	h.cache.DeleteByPrefix("product:")
	h.cache.DeleteByPrefix("products:list:")

	c.JSON(http.StatusCreated, order)
}

// GET /api/orders
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.orders.FindByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:id — the purchaser or an admin can read an order.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}

	claims, _ := middleware.GetClaims(c)
	if claims == nil || (order.User.Hex() != claims.UserID && claims.Role != models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func respondOrderError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var stockErr *service.InsufficientStockError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
	}
}
