package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moyshik7/ecommerce-website/internal/models"
	"github.com/moyshik7/ecommerce-website/internal/repository"
	"github.com/moyshik7/ecommerce-website/internal/service"
)

// AdminHandler serves the back-office: order management, user listing,
// invoices and the dashboard. Role enforcement happens in middleware.
type AdminHandler struct {
	service  *service.OrderService
	orders   *repository.OrderRepository
	users    *repository.UserRepository
	products *repository.ProductRepository
}

func NewAdminHandler(svc *service.OrderService, orders *repository.OrderRepository, users *repository.UserRepository, products *repository.ProductRepository) *AdminHandler {
	return &AdminHandler{service: svc, orders: orders, users: users, products: products}
}

// GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	orders, err := h.orders.FindAll(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/admin/orders/:id
func (h *AdminHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// PATCH /api/admin/orders/:id
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// invoiceView projects an order down to the fields the invoices screen
// shows.
type invoiceView struct {
	InvoiceID  string             `json:"invoiceId"`
	OrderID    string             `json:"orderId"`
	UserName   string             `json:"userName"`
	UserEmail  string             `json:"userEmail"`
	TotalPrice float64            `json:"totalPrice"`
	IsPaid     bool               `json:"isPaid"`
	Status     models.OrderStatus `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// GET /api/admin/invoices
func (h *AdminHandler) ListInvoices(c *gin.Context) {
	orders, err := h.orders.FindAll(c.Request.Context(), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}

	invoices := make([]invoiceView, 0, len(orders))
	for _, order := range orders {
		invoices = append(invoices, invoiceView{
			InvoiceID:  order.InvoiceID,
			OrderID:    order.ID.Hex(),
			UserName:   order.UserName,
			UserEmail:  order.UserEmail,
			TotalPrice: order.TotalPrice,
			IsPaid:     order.IsPaid,
			Status:     order.Status,
			CreatedAt:  order.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, invoices)
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	totalOrders, err := h.orders.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	totalUsers, err := h.users.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	totalProducts, err := h.products.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	revenue, err := h.orders.Revenue(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	pendingOrders, err := h.orders.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	recentOrders, err := h.orders.FindRecent(ctx, 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalOrders":   totalOrders,
		"totalUsers":    totalUsers,
		"totalProducts": totalProducts,
		"totalRevenue":  revenue,
		"pendingOrders": pendingOrders,
		"recentOrders":  recentOrders,
	})
}
