// Package service implements the order lifecycle: checkout validation,
// stock-guarded order creation and admin status transitions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/moyshik7/ecommerce-website/internal/models"
)

func parseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

// priceTolerance absorbs float rounding when cross-checking client totals.
const priceTolerance = 0.01

// ProductStore is the slice of the catalog the order service needs.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// DecrementStock must be conditional: it fails with ErrStockConflict
	// instead of letting stock go negative.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

// OrderStore is the durable order persistence the service writes through.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, effects StatusEffects) (*models.Order, error)
}

// OrderItemInput is one submitted cart line at checkout.
type OrderItemInput struct {
	Product  string  `json:"product" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"required"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
}

// CreateOrderInput is the checkout submission: the cart snapshot plus
// shipping and payment details, with client-computed totals.
type CreateOrderInput struct {
	OrderItems      []OrderItemInput       `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

// StatusEffects are the derived fields a status transition sets, keyed off
// the target state only.
type StatusEffects struct {
	SetPaid      bool
	SetDelivered bool
	Now          time.Time
}

// statusEffects is the transition-effect table. States absent from it set
// nothing beyond the status field itself.
var statusEffects = map[models.OrderStatus]StatusEffects{
	models.StatusDelivered:  {SetDelivered: true},
	models.StatusApproved:   {SetPaid: true},
	models.StatusProcessing: {SetPaid: true},
}

// EffectsFor returns the derived-field effects of entering status at now.
func EffectsFor(status models.OrderStatus, now time.Time) StatusEffects {
	effects := statusEffects[status]
	effects.Now = now
	return effects
}

type OrderService struct {
	products ProductStore
	orders   OrderStore
	now      func() time.Time
}

func NewOrderService(products ProductStore, orders OrderStore) *OrderService {
	return &OrderService{
		products: products,
		orders:   orders,
		now:      time.Now,
	}
}

// CreateOrder turns a cart snapshot into a durable order and takes the
// ordered stock. Every item is validated before any write; stock is taken
// with per-product conditional decrements, and decrements already applied
// are compensated if a later step fails. Either the order exists with all
// its items and every decrement applied, or nothing changed.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*models.Order, error) {
	if len(input.OrderItems) == 0 {
		return nil, &ValidationError{Message: "no order items"}
	}
	if err := validateAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	// Validate all items against the current catalog before any write.
	itemsSubtotal := 0.0
	for _, item := range input.OrderItems {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid quantity for %s", item.Name)}
		}
		product, err := s.products.FindByID(ctx, item.Product)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", item.Name, err)
		}
		if product.Stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Stock,
			}
		}
		itemsSubtotal += product.Price * float64(item.Quantity)
	}

	// Totals are client-computed; recompute from authoritative catalog
	// prices and reject mismatches instead of trusting the arithmetic.
	if math.Abs(itemsSubtotal-input.ItemsPrice) > priceTolerance {
		return nil, &ValidationError{Message: "items price does not match catalog prices"}
	}
	if math.Abs(input.ItemsPrice+input.TaxPrice+input.ShippingPrice-input.TotalPrice) > priceTolerance {
		return nil, &ValidationError{Message: "total price does not match its parts"}
	}

	// Take stock with conditional decrements. A conflict here means a
	// concurrent checkout won the race; undo what we took and give up.
	taken := make([]OrderItemInput, 0, len(input.OrderItems))
	for _, item := range input.OrderItems {
		if err := s.products.DecrementStock(ctx, item.Product, item.Quantity); err != nil {
			s.compensate(ctx, taken)
			if errors.Is(err, ErrStockConflict) {
				stockErr := &InsufficientStockError{ProductName: item.Name, Requested: item.Quantity}
				if product, ferr := s.products.FindByID(ctx, item.Product); ferr == nil {
					stockErr.ProductName = product.Name
					stockErr.Available = product.Stock
				}
				return nil, stockErr
			}
			return nil, err
		}
		taken = append(taken, item)
	}

	order, err := s.buildOrder(userID, input)
	if err != nil {
		s.compensate(ctx, taken)
		return nil, err
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		s.compensate(ctx, taken)
		return nil, err
	}

	return order, nil
}

// UpdateStatus moves an order to the target lifecycle state and applies its
// derived effects: delivered marks the order delivered, approved and
// processing mark it paid. Repeating a transition overwrites the same
// fields idempotently. Any state is reachable from any other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid status %q", status)}
	}

	return s.orders.UpdateStatus(ctx, orderID, status, EffectsFor(status, s.now()))
}

func (s *OrderService) buildOrder(userID string, input CreateOrderInput) (*models.Order, error) {
	user, err := parseObjectID(userID)
	if err != nil {
		return nil, &ValidationError{Message: "invalid user id"}
	}

	items := make([]models.OrderItem, 0, len(input.OrderItems))
	for _, item := range input.OrderItems {
		productID, err := parseObjectID(item.Product)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid product id for %s", item.Name)}
		}
		items = append(items, models.OrderItem{
			Product:  productID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Image:    item.Image,
		})
	}

	now := s.now()
	order := &models.Order{
		InvoiceID:       NewInvoiceID(),
		User:            user,
		OrderItems:      items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		ItemsPrice:      input.ItemsPrice,
		TaxPrice:        input.TaxPrice,
		ShippingPrice:   input.ShippingPrice,
		TotalPrice:      input.TotalPrice,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Online payments are treated as paid at creation; only cash on
	// delivery waits for an admin to approve the order.
	if input.PaymentMethod != models.PaymentMethodCOD {
		order.IsPaid = true
		paidAt := now
		order.PaidAt = &paidAt
	}

	return order, nil
}

func (s *OrderService) compensate(ctx context.Context, taken []OrderItemInput) {
	for _, item := range taken {
		if err := s.products.IncrementStock(ctx, item.Product, item.Quantity); err != nil {
			log.Printf("failed to restore stock for product %s: %v", item.Product, err)
		}
	}
}

func validateAddress(addr models.ShippingAddress) error {
	switch {
	case addr.Address == "":
		return &ValidationError{Message: "shipping address is required"}
	case addr.City == "":
		return &ValidationError{Message: "city is required"}
	case addr.PostalCode == "":
		return &ValidationError{Message: "postal code is required"}
	case addr.Country == "":
		return &ValidationError{Message: "country is required"}
	}
	return nil
}
