package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order. Any state is reachable
// from any other by an admin status update; derived payment and delivery
// fields depend only on the target state.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusApproved   OrderStatus = "approved"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethodCOD orders stay unpaid until an admin approves them; every
// other payment method is treated as paid at creation.
const PaymentMethodCOD = "Cash on Delivery"

// OrderItem is a frozen copy of a product line at order time. Later catalog
// changes do not affect it.
type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Name     string             `json:"name" bson:"name"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Price    float64            `json:"price" bson:"price"`
	Image    string             `json:"image" bson:"image"`
}

type ShippingAddress struct {
	Address    string `json:"address" bson:"address" binding:"required"`
	City       string `json:"city" bson:"city" binding:"required"`
	PostalCode string `json:"postalCode" bson:"postalCode" binding:"required"`
	Country    string `json:"country" bson:"country" binding:"required"`
}

// PaymentResult is reserved for gateway callbacks; card details themselves
// are never stored.
type PaymentResult struct {
	ID           string `json:"id,omitempty" bson:"id,omitempty"`
	Status       string `json:"status,omitempty" bson:"status,omitempty"`
	UpdateTime   string `json:"update_time,omitempty" bson:"update_time,omitempty"`
	EmailAddress string `json:"email_address,omitempty" bson:"email_address,omitempty"`
}

// Order is created once at checkout and afterwards mutated only through
// status updates; it is never deleted.
type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	InvoiceID       string             `json:"invoiceId" bson:"invoiceId"`
	User            primitive.ObjectID `json:"user" bson:"user"`
	UserName        string             `json:"userName,omitempty" bson:"userName,omitempty"`
	UserEmail       string             `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
	OrderItems      []OrderItem        `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentResult   *PaymentResult     `json:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	ItemsPrice      float64            `json:"itemsPrice" bson:"itemsPrice"`
	TaxPrice        float64            `json:"taxPrice" bson:"taxPrice"`
	ShippingPrice   float64            `json:"shippingPrice" bson:"shippingPrice"`
	TotalPrice      float64            `json:"totalPrice" bson:"totalPrice"`
	IsPaid          bool               `json:"isPaid" bson:"isPaid"`
	PaidAt          *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered     bool               `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	Status          OrderStatus        `json:"status" bson:"status"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}
