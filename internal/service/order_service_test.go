package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/moyshik7/ecommerce-website/internal/models"
)

// fakeProductStore is an in-memory ProductStore with the same conditional
// decrement semantics as the Mongo repository.
type fakeProductStore struct {
	products map[string]*models.Product
}

func newFakeProductStore(products ...*models.Product) *fakeProductStore {
	s := &fakeProductStore{products: make(map[string]*models.Product)}
	for _, p := range products {
		s.products[p.ID.Hex()] = p
	}
	return s
}

func (s *fakeProductStore) FindByID(_ context.Context, id string) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *fakeProductStore) DecrementStock(_ context.Context, id string, qty int) error {
	product, ok := s.products[id]
	if !ok {
		return ErrProductNotFound
	}
	if product.Stock < qty {
		return fmt.Errorf("product %s: %w", id, ErrStockConflict)
	}
	product.Stock -= qty
	return nil
}

func (s *fakeProductStore) IncrementStock(_ context.Context, id string, qty int) error {
	product, ok := s.products[id]
	if !ok {
		return ErrProductNotFound
	}
	product.Stock += qty
	return nil
}

type fakeOrderStore struct {
	inserted   []*models.Order
	failInsert error
}

func (s *fakeOrderStore) Insert(_ context.Context, order *models.Order) error {
	if s.failInsert != nil {
		return s.failInsert
	}
	order.ID = primitive.NewObjectID()
	s.inserted = append(s.inserted, order)
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	for _, order := range s.inserted {
		if order.ID.Hex() == id {
			return order, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, id string, status models.OrderStatus, effects StatusEffects) (*models.Order, error) {
	order, err := s.FindByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if effects.SetDelivered {
		order.IsDelivered = true
		now := effects.Now
		order.DeliveredAt = &now
	}
	if effects.SetPaid {
		order.IsPaid = true
		now := effects.Now
		order.PaidAt = &now
	}
	return order, nil
}

func newProduct(name string, price float64, stock int) *models.Product {
	return &models.Product{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func inputFor(products []*models.Product, quantities []int, tax, shipping float64) CreateOrderInput {
	items := make([]OrderItemInput, 0, len(products))
	subtotal := 0.0
	for i, p := range products {
		items = append(items, OrderItemInput{
			Product:  p.ID.Hex(),
			Name:     p.Name,
			Quantity: quantities[i],
			Price:    p.Price,
			Image:    "img.jpg",
		})
		subtotal += p.Price * float64(quantities[i])
	}
	return CreateOrderInput{
		OrderItems:      items,
		ShippingAddress: testAddress(),
		PaymentMethod:   models.PaymentMethodCOD,
		ItemsPrice:      subtotal,
		TaxPrice:        tax,
		ShippingPrice:   shipping,
		TotalPrice:      subtotal + tax + shipping,
	}
}

func TestCreateOrder_Success(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	products := newFakeProductStore(product)
	orders := &fakeOrderStore{}
	svc := NewOrderService(products, orders)

	input := inputFor([]*models.Product{product}, []int{2}, 1.6, 0)
	order, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	require.NoError(t, err)
	require.Len(t, orders.inserted, 1)

	// Stock decreased by exactly the ordered quantity.
	assert.Equal(t, 3, products.products[product.ID.Hex()].Stock)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.NotEmpty(t, order.InvoiceID)
	assert.NotEqual(t, order.ID.Hex(), order.InvoiceID)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 10.0, order.OrderItems[0].Price)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)
}

func TestCreateOrder_CashOnDeliveryIsUnpaid(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})

	// itemsPrice=20, taxPrice=1.6, shippingPrice=0, totalPrice=21.6.
	input := inputFor([]*models.Product{product}, []int{2}, 1.6, 0)
	input.PaymentMethod = models.PaymentMethodCOD

	order, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.False(t, order.IsPaid)
	assert.Nil(t, order.PaidAt)
}

func TestCreateOrder_CardIsPaidAtCreation(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})

	input := inputFor([]*models.Product{product}, []int{2}, 1.6, 0)
	input.PaymentMethod = "Card"

	order, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	require.NoError(t, err)
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc := NewOrderService(newFakeProductStore(), &fakeOrderStore{})

	input := CreateOrderInput{ShippingAddress: testAddress(), PaymentMethod: "Card"}
	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "no order items", validationErr.Message)
}

func TestCreateOrder_MissingAddressFields(t *testing.T) {
	product := newProduct("Widget", 10, 5)

	tests := []struct {
		name   string
		mutate func(*models.ShippingAddress)
	}{
		{"address", func(a *models.ShippingAddress) { a.Address = "" }},
		{"city", func(a *models.ShippingAddress) { a.City = "" }},
		{"postal code", func(a *models.ShippingAddress) { a.PostalCode = "" }},
		{"country", func(a *models.ShippingAddress) { a.Country = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})
			input := inputFor([]*models.Product{product}, []int{1}, 0, 0)
			tt.mutate(&input.ShippingAddress)

			_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	svc := NewOrderService(newFakeProductStore(), &fakeOrderStore{})

	input := CreateOrderInput{
		OrderItems: []OrderItemInput{
			{Product: primitive.NewObjectID().Hex(), Name: "Ghost", Quantity: 1, Price: 10},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   "Card",
		ItemsPrice:      10,
		TotalPrice:      10,
	}

	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	// stock=1, quantity=2: fails, no order row, no stock mutation.
	product := newProduct("Widget", 10, 1)
	products := newFakeProductStore(product)
	orders := &fakeOrderStore{}
	svc := NewOrderService(products, orders)

	input := inputFor([]*models.Product{product}, []int{2}, 0, 0)
	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Widget", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Empty(t, orders.inserted)
	assert.Equal(t, 1, products.products[product.ID.Hex()].Stock)
}

func TestCreateOrder_PriceMismatchRejected(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	orders := &fakeOrderStore{}
	svc := NewOrderService(newFakeProductStore(product), orders)

	input := inputFor([]*models.Product{product}, []int{2}, 0, 0)
	input.ItemsPrice = 1 // client claims a different subtotal
	input.TotalPrice = 1

	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, orders.inserted)
}

func TestCreateOrder_TotalMismatchRejected(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})

	input := inputFor([]*models.Product{product}, []int{2}, 1.6, 0)
	input.TotalPrice = 99 // not itemsPrice + tax + shipping

	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateOrder_ToleratesRounding(t *testing.T) {
	product := newProduct("Widget", 19.99, 5)
	svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})

	input := inputFor([]*models.Product{product}, []int{3}, 4.8, 5.99)
	input.ItemsPrice = 59.97
	input.TotalPrice = 70.76

	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	assert.NoError(t, err)
}

func TestCreateOrder_InsertFailureRestoresStock(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	products := newFakeProductStore(product)
	orders := &fakeOrderStore{failInsert: errors.New("write failed")}
	svc := NewOrderService(products, orders)

	input := inputFor([]*models.Product{product}, []int{2}, 0, 0)
	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	require.Error(t, err)
	assert.Empty(t, orders.inserted)
	// The decrement taken before the failed insert was compensated.
	assert.Equal(t, 5, products.products[product.ID.Hex()].Stock)
}

func TestCreateOrder_PartialDecrementRolledBack(t *testing.T) {
	// Second product passes the read validation but loses the stock race:
	// the first product's decrement must be undone.
	first := newProduct("Widget", 10, 5)
	second := newProduct("Gadget", 4, 3)
	products := newFakeProductStore(first, second)
	orders := &fakeOrderStore{}
	svc := NewOrderService(products, orders)

	input := inputFor([]*models.Product{first, second}, []int{2, 2}, 0, 0)

	// Simulate a concurrent checkout draining the second product between
	// validation and decrement.
	drained := false
	svc.products = productStoreFunc{
		store: products,
		beforeDecrement: func(id string) {
			if id == second.ID.Hex() && !drained {
				drained = true
				products.products[id].Stock = 1
			}
		},
	}

	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Empty(t, orders.inserted)
	assert.Equal(t, 5, products.products[first.ID.Hex()].Stock)
	assert.Equal(t, 1, products.products[second.ID.Hex()].Stock)
}

// productStoreFunc wraps a fake store with a hook before each decrement.
type productStoreFunc struct {
	store           *fakeProductStore
	beforeDecrement func(id string)
}

func (s productStoreFunc) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return s.store.FindByID(ctx, id)
}

func (s productStoreFunc) DecrementStock(ctx context.Context, id string, qty int) error {
	if s.beforeDecrement != nil {
		s.beforeDecrement(id)
	}
	return s.store.DecrementStock(ctx, id, qty)
}

func (s productStoreFunc) IncrementStock(ctx context.Context, id string, qty int) error {
	return s.store.IncrementStock(ctx, id, qty)
}

func TestCreateOrder_FrozenPricesIgnoreLaterCatalogChanges(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	products := newFakeProductStore(product)
	orders := &fakeOrderStore{}
	svc := NewOrderService(products, orders)

	input := inputFor([]*models.Product{product}, []int{2}, 0, 0)
	order, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)
	require.NoError(t, err)

	products.products[product.ID.Hex()].Price = 999

	assert.Equal(t, 10.0, order.OrderItems[0].Price)
}

func placedOrder(t *testing.T, svc *OrderService, products []*models.Product, quantities []int) *models.Order {
	t.Helper()
	input := inputFor(products, quantities, 0, 0)
	order, err := svc.CreateOrder(context.Background(), primitive.NewObjectID().Hex(), input)
	require.NoError(t, err)
	return order
}

func TestUpdateStatus_Delivered(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})
	order := placedOrder(t, svc, []*models.Product{product}, []int{1})

	updated, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusDelivered)

	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.True(t, updated.IsDelivered)
	require.NotNil(t, updated.DeliveredAt)
}

func TestUpdateStatus_ApprovedAndProcessingMarkPaid(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusApproved, models.StatusProcessing} {
		t.Run(string(status), func(t *testing.T) {
			product := newProduct("Widget", 10, 5)
			svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})
			order := placedOrder(t, svc, []*models.Product{product}, []int{1})

			updated, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), status)

			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
			assert.True(t, updated.IsPaid)
			require.NotNil(t, updated.PaidAt)
		})
	}
}

func TestUpdateStatus_Idempotent(t *testing.T) {
	product := newProduct("Widget", 10, 5)
	svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})
	order := placedOrder(t, svc, []*models.Product{product}, []int{1})

	first, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusApproved)
	require.NoError(t, err)
	require.True(t, first.IsPaid)

	again, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), models.StatusApproved)
	require.NoError(t, err)
	assert.True(t, again.IsPaid)
	require.NotNil(t, again.PaidAt)
}

func TestUpdateStatus_OtherTargetsSetNoDerivedFields(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusShipped, models.StatusCancelled, models.StatusPending} {
		t.Run(string(status), func(t *testing.T) {
			product := newProduct("Widget", 10, 5)
			svc := NewOrderService(newFakeProductStore(product), &fakeOrderStore{})
			order := placedOrder(t, svc, []*models.Product{product}, []int{1})

			updated, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), status)

			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
			assert.False(t, updated.IsPaid)
			assert.False(t, updated.IsDelivered)
		})
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc := NewOrderService(newFakeProductStore(), &fakeOrderStore{})

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), "returned")

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatus_OrderNotFound(t *testing.T) {
	svc := NewOrderService(newFakeProductStore(), &fakeOrderStore{})

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), models.StatusShipped)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestEffectsFor(t *testing.T) {
	now := time.Now()

	tests := []struct {
		status       models.OrderStatus
		setPaid      bool
		setDelivered bool
	}{
		{models.StatusPending, false, false},
		{models.StatusApproved, true, false},
		{models.StatusProcessing, true, false},
		{models.StatusShipped, false, false},
		{models.StatusDelivered, false, true},
		{models.StatusCancelled, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			effects := EffectsFor(tt.status, now)
			assert.Equal(t, tt.setPaid, effects.SetPaid)
			assert.Equal(t, tt.setDelivered, effects.SetDelivered)
			assert.Equal(t, now, effects.Now)
		})
	}
}
