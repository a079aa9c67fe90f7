package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moyshik7/ecommerce-website/internal/models"
	"github.com/moyshik7/ecommerce-website/internal/service"
)

type OrderRepository struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

// NewOrderRepository needs the users collection alongside orders so reads
// can populate the purchaser's name and email.
func NewOrderRepository(orders, users *mongo.Collection) *OrderRepository {
	return &OrderRepository{collection: orders, users: users}
}

// Insert persists a new order.
func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	order.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, order)
	return err
}

// FindByID fetches an order with its user reference populated.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, service.ErrOrderNotFound
	}

	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, service.ErrOrderNotFound
		}
		return nil, err
	}

	r.populateUser(ctx, &order)
	return &order, nil
}

// FindByUser lists a user's orders, newest first.
func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, service.ErrUserNotFound
	}
	return r.find(ctx, bson.M{"user": objID}, 0)
}

// FindAll lists every order, optionally filtered by status, newest first.
func (r *OrderRepository) FindAll(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	orders, err := r.find(ctx, filter, 0)
	if err != nil {
		return nil, err
	}
	r.populateUsers(ctx, orders)
	return orders, nil
}

// FindRecent returns the most recent orders with users populated, for the
// admin dashboard.
func (r *OrderRepository) FindRecent(ctx context.Context, limit int) ([]*models.Order, error) {
	orders, err := r.find(ctx, bson.M{}, int64(limit))
	if err != nil {
		return nil, err
	}
	r.populateUsers(ctx, orders)
	return orders, nil
}

// UpdateStatus moves an order to status and applies the derived effects,
// returning the updated document with its user populated.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, effects service.StatusEffects) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, service.ErrOrderNotFound
	}

	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if effects.SetDelivered {
		set["isDelivered"] = true
		set["deliveredAt"] = effects.Now
	}
	if effects.SetPaid {
		set["isPaid"] = true
		set["paidAt"] = effects.Now
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, service.ErrOrderNotFound
		}
		return nil, err
	}

	r.populateUser(ctx, &order)
	return &order, nil
}

// Count returns the total number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountByStatus returns the number of orders in a given state.
func (r *OrderRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

// Revenue sums totalPrice over paid orders.
func (r *OrderRepository) Revenue(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPaid": true}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalPrice"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, limit int64) ([]*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]*models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// populateUser fills the denormalized user fields on a single order. A
// missing user leaves them empty rather than failing the read.
func (r *OrderRepository) populateUser(ctx context.Context, order *models.Order) {
	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": order.User}).Decode(&user); err != nil {
		return
	}
	order.UserName = user.Name
	order.UserEmail = user.Email
}

func (r *OrderRepository) populateUsers(ctx context.Context, orders []*models.Order) {
	// One lookup per distinct purchaser.
	users := make(map[primitive.ObjectID]*models.User)
	for _, order := range orders {
		if _, seen := users[order.User]; !seen {
			var user models.User
			if err := r.users.FindOne(ctx, bson.M{"_id": order.User}).Decode(&user); err != nil {
				users[order.User] = nil
				continue
			}
			users[order.User] = &user
		}
	}
	for _, order := range orders {
		if user := users[order.User]; user != nil {
			order.UserName = user.Name
			order.UserEmail = user.Email
		}
	}
}
