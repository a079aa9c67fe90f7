package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moyshik7/ecommerce-website/internal/models"
	"github.com/moyshik7/ecommerce-website/internal/service"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
	queryTimeout = 10 * time.Second
)

// ProductQuery holds listing filters. Search is a case-insensitive
// substring match over name, description and category.
type ProductQuery struct {
	Category  string
	Featured  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{collection: collection}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	product.ID = primitive.NewObjectID()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// FindByID fetches a product by its hex id.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, service.ErrProductNotFound
	}

	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, service.ErrProductNotFound
		}
		return nil, err
	}

	return &product, nil
}

// FindAll lists products with pagination, filters and sorting, returning
// the matching page and the total count.
func (r *ProductRepository) FindAll(ctx context.Context, q ProductQuery) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Featured != nil {
		filter["featured"] = *q.Featured
	}
	if q.Search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": q.Search, "$options": "i"}},
			{"description": bson.M{"$regex": q.Search, "$options": "i"}},
			{"category": bson.M{"$regex": q.Search, "$options": "i"}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find()
	if q.Page > 0 && q.PageSize > 0 {
		findOptions.SetSkip(int64((q.Page - 1) * q.PageSize))
		findOptions.SetLimit(int64(q.PageSize))
	} else {
		findOptions.SetLimit(100)
	}

	sortField := "createdAt"
	sortOrder := -1
	if q.SortBy != "" {
		sortField = q.SortBy
	}
	if q.SortOrder == "asc" {
		sortOrder = 1
	}
	findOptions.SetSort(bson.D{{Key: sortField, Value: sortOrder}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := make([]*models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update applies the given fields to a product.
func (r *ProductRepository) Update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.ErrProductNotFound
	}

	update["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return service.ErrProductNotFound
	}

	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.ErrProductNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return service.ErrProductNotFound
	}

	return nil
}

// DecrementStock takes qty units of stock, guarded so stock cannot go
// negative: the update matches only while stock >= qty. A miss on an
// existing product means the stock ran out underneath us.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.ErrProductNotFound
	}

	filter := bson.M{"_id": objID, "stock": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id, service.ErrStockConflict)
	}

	return nil
}

// IncrementStock gives qty units back. Used to compensate decrements when
// a later step of order creation fails.
func (r *ProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.ErrProductNotFound
	}

	update := bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return service.ErrProductNotFound
	}

	return nil
}

// Count returns the number of products in the catalog.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}
