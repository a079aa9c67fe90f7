package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog document. Stock is decremented when orders are
// created and must never go negative.
type Product struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name" binding:"required"`
	Description   string             `json:"description" bson:"description" binding:"required"`
	Price         float64            `json:"price" bson:"price" binding:"required"`
	OriginalPrice float64            `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Images        []string           `json:"images" bson:"images"`
	Category      string             `json:"category" bson:"category" binding:"required"`
	Stock         int                `json:"stock" bson:"stock"`
	Featured      bool               `json:"featured" bson:"featured"`
	Rating        float64            `json:"rating" bson:"rating"`
	NumReviews    int                `json:"numReviews" bson:"numReviews"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductUpdate holds the admin-updatable fields of a product.
type ProductUpdate struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Images        []string `json:"images,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Stock         *int     `json:"stock,omitempty"`
	Featured      *bool    `json:"featured,omitempty"`
}
