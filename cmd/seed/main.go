// Command seed fills a fresh database with an admin account and a sample
// catalog. Existing products are left alone.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/moyshik7/ecommerce-website/internal/auth"
	"github.com/moyshik7/ecommerce-website/internal/config"
	"github.com/moyshik7/ecommerce-website/internal/database"
	"github.com/moyshik7/ecommerce-website/internal/models"
	"github.com/moyshik7/ecommerce-website/internal/repository"
	"github.com/moyshik7/ecommerce-website/internal/service"
)

var sampleProducts = []models.Product{
	{
		Name:          "Wireless Bluetooth Headphones",
		Description:   "Premium noise-cancelling wireless headphones with 30-hour battery life.",
		Price:         79.99,
		OriginalPrice: 129.99,
		Images: []string{
			"https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop",
			"https://images.unsplash.com/photo-1583394838336-acd977736f90?w=500&h=500&fit=crop",
		},
		Category:   "electronics",
		Stock:      50,
		Featured:   true,
		Rating:     4.5,
		NumReviews: 128,
	},
	{
		Name:          "Smart Watch Pro",
		Description:   "Fitness tracking smartwatch with heart rate monitor, GPS and 7-day battery life.",
		Price:         199.99,
		OriginalPrice: 249.99,
		Images: []string{
			"https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500&h=500&fit=crop",
		},
		Category:   "electronics",
		Stock:      35,
		Featured:   true,
		Rating:     4.7,
		NumReviews: 256,
	},
	{
		Name:        "Mechanical Gaming Keyboard",
		Description: "RGB backlit mechanical keyboard with hot-swappable switches.",
		Price:       89.99,
		Images: []string{
			"https://images.unsplash.com/photo-1511467687858-23d96c32e4ae?w=500&h=500&fit=crop",
		},
		Category:   "electronics",
		Stock:      20,
		Rating:     4.3,
		NumReviews: 74,
	},
	{
		Name:        "Organic Cotton T-Shirt",
		Description: "Soft everyday tee made from 100% organic cotton.",
		Price:       19.99,
		Images: []string{
			"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500&h=500&fit=crop",
		},
		Category:   "clothing",
		Stock:      120,
		Rating:     4.1,
		NumReviews: 43,
	},
	{
		Name:          "Ceramic Pour-Over Coffee Set",
		Description:   "Hand-glazed ceramic dripper and carafe for slow mornings.",
		Price:         44.5,
		OriginalPrice: 59.0,
		Images: []string{
			"https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=500&h=500&fit=crop",
		},
		Category:   "home",
		Stock:      15,
		Featured:   true,
		Rating:     4.8,
		NumReviews: 31,
	},
}

func main() {
	cfg := config.LoadConfig()
	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db.Collection("users"))
	products := repository.NewProductRepository(db.Collection("products"))

	hash, err := auth.HashPassword("admin12345")
	if err != nil {
		log.Fatal(err)
	}
	admin := &models.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			log.Println("admin user already exists")
		} else {
			log.Fatal(err)
		}
	} else {
		log.Println("created admin user", admin.Email)
	}

	count, err := products.Count(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if count > 0 {
		log.Printf("catalog already has %d products, skipping seed", count)
		return
	}

	for i := range sampleProducts {
		if err := products.Create(ctx, &sampleProducts[i]); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("seeded %d products", len(sampleProducts))
}
