package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/moyshik7/ecommerce-website/internal/auth"
	"github.com/moyshik7/ecommerce-website/internal/cache"
	"github.com/moyshik7/ecommerce-website/internal/config"
	"github.com/moyshik7/ecommerce-website/internal/handlers"
	"github.com/moyshik7/ecommerce-website/internal/middleware"
	"github.com/moyshik7/ecommerce-website/internal/repository"
	"github.com/moyshik7/ecommerce-website/internal/service"
)

// RegisterRoutes wires repositories, services and handlers onto the
// router.
func RegisterRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config) {
	productRepo := repository.NewProductRepository(db.Collection("products"))
	orderRepo := repository.NewOrderRepository(db.Collection("orders"), db.Collection("users"))
	userRepo := repository.NewUserRepository(db.Collection("users"))

	catalogCache := cache.New(5 * time.Minute)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenExpiry)
	orderService := service.NewOrderService(productRepo, orderRepo)

	authHandler := handlers.NewAuthHandler(userRepo, jwtService)
	productHandler := handlers.NewProductHandler(productRepo, catalogCache)
	orderHandler := handlers.NewOrderHandler(orderService, orderRepo, catalogCache)
	adminHandler := handlers.NewAdminHandler(orderService, orderRepo, userRepo, productRepo)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/products", productHandler.ListProducts)
		api.GET("/products/:id", productHandler.GetProduct)
	}

	authed := api.Group("", middleware.RequireAuth(jwtService))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.POST("/orders", orderHandler.CreateOrder)
		authed.GET("/orders", orderHandler.ListMyOrders)
		authed.GET("/orders/:id", orderHandler.GetOrder)
	}

	admin := api.Group("/admin", middleware.RequireAuth(jwtService), middleware.RequireAdmin())
	{
		admin.GET("/orders", adminHandler.ListOrders)
		admin.GET("/orders/:id", adminHandler.GetOrder)
		admin.PATCH("/orders/:id", adminHandler.UpdateOrderStatus)

		admin.POST("/products", productHandler.CreateProduct)
		admin.PATCH("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/invoices", adminHandler.ListInvoices)
		admin.GET("/stats", adminHandler.GetStats)
	}
}
