package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/moyshik7/ecommerce-website/internal/config"
	"github.com/moyshik7/ecommerce-website/internal/database"
	"github.com/moyshik7/ecommerce-website/internal/routes"
)

func main() {
	cfg := config.LoadConfig()
	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)

	router := gin.Default()
	routes.RegisterRoutes(router, db, cfg)

	log.Println("server running on port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
