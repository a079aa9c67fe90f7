package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	MongoDB     string
	Port        string
	JWTSecret   string
	TokenExpiry time.Duration
}

// LoadConfig reads configuration from a local .env file when present,
// otherwise from the process environment.
func LoadConfig() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("error loading .env file:", err)
		}
	}

	expiry := 24 * time.Hour
	if raw := getEnv("TOKEN_EXPIRY", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Println("invalid TOKEN_EXPIRY, using default:", err)
		} else {
			expiry = d
		}
	}

	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "ecommerce"),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry: expiry,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
