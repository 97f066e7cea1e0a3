package config

import (
	"os"
	"strings"
)

type Config struct {
	Port        string
	FoodAPIURL  string
	SocketURL   string
	JWTSecret   string
	APIToken    string
	StoreID     string
	CORSOrigins []string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8082"),
		FoodAPIURL:  getEnv("FOOD_API_URL", "http://localhost:5000/api/v1"),
		SocketURL:   getEnv("SOCKET_URL", "ws://localhost:5000/socket"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		APIToken:    getEnv("API_TOKEN", ""),
		StoreID:     getEnv("STORE_ID", ""),
		CORSOrigins: splitEnv("CORS_ORIGINS", "http://localhost:5173"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
