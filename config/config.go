package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	RedisAddr  string
	RedisPass  string
	// Admin credentials for the back-office login
	AdminLogin    string
	AdminPassword string
	// Chain settlement gateway settings
	SettlementBaseURL   string
	SettlementProgramID string
	SettlementAuthToken string
	// Pool wallet that receives mortgage payments (optional)
	PoolWalletAddress string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return &Config{
		DBHost:              os.Getenv("DB_HOST"),
		DBPort:              os.Getenv("DB_PORT"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		Port:                os.Getenv("PORT"),
		RedisAddr:           getenvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		AdminLogin:          os.Getenv("ADMIN_LOGIN"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		SettlementBaseURL:   os.Getenv("SETTLEMENT_BASE_URL"),
		SettlementProgramID: getenvOrDefault("SETTLEMENT_PROGRAM_ID", "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"),
		SettlementAuthToken: os.Getenv("SETTLEMENT_AUTH_TOKEN"),
		PoolWalletAddress:   os.Getenv("POOL_WALLET_ADDRESS"),
	}
}

// getenvOrDefault returns the environment variable value if set, otherwise returns def
func getenvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
