package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Config holds all configuration for the application
type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	JWTSecret      string
	Port           string
	Env            string
	RazorpayKey    string
	RazorpaySecret string
	// CommissionRate is the platform commission percentage applied to
	// released escrow amounts. Single source of truth; vendor profiles
	// may override it per vendor.
	CommissionRate float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in deployed environments
	_ = godotenv.Load()

	config := &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "kabaadwala"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		RazorpayKey:    os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret: os.Getenv("RAZORPAY_SECRET"),
		CommissionRate: 5.0,
	}

	if rate := os.Getenv("GLOBAL_COMMISSION_RATE"); rate != "" {
		parsed, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid GLOBAL_COMMISSION_RATE: %v", err)
		}
		config.CommissionRate = parsed
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// AppConfig is the loaded configuration, set during startup
var AppConfig *Config
