package config

import (
	"fmt"

	"github.com/kabaadwala/marketplace/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection and runs migrations
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	if err := Migrate(DB); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}

// Migrate runs schema migrations on the given connection. Split out so
// tests can migrate an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Notification{},
		&models.Vendor{},
		&models.VendorKYC{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.ChatRoom{},
		&models.ChatMessage{},
		&models.ChatModeration{},
		&models.Advertisement{},
		&models.AdClick{},
		&models.AdImpression{},
	)
}
