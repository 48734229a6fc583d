package models

import (
	"gorm.io/gorm"
)

// Product units
const (
	UnitKilogram = "kg"
	UnitPiece    = "piece"
	UnitTon      = "ton"
	UnitLiter    = "liter"
	UnitMeter    = "meter"
)

// Category represents a scrap material category
type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
}

// Product is a scrap listing owned by a vendor
type Product struct {
	gorm.Model
	VendorID        uint     `json:"vendor_id" gorm:"index"`
	Vendor          Vendor   `json:"vendor" gorm:"foreignKey:VendorID"`
	CategoryID      uint     `json:"category_id" gorm:"index"`
	Category        Category `json:"category" gorm:"foreignKey:CategoryID"`
	SKU             string   `json:"sku" gorm:"uniqueIndex"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Unit            string   `json:"unit" gorm:"default:'kg'"`
	StockQuantity   int      `json:"stock_quantity" gorm:"default:0"`
	MinimumOrderQty int      `json:"minimum_order_quantity" gorm:"default:1"`
	IsActive        bool     `json:"is_active" gorm:"default:true"`
	IsFeatured      bool     `json:"is_featured" gorm:"default:false"`
	ViewsCount      int      `json:"views_count" gorm:"default:0"`
	OrdersCount     int      `json:"orders_count" gorm:"default:0"`

	Images []ProductImage `json:"images" gorm:"foreignKey:ProductID"`
}

// ProductImage stores one image for a product
type ProductImage struct {
	gorm.Model
	ProductID uint   `json:"product_id" gorm:"index"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary" gorm:"default:false"`
}

// CartItem is one product line in a user's cart
type CartItem struct {
	gorm.Model
	UserID    uint    `json:"user_id" gorm:"index"`
	ProductID uint    `json:"product_id"`
	Product   Product `json:"product" gorm:"foreignKey:ProductID"`
	Quantity  int     `json:"quantity"`
}
