package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
	"gorm.io/gorm"
)

// ProductRequest holds the create/update payload for a product listing
type ProductRequest struct {
	CategoryID      uint     `json:"category_id" binding:"required"`
	Title           string   `json:"title" binding:"required,min=3,max=120"`
	Description     string   `json:"description"`
	Price           float64  `json:"price" binding:"required,gt=0"`
	Unit            string   `json:"unit"`
	StockQuantity   int      `json:"stock_quantity" binding:"gte=0"`
	MinimumOrderQty int      `json:"minimum_order_quantity"`
	Images          []string `json:"images"`
}

// ListProducts returns active products with search, category and price filters
func ListProducts(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Product{}).
		Joins("JOIN vendors ON vendors.id = products.vendor_id").
		Where("products.is_active = ? AND vendors.kyc_status = ? AND vendors.is_active = ?",
			true, models.KYCStatusApproved, true)

	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(products.title) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("products.category_id = ?", categoryID)
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		query = query.Where("products.price >= ?", minPrice)
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		query = query.Where("products.price <= ?", maxPrice)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	order := "products.created_at DESC"
	switch c.Query("sort") {
	case "price_asc":
		order = "products.price ASC"
	case "price_desc":
		order = "products.price DESC"
	case "popular":
		order = "products.orders_count DESC"
	}

	var products []models.Product
	if err := query.Preload("Images").Preload("Category").
		Order(order).
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&products).Error; err != nil {
		utils.InternalServerError(c, "Failed to load products", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Products retrieved", products, pagination)
}

// GetProduct returns a single product and increments its view counter
func GetProduct(c *gin.Context) {
	var product models.Product
	err := config.DB.Preload("Images").Preload("Category").Preload("Vendor").
		Where("id = ? AND is_active = ?", c.Param("id"), true).
		First(&product).Error
	if err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	config.DB.Model(&product).UpdateColumn("views_count", gorm.Expr("views_count + 1"))

	utils.Success(c, "Product retrieved", gin.H{"product": product})
}

// ListCategories returns all active categories
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := config.DB.Where("is_active = ?", true).Order("name").Find(&categories).Error; err != nil {
		utils.InternalServerError(c, "Failed to load categories", nil)
		return
	}
	utils.Success(c, "Categories retrieved", gin.H{"categories": categories})
}

// CreateProduct adds a listing to the authenticated vendor's store
func CreateProduct(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid product data", err.Error())
		return
	}

	var category models.Category
	if err := config.DB.Where("id = ? AND is_active = ?", req.CategoryID, true).First(&category).Error; err != nil {
		utils.BadRequest(c, "Invalid category", nil)
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = models.UnitKilogram
	}
	moq := req.MinimumOrderQty
	if moq < 1 {
		moq = 1
	}

	tx := config.DB.Begin()

	product := models.Product{
		VendorID:        vendor.ID,
		CategoryID:      req.CategoryID,
		SKU:             "SKU-" + strings.ToUpper(uuid.New().String()[:8]),
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Unit:            unit,
		StockQuantity:   req.StockQuantity,
		MinimumOrderQty: moq,
	}
	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create product for vendor %d: %v", vendor.ID, err)
		utils.InternalServerError(c, "Failed to create product", nil)
		return
	}

	for i, url := range req.Images {
		img := models.ProductImage{
			ProductID: product.ID,
			URL:       url,
			IsPrimary: i == 0,
		}
		if err := tx.Create(&img).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to save product images", nil)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to create product", nil)
		return
	}

	utils.LogInfo("Product created: %s (vendor %d)", product.SKU, vendor.ID)
	utils.Created(c, "Product created", gin.H{"product": product})
}

// ListVendorProducts returns the authenticated vendor's own listings
func ListVendorProducts(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Product{}).Where("vendor_id = ?", vendor.ID)

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var products []models.Product
	if err := query.Preload("Images").Preload("Category").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&products).Error; err != nil {
		utils.InternalServerError(c, "Failed to load products", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Products retrieved", products, pagination)
}

// UpdateProduct edits one of the vendor's own listings
func UpdateProduct(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var product models.Product
	if err := config.DB.Where("id = ? AND vendor_id = ?", c.Param("id"), vendor.ID).First(&product).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	var req struct {
		Title           *string  `json:"title"`
		Description     *string  `json:"description"`
		Price           *float64 `json:"price"`
		StockQuantity   *int     `json:"stock_quantity"`
		MinimumOrderQty *int     `json:"minimum_order_quantity"`
		IsActive        *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid product data", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			utils.BadRequest(c, "Price must be positive", nil)
			return
		}
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			utils.BadRequest(c, "Stock cannot be negative", nil)
			return
		}
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.MinimumOrderQty != nil {
		if *req.MinimumOrderQty < 1 {
			utils.BadRequest(c, "Minimum order quantity must be at least 1", nil)
			return
		}
		updates["minimum_order_qty"] = *req.MinimumOrderQty
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update product", nil)
		return
	}

	utils.Success(c, "Product updated", gin.H{"product": product})
}

// DeleteProduct soft-deletes one of the vendor's own listings
func DeleteProduct(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var product models.Product
	if err := config.DB.Where("id = ? AND vendor_id = ?", c.Param("id"), vendor.ID).First(&product).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	if err := config.DB.Delete(&product).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete product", nil)
		return
	}

	utils.LogInfo("Product deleted: %s (vendor %d)", product.SKU, vendor.ID)
	utils.Success(c, "Product deleted", nil)
}
