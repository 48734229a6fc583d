package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// AddToCartRequest holds the add-to-cart payload
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// AddToCart adds a product to the user's cart or bumps its quantity
func AddToCart(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid cart data", err.Error())
		return
	}

	var product models.Product
	if err := config.DB.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	var item models.CartItem
	err := config.DB.Where("user_id = ? AND product_id = ?", user.ID, req.ProductID).First(&item).Error
	newQty := req.Quantity
	if err == nil {
		newQty = item.Quantity + req.Quantity
	}

	if newQty < product.MinimumOrderQty {
		utils.BadRequest(c, "Quantity is below the minimum order quantity", gin.H{
			"minimum_order_quantity": product.MinimumOrderQty,
		})
		return
	}
	if newQty > product.StockQuantity {
		utils.BadRequest(c, "Requested quantity exceeds available stock", gin.H{
			"available_stock": product.StockQuantity,
		})
		return
	}

	if err == nil {
		if updateErr := config.DB.Model(&item).Update("quantity", newQty).Error; updateErr != nil {
			utils.InternalServerError(c, "Failed to update cart", nil)
			return
		}
	} else {
		item = models.CartItem{
			UserID:    user.ID,
			ProductID: req.ProductID,
			Quantity:  newQty,
		}
		if createErr := config.DB.Create(&item).Error; createErr != nil {
			utils.InternalServerError(c, "Failed to add to cart", nil)
			return
		}
	}

	utils.Success(c, "Added to cart", gin.H{
		"product_id": req.ProductID,
		"quantity":   newQty,
	})
}

// GetCart returns the user's cart with line totals
func GetCart(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var items []models.CartItem
	if err := config.DB.Preload("Product").Preload("Product.Images").Preload("Product.Vendor").
		Where("user_id = ?", user.ID).
		Find(&items).Error; err != nil {
		utils.InternalServerError(c, "Failed to load cart", nil)
		return
	}

	var subtotal float64
	lines := make([]gin.H, 0, len(items))
	for _, item := range items {
		lineTotal := float64(item.Quantity) * item.Product.Price
		subtotal += lineTotal
		lines = append(lines, gin.H{
			"id":         item.ID,
			"product":    item.Product,
			"quantity":   item.Quantity,
			"unit_price": item.Product.Price,
			"line_total": lineTotal,
		})
	}

	utils.Success(c, "Cart retrieved", gin.H{
		"items":    lines,
		"subtotal": subtotal,
	})
}

// UpdateCartItem changes the quantity of one cart line
func UpdateCartItem(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req struct {
		Quantity int `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid quantity", err.Error())
		return
	}

	var item models.CartItem
	if err := config.DB.Preload("Product").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&item).Error; err != nil {
		utils.NotFound(c, "Cart item not found")
		return
	}

	if req.Quantity < item.Product.MinimumOrderQty {
		utils.BadRequest(c, "Quantity is below the minimum order quantity", gin.H{
			"minimum_order_quantity": item.Product.MinimumOrderQty,
		})
		return
	}
	if req.Quantity > item.Product.StockQuantity {
		utils.BadRequest(c, "Requested quantity exceeds available stock", gin.H{
			"available_stock": item.Product.StockQuantity,
		})
		return
	}

	if err := config.DB.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}

	utils.Success(c, "Cart updated", gin.H{"quantity": req.Quantity})
}

// RemoveCartItem deletes one line from the cart
func RemoveCartItem(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	res := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).Delete(&models.CartItem{})
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to remove item", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Cart item not found")
		return
	}

	utils.Success(c, "Item removed from cart", nil)
}

// ClearCart empties the user's cart
func ClearCart(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	if err := config.DB.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}

	utils.Success(c, "Cart cleared", nil)
}
