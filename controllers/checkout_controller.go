package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
	"gorm.io/gorm"
)

// PlaceOrderRequest holds the checkout payload
type PlaceOrderRequest struct {
	AddressID  uint   `json:"address_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
	Notes      string `json:"notes"`
}

// vendorGroup collects one vendor's cart lines during checkout
type vendorGroup struct {
	VendorID uint
	Items    []models.CartItem
	Subtotal float64
}

// GetCheckoutSummary previews the checkout: per-vendor totals, coupon
// discount and whether the wallet can cover the total
func GetCheckoutSummary(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	groups, err := loadCartGroups(config.DB, user.ID)
	if err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	var subtotal float64
	for _, g := range groups {
		subtotal += g.Subtotal
	}

	var discount float64
	var couponMessage string
	if code := c.Query("coupon_code"); code != "" {
		coupon, target, cErr := resolveCoupon(config.DB, code, user.ID, groups)
		if cErr != nil {
			if ce, ok := utils.IsCouponError(cErr); ok {
				couponMessage = ce.Reason
			} else {
				utils.InternalServerError(c, "Failed to validate coupon", nil)
				return
			}
		} else {
			discount = coupon.CalculateDiscount(target.Subtotal)
			couponMessage = "Coupon applied"
		}
	}

	wallet, err := utils.GetOrCreateWallet(config.DB, user.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	total := subtotal - discount
	utils.Success(c, "Checkout summary", gin.H{
		"vendor_count":       len(groups),
		"subtotal":           subtotal,
		"discount":           discount,
		"coupon_message":     couponMessage,
		"total":              total,
		"wallet_balance":     wallet.CurrentBalance,
		"sufficient_balance": wallet.CurrentBalance >= total,
	})
}

// PlaceOrder converts the cart into one order per vendor, applies the
// coupon, holds the payable amount in the wallet and decrements stock.
// Everything happens in a single transaction: either all vendor orders
// are placed and funded, or none are.
func PlaceOrder(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid checkout data", err.Error())
		return
	}

	var address models.Address
	if err := config.DB.Where("id = ? AND user_id = ?", req.AddressID, user.ID).First(&address).Error; err != nil {
		utils.BadRequest(c, "Delivery address not found", nil)
		return
	}
	deliveryAddress := fmt.Sprintf("%s, %s, %s, %s - %s (%s)",
		address.FullName, address.StreetAddress, address.City, address.State, address.PostalCode, address.PhoneNumber)

	groups, err := loadCartGroups(config.DB, user.ID)
	if err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	tx := config.DB.Begin()

	wallet, err := utils.GetOrCreateWallet(tx, user.ID)
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	// Resolve the coupon against the vendor groups before creating orders
	var coupon *models.Coupon
	var couponTarget *vendorGroup
	if req.CouponCode != "" {
		coupon, couponTarget, err = resolveCoupon(tx, req.CouponCode, user.ID, groups)
		if err != nil {
			tx.Rollback()
			if ce, ok := utils.IsCouponError(err); ok {
				utils.BadRequest(c, ce.Reason, nil)
				return
			}
			utils.InternalServerError(c, "Failed to validate coupon", nil)
			return
		}
	}

	var orders []models.Order
	for i := range groups {
		group := &groups[i]

		discount := 0.0
		var couponID *uint
		couponCode := ""
		if coupon != nil && couponTarget == group {
			discount = coupon.CalculateDiscount(group.Subtotal)
			couponID = &coupon.ID
			couponCode = coupon.Code
		}

		order := models.Order{
			OrderNumber:     models.NewOrderNumber(),
			UserID:          user.ID,
			VendorID:        group.VendorID,
			DeliveryAddress: deliveryAddress,
			Subtotal:        group.Subtotal,
			CouponID:        couponID,
			CouponCode:      couponCode,
			CouponDiscount:  discount,
			TotalAmount:     group.Subtotal - discount,
			PaymentStatus:   models.PaymentStatusPending,
			OrderStatus:     models.OrderStatusPlaced,
			EscrowStatus:    models.EscrowStatusHeld,
			Notes:           req.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to create order for user %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to place order", nil)
			return
		}

		for _, item := range group.Items {
			snapshot, _ := json.Marshal(gin.H{
				"title": item.Product.Title,
				"sku":   item.Product.SKU,
				"price": item.Product.Price,
				"unit":  item.Product.Unit,
			})
			orderItem := models.OrderItem{
				OrderID:         order.ID,
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				UnitPrice:       item.Product.Price,
				TotalPrice:      float64(item.Quantity) * item.Product.Price,
				ProductSnapshot: string(snapshot),
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				tx.Rollback()
				utils.InternalServerError(c, "Failed to place order", nil)
				return
			}

			// Guarded decrement: fails when another checkout took the stock first
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				Updates(map[string]interface{}{
					"stock_quantity": gorm.Expr("stock_quantity - ?", item.Quantity),
					"orders_count":   gorm.Expr("orders_count + 1"),
				})
			if res.Error != nil {
				tx.Rollback()
				utils.InternalServerError(c, "Failed to place order", nil)
				return
			}
			if res.RowsAffected == 0 {
				tx.Rollback()
				utils.Conflict(c, fmt.Sprintf("Insufficient stock for %s", item.Product.Title), nil)
				return
			}
		}

		// Hold the payable amount in escrow
		if _, err := utils.HoldOrderAmount(tx, wallet, &order); err != nil {
			tx.Rollback()
			if errors.Is(err, utils.ErrInsufficientBalance) {
				utils.BadRequest(c, "Insufficient wallet balance. Please recharge your wallet.", gin.H{
					"required_amount": order.TotalAmount,
				})
				return
			}
			if errors.Is(err, utils.ErrWalletInactive) {
				utils.Forbidden(c, "Your wallet is frozen. Contact support.")
				return
			}
			utils.LogError("Failed to hold funds for order %s: %v", order.OrderNumber, err)
			utils.InternalServerError(c, "Failed to place order", nil)
			return
		}

		if err := tx.Model(&order).Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to place order", nil)
			return
		}
		order.PaymentStatus = models.PaymentStatusPaid

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    models.OrderStatusPlaced,
			Notes:     "Order placed, payment held in escrow",
			UpdatedBy: user.ID,
		}
		if err := tx.Create(&history).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to place order", nil)
			return
		}

		// Record coupon usage in the same transaction as the discount
		if couponID != nil {
			usage := models.CouponUsage{
				CouponID:       *couponID,
				UserID:         user.ID,
				OrderID:        order.ID,
				DiscountAmount: discount,
			}
			if err := tx.Create(&usage).Error; err != nil {
				tx.Rollback()
				utils.Conflict(c, "Coupon already used for this order", nil)
				return
			}
			res := tx.Model(&models.Coupon{}).
				Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", *couponID).
				UpdateColumn("used_count", gorm.Expr("used_count + 1"))
			if res.Error != nil {
				tx.Rollback()
				utils.InternalServerError(c, "Failed to place order", nil)
				return
			}
			if res.RowsAffected == 0 {
				tx.Rollback()
				utils.BadRequest(c, "Coupon usage limit reached", nil)
				return
			}
		}

		orders = append(orders, order)
	}

	if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to place order", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit checkout for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to place order", nil)
		return
	}

	for _, order := range orders {
		utils.LogInfo("Order placed: %s (user %d, vendor %d, amount %.2f)",
			order.OrderNumber, user.ID, order.VendorID, order.TotalAmount)
		utils.PublishEvent(utils.SubjectOrderPlaced, gin.H{
			"order_number": order.OrderNumber,
			"user_id":      user.ID,
			"vendor_id":    order.VendorID,
			"amount":       order.TotalAmount,
			"placed_at":    time.Now(),
		})
		utils.Notify(config.DB, user.ID, models.NotificationTypeOrder,
			"Order placed",
			fmt.Sprintf("Your order %s has been placed. %.2f is held in escrow until delivery.", order.OrderNumber, order.TotalAmount))

		var vendor models.Vendor
		if err := config.DB.First(&vendor, order.VendorID).Error; err == nil {
			utils.Notify(config.DB, vendor.UserID, models.NotificationTypeOrder,
				"New order received",
				fmt.Sprintf("You have a new order %s worth %.2f.", order.OrderNumber, order.TotalAmount))
		}
	}
	if coupon != nil {
		utils.PublishEvent(utils.SubjectCouponApplied, gin.H{
			"coupon_code": coupon.Code,
			"user_id":     user.ID,
		})
	}

	utils.Created(c, "Order placed successfully", gin.H{"orders": orders})
}

// loadCartGroups loads the user's cart and groups the lines per vendor,
// re-validating stock and minimum quantities
func loadCartGroups(db *gorm.DB, userID uint) ([]vendorGroup, error) {
	var items []models.CartItem
	if err := db.Preload("Product").Preload("Product.Vendor").
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return nil, errors.New("failed to load cart")
	}
	if len(items) == 0 {
		return nil, errors.New("your cart is empty")
	}

	byVendor := map[uint]*vendorGroup{}
	var order []uint
	for _, item := range items {
		if !item.Product.IsActive {
			return nil, fmt.Errorf("%s is no longer available", item.Product.Title)
		}
		if !item.Product.Vendor.CanSell() {
			return nil, fmt.Errorf("%s is no longer available", item.Product.Title)
		}
		if item.Quantity < item.Product.MinimumOrderQty {
			return nil, fmt.Errorf("quantity for %s is below the minimum order quantity", item.Product.Title)
		}
		if item.Quantity > item.Product.StockQuantity {
			return nil, fmt.Errorf("insufficient stock for %s", item.Product.Title)
		}

		g, ok := byVendor[item.Product.VendorID]
		if !ok {
			g = &vendorGroup{VendorID: item.Product.VendorID}
			byVendor[item.Product.VendorID] = g
			order = append(order, item.Product.VendorID)
		}
		g.Items = append(g.Items, item)
		g.Subtotal += float64(item.Quantity) * item.Product.Price
	}

	groups := make([]vendorGroup, 0, len(byVendor))
	for _, vendorID := range order {
		groups = append(groups, *byVendor[vendorID])
	}
	return groups, nil
}

// resolveCoupon validates a coupon code against the checkout and picks the
// vendor group it applies to: its own vendor's group for vendor-scoped
// coupons, the largest group for global ones. A coupon discounts exactly
// one vendor order per checkout.
func resolveCoupon(db *gorm.DB, code string, userID uint, groups []vendorGroup) (*models.Coupon, *vendorGroup, error) {
	var coupon models.Coupon
	if err := db.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.NewCouponError("Coupon not found")
		}
		return nil, nil, err
	}

	var target *vendorGroup
	if coupon.Scope == models.CouponScopeVendor {
		for i := range groups {
			if coupon.VendorID != nil && groups[i].VendorID == *coupon.VendorID {
				target = &groups[i]
				break
			}
		}
		if target == nil {
			return nil, nil, utils.NewCouponError("Coupon is not valid for the vendors in your cart")
		}
	} else {
		for i := range groups {
			if target == nil || groups[i].Subtotal > target.Subtotal {
				target = &groups[i]
			}
		}
	}

	ok, reason := coupon.CanUse(db, userID, target.Subtotal)
	if !ok {
		return nil, nil, utils.NewCouponError(reason)
	}
	return &coupon, target, nil
}
