package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
	"gorm.io/gorm"
)

// ListOrders returns the authenticated user's orders
func ListOrders(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Order{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("order_status = ?", status)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Preload("OrderItems").Preload("Vendor").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Orders retrieved", orders, pagination)
}

// GetOrder returns one of the user's orders with its status history
func GetOrder(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var order models.Order
	if err := config.DB.Preload("OrderItems").Preload("Vendor").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	var history []models.OrderStatusHistory
	config.DB.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&history)

	utils.Success(c, "Order retrieved", gin.H{
		"order":   order,
		"history": history,
	})
}

// CancelOrder cancels an order still inside the cancellable window and
// refunds the held amount to the wallet
func CancelOrder(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	tx := config.DB.Begin()

	var order models.Order
	if err := tx.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Order not found")
		return
	}

	if !order.CanCancel() {
		tx.Rollback()
		utils.BadRequest(c, fmt.Sprintf("Order cannot be cancelled in %s status", order.OrderStatus), nil)
		return
	}
	if order.EscrowStatus == models.EscrowStatusDisputed {
		tx.Rollback()
		utils.BadRequest(c, "Order is under dispute and cannot be cancelled", nil)
		return
	}

	wallet, err := utils.GetOrCreateWallet(tx, user.ID)
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	if _, err := utils.RefundOrderHold(tx, wallet, &order); err != nil {
		tx.Rollback()
		if errors.Is(err, utils.ErrDuplicateUsage) {
			utils.Conflict(c, "Order payment has already been settled", nil)
			return
		}
		if errors.Is(err, utils.ErrInvalidStateTransition) || errors.Is(err, utils.ErrConcurrencyConflict) {
			utils.Conflict(c, "Order funds are not in a refundable state", nil)
			return
		}
		utils.LogError("Failed to refund order %s: %v", order.OrderNumber, err)
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}

	if err := tx.Model(&order).Updates(map[string]interface{}{
		"order_status":   models.OrderStatusCancelled,
		"payment_status": models.PaymentStatusRefunded,
		"escrow_status":  models.EscrowStatusReleased,
	}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}

	// Return the reserved stock
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}
	for _, item := range items {
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to restore stock for product %d on order %s: %v", item.ProductID, order.OrderNumber, err)
			utils.InternalServerError(c, "Failed to cancel order", nil)
			return
		}
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    models.OrderStatusCancelled,
		Notes:     "Cancelled by customer: " + req.Reason,
		UpdatedBy: user.ID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}

	utils.LogInfo("Order cancelled: %s (user %d)", order.OrderNumber, user.ID)
	utils.PublishEvent(utils.SubjectOrderCancelled, gin.H{
		"order_number": order.OrderNumber,
		"user_id":      user.ID,
		"vendor_id":    order.VendorID,
	})
	utils.Notify(config.DB, user.ID, models.NotificationTypeOrder,
		"Order cancelled",
		fmt.Sprintf("Order %s was cancelled and %.2f has been refunded to your wallet.", order.OrderNumber, order.TotalAmount))

	utils.Success(c, "Order cancelled and amount refunded to wallet", gin.H{
		"order_number":    order.OrderNumber,
		"refunded_amount": order.TotalAmount,
	})
}

// ConfirmDelivery lets the customer confirm receipt of a delivered order,
// moving the held amount to spent and completing the order
func ConfirmDelivery(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	tx := config.DB.Begin()

	var order models.Order
	if err := tx.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Order not found")
		return
	}

	if !order.CanComplete() {
		tx.Rollback()
		utils.BadRequest(c, "Order has not been delivered yet", nil)
		return
	}
	if order.EscrowStatus == models.EscrowStatusDisputed {
		tx.Rollback()
		utils.BadRequest(c, "Order is under dispute", nil)
		return
	}

	wallet, err := utils.GetOrCreateWallet(tx, user.ID)
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	if _, err := utils.CompleteOrderDeduct(tx, wallet, &order); err != nil {
		tx.Rollback()
		if errors.Is(err, utils.ErrDuplicateUsage) {
			utils.Conflict(c, "Order payment has already been settled", nil)
			return
		}
		if errors.Is(err, utils.ErrInvalidStateTransition) || errors.Is(err, utils.ErrConcurrencyConflict) {
			utils.Conflict(c, "Order funds are not in a payable state", nil)
			return
		}
		utils.LogError("Failed to settle order %s: %v", order.OrderNumber, err)
		utils.InternalServerError(c, "Failed to confirm delivery", nil)
		return
	}

	if err := tx.Model(&order).Updates(map[string]interface{}{
		"order_status":  models.OrderStatusCompleted,
		"escrow_status": models.EscrowStatusReleased,
	}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to confirm delivery", nil)
		return
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    models.OrderStatusCompleted,
		Notes:     "Delivery confirmed by customer, payment released",
		UpdatedBy: user.ID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to confirm delivery", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to confirm delivery", nil)
		return
	}

	utils.LogInfo("Order completed: %s (user %d)", order.OrderNumber, user.ID)
	utils.PublishEvent(utils.SubjectOrderCompleted, gin.H{
		"order_number": order.OrderNumber,
		"user_id":      user.ID,
		"vendor_id":    order.VendorID,
		"amount":       order.TotalAmount,
	})

	var vendor models.Vendor
	if err := config.DB.First(&vendor, order.VendorID).Error; err == nil {
		utils.Notify(config.DB, vendor.UserID, models.NotificationTypeOrder,
			"Order completed",
			fmt.Sprintf("Order %s has been completed. Payment will be released after commission.", order.OrderNumber))
	}

	utils.Success(c, "Delivery confirmed, payment released from escrow", gin.H{
		"order_number": order.OrderNumber,
	})
}

// ListVendorOrders returns orders for the authenticated vendor's store
func ListVendorOrders(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Order{}).Where("vendor_id = ?", vendor.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("order_status = ?", status)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Preload("OrderItems").Preload("User").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Orders retrieved", orders, pagination)
}

// UpdateOrderStatus moves a vendor's order one step along the fulfillment
// flow. Invalid jumps are rejected.
func UpdateOrderStatus(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)
	user := c.MustGet("user").(models.User)

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid status data", err.Error())
		return
	}

	tx := config.DB.Begin()

	var order models.Order
	if err := tx.Where("id = ? AND vendor_id = ?", c.Param("id"), vendor.ID).First(&order).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Order not found")
		return
	}

	if !models.ValidStatusTransition(order.OrderStatus, req.Status) {
		tx.Rollback()
		utils.BadRequest(c, fmt.Sprintf("Cannot move order from %s to %s", order.OrderStatus, req.Status), nil)
		return
	}

	updates := map[string]interface{}{"order_status": req.Status}
	if req.Status == models.OrderStatusDelivered {
		now := time.Now()
		updates["delivered_at"] = &now
	}
	if err := tx.Model(&order).Updates(updates).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to update order status", nil)
		return
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    req.Status,
		Notes:     req.Notes,
		UpdatedBy: user.ID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to update order status", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to update order status", nil)
		return
	}

	utils.LogInfo("Order %s moved to %s by vendor %d", order.OrderNumber, req.Status, vendor.ID)
	utils.Notify(config.DB, order.UserID, models.NotificationTypeOrder,
		"Order update",
		fmt.Sprintf("Your order %s is now %s.", order.OrderNumber, req.Status))

	utils.Success(c, "Order status updated", gin.H{
		"order_number": order.OrderNumber,
		"status":       req.Status,
	})
}
