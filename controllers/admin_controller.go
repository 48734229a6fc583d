package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
	"github.com/tealeg/xlsx"
)

// EscrowStats returns platform-wide escrow totals
func EscrowStats(c *gin.Context) {
	var heldTotal, releasedTotal, disputedTotal float64
	var heldCount, disputedCount int64

	config.DB.Model(&models.Order{}).
		Where("escrow_status = ?", models.EscrowStatusHeld).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&heldTotal)
	config.DB.Model(&models.Order{}).
		Where("escrow_status = ?", models.EscrowStatusHeld).Count(&heldCount)
	config.DB.Model(&models.Order{}).
		Where("escrow_status = ?", models.EscrowStatusReleased).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&releasedTotal)
	config.DB.Model(&models.Order{}).
		Where("escrow_status = ?", models.EscrowStatusDisputed).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&disputedTotal)
	config.DB.Model(&models.Order{}).
		Where("escrow_status = ?", models.EscrowStatusDisputed).Count(&disputedCount)

	utils.Success(c, "Escrow statistics", gin.H{
		"held":     gin.H{"amount": heldTotal, "orders": heldCount},
		"released": gin.H{"amount": releasedTotal},
		"disputed": gin.H{"amount": disputedTotal, "orders": disputedCount},
	})
}

// ListEscrowOrders returns orders filtered by escrow status
func ListEscrowOrders(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Order{})
	status := c.DefaultQuery("escrow_status", models.EscrowStatusHeld)
	query = query.Where("escrow_status = ?", status)

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Preload("User").Preload("Vendor").
		Order("created_at ASC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Escrow orders retrieved", orders, pagination)
}

// DisputeEscrow freezes an order's held funds pending investigation
func DisputeEscrow(c *gin.Context) {
	admin := c.MustGet("user").(models.User)

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Dispute reason is required", err.Error())
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	if order.EscrowStatus != models.EscrowStatusHeld {
		utils.BadRequest(c, fmt.Sprintf("Cannot dispute an order with %s escrow", order.EscrowStatus), nil)
		return
	}

	// Guarded flip: a settlement that lands between the read above and this
	// update releases the escrow, and the dispute must then lose.
	res := config.DB.Model(&order).
		Where("escrow_status = ?", models.EscrowStatusHeld).
		Updates(map[string]interface{}{
			"escrow_status":  models.EscrowStatusDisputed,
			"dispute_reason": req.Reason,
		})
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to dispute order", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.Conflict(c, "Order escrow is no longer held", nil)
		return
	}

	utils.LogInfo("Order %s disputed by admin %d: %s", order.OrderNumber, admin.ID, req.Reason)
	utils.Notify(config.DB, order.UserID, models.NotificationTypeAdmin,
		"Order under review",
		fmt.Sprintf("Order %s is under review. The held amount stays frozen until resolution.", order.OrderNumber))

	utils.Success(c, "Order escrow disputed, funds frozen", gin.H{"order_number": order.OrderNumber})
}

// ResolveDispute settles a disputed order: release pays the vendor,
// refund returns the hold to the customer
func ResolveDispute(c *gin.Context) {
	admin := c.MustGet("user").(models.User)

	var req struct {
		Resolution string `json:"resolution" binding:"required,oneof=release refund"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid resolution data", err.Error())
		return
	}

	tx := config.DB.Begin()

	var order models.Order
	if err := tx.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Order not found")
		return
	}
	if order.EscrowStatus != models.EscrowStatusDisputed {
		tx.Rollback()
		utils.BadRequest(c, "Order is not under dispute", nil)
		return
	}

	wallet, err := utils.GetOrCreateWallet(tx, order.UserID)
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	var updates map[string]interface{}
	var historyNote string
	if req.Resolution == "release" {
		if _, err := utils.CompleteOrderDeduct(tx, wallet, &order); err != nil {
			tx.Rollback()
			if errors.Is(err, utils.ErrDuplicateUsage) {
				utils.Conflict(c, "Order payment has already been settled", nil)
				return
			}
			utils.LogError("Failed to release disputed order %s: %v", order.OrderNumber, err)
			utils.InternalServerError(c, "Failed to resolve dispute", nil)
			return
		}
		updates = map[string]interface{}{
			"order_status":  models.OrderStatusCompleted,
			"escrow_status": models.EscrowStatusReleased,
		}
		historyNote = "Dispute resolved in vendor's favor: " + req.Notes
	} else {
		if _, err := utils.RefundOrderHold(tx, wallet, &order); err != nil {
			tx.Rollback()
			if errors.Is(err, utils.ErrDuplicateUsage) {
				utils.Conflict(c, "Order payment has already been settled", nil)
				return
			}
			utils.LogError("Failed to refund disputed order %s: %v", order.OrderNumber, err)
			utils.InternalServerError(c, "Failed to resolve dispute", nil)
			return
		}
		updates = map[string]interface{}{
			"order_status":   models.OrderStatusCancelled,
			"payment_status": models.PaymentStatusRefunded,
			"escrow_status":  models.EscrowStatusReleased,
		}
		historyNote = "Dispute resolved in customer's favor: " + req.Notes
	}

	if err := tx.Model(&order).Updates(updates).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to resolve dispute", nil)
		return
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    updates["order_status"].(string),
		Notes:     historyNote,
		UpdatedBy: admin.ID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to resolve dispute", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to resolve dispute", nil)
		return
	}

	utils.LogInfo("Dispute on order %s resolved as %s by admin %d", order.OrderNumber, req.Resolution, admin.ID)
	utils.Notify(config.DB, order.UserID, models.NotificationTypeAdmin,
		"Dispute resolved",
		fmt.Sprintf("The dispute on order %s was resolved: %s.", order.OrderNumber, req.Resolution))

	utils.Success(c, "Dispute resolved", gin.H{
		"order_number": order.OrderNumber,
		"resolution":   req.Resolution,
	})
}

// ReleaseEscrow force-settles a delivered order whose customer never
// confirmed receipt: the held amount is deducted and paid out
func ReleaseEscrow(c *gin.Context) {
	admin := c.MustGet("user").(models.User)

	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	tx := config.DB.Begin()

	var order models.Order
	if err := tx.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Order not found")
		return
	}
	if order.EscrowStatus != models.EscrowStatusHeld {
		tx.Rollback()
		utils.BadRequest(c, fmt.Sprintf("Cannot release an order with %s escrow", order.EscrowStatus), nil)
		return
	}
	if !order.CanComplete() {
		tx.Rollback()
		utils.BadRequest(c, "Order has not been delivered yet", nil)
		return
	}

	wallet, err := utils.GetOrCreateWallet(tx, order.UserID)
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
		utils.LogError("Failed to release escrow for order %s: %v", order.OrderNumber, err)
		utils.InternalServerError(c, "Failed to release escrow", nil)
		return
	}

	if err := tx.Model(&order).Updates(map[string]interface{}{
		"order_status":  models.OrderStatusCompleted,
		"escrow_status": models.EscrowStatusReleased,
	}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to release escrow", nil)
		return
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    models.OrderStatusCompleted,
		Notes:     "Escrow released by admin: " + req.Notes,
		UpdatedBy: admin.ID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to release escrow", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to release escrow", nil)
		return
	}

	utils.LogInfo("Order completed: %s escrow released by admin %d", order.OrderNumber, admin.ID)
	utils.PublishEvent(utils.SubjectOrderCompleted, gin.H{
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"vendor_id":    order.VendorID,
		"amount":       order.TotalAmount,
	})

	utils.Success(c, "Escrow released", gin.H{"order_number": order.OrderNumber})
}

// ListKYCQueue returns vendors awaiting KYC review
func ListKYCQueue(c *gin.Context) {
	var vendors []models.Vendor
	if err := config.DB.Preload("User").
		Where("kyc_status = ?", models.KYCStatusPending).
		Order("created_at ASC").
		Find(&vendors).Error; err != nil {
		utils.InternalServerError(c, "Failed to load KYC queue", nil)
		return
	}

	result := make([]gin.H, 0, len(vendors))
	for _, v := range vendors {
		var kyc models.VendorKYC
		config.DB.Where("vendor_id = ?", v.ID).First(&kyc)
		result = append(result, gin.H{"vendor": v, "kyc": kyc})
	}
	utils.Success(c, "KYC queue retrieved", gin.H{"pending": result})
}

// DecideKYC approves or rejects a vendor's KYC submission
func DecideKYC(c *gin.Context) {
	admin := c.MustGet("user").(models.User)

	var req struct {
		Decision string `json:"decision" binding:"required,oneof=approved rejected"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid decision data", err.Error())
		return
	}
	if req.Decision == models.KYCStatusRejected && req.Reason == "" {
		utils.BadRequest(c, "A reason is required when rejecting KYC", nil)
		return
	}

	tx := config.DB.Begin()

	var vendor models.Vendor
	if err := tx.Where("id = ?", c.Param("id")).First(&vendor).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Vendor not found")
		return
	}
	if vendor.KYCStatus != models.KYCStatusPending {
		tx.Rollback()
		utils.BadRequest(c, "Vendor KYC is not pending review", nil)
		return
	}

	if err := tx.Model(&vendor).Updates(map[string]interface{}{
		"kyc_status":           req.Decision,
		"kyc_rejection_reason": req.Reason,
	}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to record decision", nil)
		return
	}

	now := time.Now()
	if err := tx.Model(&models.VendorKYC{}).Where("vendor_id = ?", vendor.ID).Updates(map[string]interface{}{
		"verified_by":      admin.ID,
		"verified_at":      &now,
		"rejection_reason": req.Reason,
	}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to record decision", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to record decision", nil)
		return
	}

	utils.LogInfo("Vendor %d KYC %s by admin %d", vendor.ID, req.Decision, admin.ID)
	utils.PublishEvent(utils.SubjectKYCDecided, gin.H{
		"vendor_id": vendor.ID,
		"decision":  req.Decision,
	})

	title := "KYC approved"
	message := "Your store has been approved. You can start listing products."
	if req.Decision == models.KYCStatusRejected {
		title = "KYC rejected"
		message = "Your KYC was rejected: " + req.Reason
	}
	utils.Notify(config.DB, vendor.UserID, models.NotificationTypeVendor, title, message)

	utils.Success(c, "KYC decision recorded", gin.H{
		"vendor_id": vendor.ID,
		"decision":  req.Decision,
	})
}

// ListUsers returns users with search and role filters (admin only)
func ListUsers(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to load users", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Users retrieved", users, pagination)
}

// SetUserBan bans or unbans an account
func SetUserBan(c *gin.Context) {
	admin := c.MustGet("user").(models.User)

	var req struct {
		Banned bool   `json:"banned"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid data", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	if user.IsAdmin() {
		utils.Forbidden(c, "Admin accounts cannot be banned")
		return
	}

	if err := config.DB.Model(&user).Update("is_banned", req.Banned).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user", nil)
		return
	}

	action := "unbanned"
	if req.Banned {
		action = "banned"
	}
	utils.LogInfo("User %d %s by admin %d: %s", user.ID, action, admin.ID, req.Reason)
	utils.Success(c, "User "+action, gin.H{"user_id": user.ID, "banned": req.Banned})
}

// SetWalletFreeze freezes or unfreezes a user's wallet. A frozen wallet
// rejects recharges and new holds.
func SetWalletFreeze(c *gin.Context) {
	admin := c.MustGet("user").(models.User)

	var req struct {
		Frozen bool   `json:"frozen"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid data", err.Error())
		return
	}

	var wallet models.Wallet
	if err := config.DB.Where("user_id = ?", c.Param("id")).First(&wallet).Error; err != nil {
		utils.NotFound(c, "Wallet not found")
		return
	}

	if err := config.DB.Model(&wallet).Update("is_active", !req.Frozen).Error; err != nil {
		utils.InternalServerError(c, "Failed to update wallet", nil)
		return
	}

	utils.LogInfo("Wallet %d frozen=%v by admin %d: %s", wallet.ID, req.Frozen, admin.ID, req.Reason)
	utils.Success(c, "Wallet updated", gin.H{"wallet_id": wallet.ID, "frozen": req.Frozen})
}

// CommissionReport summarizes platform commission on released escrow,
// per vendor, over an optional date range
func CommissionReport(c *gin.Context) {
	query := config.DB.Model(&models.Order{}).Where("escrow_status = ?", models.EscrowStatusReleased).
		Where("order_status = ?", models.OrderStatusCompleted)
	if from := c.Query("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	type vendorRow struct {
		VendorID uint
		Revenue  float64
	}
	var rows []vendorRow
	if err := query.Select("vendor_id, COALESCE(SUM(total_amount), 0) AS revenue").
		Group("vendor_id").Scan(&rows).Error; err != nil {
		utils.InternalServerError(c, "Failed to build report", nil)
		return
	}

	globalRate := config.AppConfig.CommissionRate
	var totalRevenue, totalCommission float64
	report := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		var vendor models.Vendor
		rate := globalRate
		storeName := ""
		if err := config.DB.First(&vendor, row.VendorID).Error; err == nil {
			storeName = vendor.StoreName
			if vendor.CommissionRate != nil {
				rate = *vendor.CommissionRate
			}
		}
		commission := row.Revenue * rate / 100
		totalRevenue += row.Revenue
		totalCommission += commission
		report = append(report, gin.H{
			"vendor_id":       row.VendorID,
			"store_name":      storeName,
			"revenue":         row.Revenue,
			"commission_rate": rate,
			"commission":      commission,
			"vendor_payout":   row.Revenue - commission,
		})
	}

	utils.Success(c, "Commission report", gin.H{
		"vendors":          report,
		"total_revenue":    totalRevenue,
		"total_commission": totalCommission,
	})
}

// ExportSalesReport streams completed orders as an XLSX workbook
func ExportSalesReport(c *gin.Context) {
	query := config.DB.Model(&models.Order{}).
		Where("order_status IN ?", []string{models.OrderStatusCompleted, models.OrderStatusCancelled})
	if from := c.Query("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	var orders []models.Order
	if err := query.Preload("Vendor").Order("created_at ASC").Find(&orders).Error; err != nil {
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		utils.InternalServerError(c, "Failed to build report", nil)
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"Order Number", "Date", "Store", "Subtotal", "Discount", "Total", "Status", "Escrow"} {
		cell := header.AddCell()
		cell.Value = title
	}

	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().Value = order.OrderNumber
		row.AddCell().Value = order.CreatedAt.Format("2006-01-02 15:04")
		row.AddCell().Value = order.Vendor.StoreName
		row.AddCell().SetFloat(order.Subtotal)
		row.AddCell().SetFloat(order.CouponDiscount)
		row.AddCell().SetFloat(order.TotalAmount)
		row.AddCell().Value = order.OrderStatus
		row.AddCell().Value = order.EscrowStatus
	}

	filename := fmt.Sprintf("sales_report_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write sales report: %v", err)
	}
}

// ListFlaggedMessages returns chat messages caught by the moderation
// filter, with their recorded violations (admin only)
func ListFlaggedMessages(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.ChatMessage{}).Where("is_flagged = ?", true)

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var messages []models.ChatMessage
	if err := query.Preload("Sender").Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to load flagged messages", nil)
		return
	}

	result := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		var violations []models.ChatModeration
		config.DB.Where("message_id = ?", m.ID).Find(&violations)
		result = append(result, gin.H{"message": m, "violations": violations})
	}

	utils.SendPaginatedResponse(c, "Flagged messages retrieved", result, pagination)
}
