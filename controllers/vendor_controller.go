package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// RegisterVendorRequest holds the vendor onboarding payload
type RegisterVendorRequest struct {
	StoreName        string `json:"store_name" binding:"required,min=3,max=60"`
	BusinessEmail    string `json:"business_email" binding:"required,email"`
	BusinessPhone    string `json:"business_phone" binding:"required"`
	StoreDescription string `json:"store_description"`
	StoreAddress     string `json:"store_address" binding:"required"`
}

// SubmitKYCRequest holds the KYC document payload
type SubmitKYCRequest struct {
	PANDocument       string `json:"pan_document" binding:"required"`
	GSTINDocument     string `json:"gstin_document"`
	BankAccountNumber string `json:"bank_account_number" binding:"required"`
	BankIFSC          string `json:"bank_ifsc" binding:"required"`
	BankAccountHolder string `json:"bank_account_holder" binding:"required"`
}

// RegisterVendor converts the authenticated customer into a vendor with a
// pending KYC profile
func RegisterVendor(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid vendor data", err.Error())
		return
	}

	var existing models.Vendor
	if err := config.DB.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
		utils.Conflict(c, "You already have a vendor profile", nil)
		return
	}
	if err := config.DB.Where("store_name = ?", req.StoreName).First(&existing).Error; err == nil {
		utils.Conflict(c, "Store name is already taken", nil)
		return
	}

	tx := config.DB.Begin()

	vendor := models.Vendor{
		UserID:           user.ID,
		StoreName:        req.StoreName,
		BusinessEmail:    req.BusinessEmail,
		BusinessPhone:    req.BusinessPhone,
		StoreDescription: req.StoreDescription,
		StoreAddress:     req.StoreAddress,
		KYCStatus:        models.KYCStatusPending,
	}
	if err := tx.Create(&vendor).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create vendor for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create vendor profile", nil)
		return
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("role", models.RoleVendor).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to create vendor profile", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to create vendor profile", nil)
		return
	}

	utils.LogInfo("Vendor registered: %s (user %d)", vendor.StoreName, user.ID)
	utils.Created(c, "Vendor profile created. Submit KYC documents to start selling.", gin.H{
		"vendor": vendor,
	})
}

// SubmitKYC uploads or replaces the vendor's KYC documents and puts the
// vendor back into the review queue
func SubmitKYC(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var req SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid KYC data", err.Error())
		return
	}

	if vendor.KYCStatus == models.KYCStatusApproved {
		utils.BadRequest(c, "KYC is already approved", nil)
		return
	}

	tx := config.DB.Begin()

	var kyc models.VendorKYC
	err := tx.Where("vendor_id = ?", vendor.ID).First(&kyc).Error
	if err != nil {
		kyc = models.VendorKYC{VendorID: vendor.ID}
	}
	kyc.PANDocument = req.PANDocument
	kyc.GSTINDocument = req.GSTINDocument
	kyc.BankAccountNumber = req.BankAccountNumber
	kyc.BankIFSC = req.BankIFSC
	kyc.BankAccountHolder = req.BankAccountHolder
	kyc.VerifiedBy = nil
	kyc.VerifiedAt = nil
	kyc.RejectionReason = ""

	if err := tx.Save(&kyc).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to submit KYC documents", nil)
		return
	}

	if err := tx.Model(&models.Vendor{}).Where("id = ?", vendor.ID).Updates(map[string]interface{}{
		"kyc_status":           models.KYCStatusPending,
		"kyc_rejection_reason": "",
	}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to submit KYC documents", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to submit KYC documents", nil)
		return
	}

	utils.LogInfo("KYC submitted for vendor %d", vendor.ID)
	utils.Success(c, "KYC documents submitted for review", gin.H{"kyc_status": models.KYCStatusPending})
}

// GetVendorProfile returns the authenticated vendor's own profile
func GetVendorProfile(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var kyc models.VendorKYC
	config.DB.Where("vendor_id = ?", vendor.ID).First(&kyc)

	utils.Success(c, "Vendor profile retrieved", gin.H{
		"vendor": vendor,
		"kyc":    kyc,
	})
}

// UpdateVendorProfile updates the vendor's editable store fields
func UpdateVendorProfile(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var req struct {
		StoreLogo        string `json:"store_logo"`
		StoreDescription string `json:"store_description"`
		StoreAddress     string `json:"store_address"`
		BusinessPhone    string `json:"business_phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid data", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.StoreLogo != "" {
		updates["store_logo"] = req.StoreLogo
	}
	if req.StoreDescription != "" {
		updates["store_description"] = req.StoreDescription
	}
	if req.StoreAddress != "" {
		updates["store_address"] = req.StoreAddress
	}
	if req.BusinessPhone != "" {
		updates["business_phone"] = req.BusinessPhone
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&vendor).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update store", nil)
		return
	}

	utils.Success(c, "Store updated", gin.H{"vendor": vendor})
}

// VendorDashboard returns order and revenue statistics for the vendor
func VendorDashboard(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var totalOrders, pendingOrders, completedOrders int64
	config.DB.Model(&models.Order{}).Where("vendor_id = ?", vendor.ID).Count(&totalOrders)
	config.DB.Model(&models.Order{}).
		Where("vendor_id = ? AND order_status IN ?", vendor.ID,
			[]string{models.OrderStatusPlaced, models.OrderStatusConfirmed, models.OrderStatusPacked, models.OrderStatusShipped, models.OrderStatusOutForDelivery}).
		Count(&pendingOrders)
	config.DB.Model(&models.Order{}).
		Where("vendor_id = ? AND order_status = ?", vendor.ID, models.OrderStatusCompleted).
		Count(&completedOrders)

	var heldRevenue, releasedRevenue float64
	config.DB.Model(&models.Order{}).
		Where("vendor_id = ? AND escrow_status = ?", vendor.ID, models.EscrowStatusHeld).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&heldRevenue)
	config.DB.Model(&models.Order{}).
		Where("vendor_id = ? AND escrow_status = ?", vendor.ID, models.EscrowStatusReleased).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&releasedRevenue)

	rate := config.AppConfig.CommissionRate
	if vendor.CommissionRate != nil {
		rate = *vendor.CommissionRate
	}
	commission := releasedRevenue * rate / 100

	var productCount int64
	config.DB.Model(&models.Product{}).Where("vendor_id = ? AND is_active = ?", vendor.ID, true).Count(&productCount)

	utils.Success(c, "Dashboard retrieved", gin.H{
		"orders": gin.H{
			"total":     totalOrders,
			"pending":   pendingOrders,
			"completed": completedOrders,
		},
		"revenue": gin.H{
			"held":       heldRevenue,
			"released":   releasedRevenue,
			"commission": commission,
			"net":        releasedRevenue - commission,
		},
		"commission_rate": rate,
		"active_products": productCount,
		"generated_at":    time.Now(),
	})
}

// GetStore returns a vendor's public storefront with its active products
func GetStore(c *gin.Context) {
	var vendor models.Vendor
	if err := config.DB.Where("id = ? AND is_active = ?", c.Param("id"), true).First(&vendor).Error; err != nil {
		utils.NotFound(c, "Store not found")
		return
	}
	if vendor.KYCStatus != models.KYCStatusApproved {
		utils.NotFound(c, "Store not found")
		return
	}

	var products []models.Product
	config.DB.Preload("Images").
		Where("vendor_id = ? AND is_active = ?", vendor.ID, true).
		Order("is_featured DESC, created_at DESC").
		Limit(50).
		Find(&products)

	utils.Success(c, "Store retrieved", gin.H{
		"store": gin.H{
			"id":          vendor.ID,
			"store_name":  vendor.StoreName,
			"store_logo":  vendor.StoreLogo,
			"description": vendor.StoreDescription,
			"address":     vendor.StoreAddress,
		},
		"products": products,
	})
}
