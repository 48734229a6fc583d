package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// CouponRequest holds the create/update payload for a coupon
type CouponRequest struct {
	Code           string  `json:"code" binding:"required,min=3,max=30"`
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	DiscountType   string  `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue  float64 `json:"discount_value" binding:"required,gt=0"`
	MaxDiscount    float64 `json:"max_discount"`
	MinOrderAmount float64 `json:"min_order_amount"`
	UsageLimit     int     `json:"usage_limit"`
	UserLimit      int     `json:"user_limit"`
	ValidFrom      string  `json:"valid_from" binding:"required"`
	ValidUntil     string  `json:"valid_until" binding:"required"`
}

// ValidateCoupon checks a coupon against an order amount without recording
// anything. Used by the cart page before checkout.
func ValidateCoupon(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req struct {
		Code        string  `json:"code" binding:"required"`
		OrderAmount float64 `json:"order_amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid coupon data", err.Error())
		return
	}

	var coupon models.Coupon
	if err := config.DB.Where("code = ?", strings.ToUpper(req.Code)).First(&coupon).Error; err != nil {
		utils.NotFound(c, "Coupon not found")
		return
	}

	ok, reason := coupon.CanUse(config.DB, user.ID, req.OrderAmount)
	if !ok {
		utils.BadRequest(c, reason, nil)
		return
	}

	discount := coupon.CalculateDiscount(req.OrderAmount)
	utils.Success(c, "Coupon is valid", gin.H{
		"code":         coupon.Code,
		"discount":     discount,
		"final_amount": req.OrderAmount - discount,
	})
}

// ListAvailableCoupons returns active coupons a customer can currently see
func ListAvailableCoupons(c *gin.Context) {
	now := time.Now()
	var coupons []models.Coupon
	if err := config.DB.
		Where("is_active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now).
		Where("usage_limit = 0 OR used_count < usage_limit").
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		utils.InternalServerError(c, "Failed to load coupons", nil)
		return
	}
	utils.Success(c, "Coupons retrieved", gin.H{"coupons": coupons})
}

// CreateVendorCoupon creates a coupon scoped to the vendor's own store
func CreateVendorCoupon(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)
	user := c.MustGet("user").(models.User)
	createCoupon(c, user.ID, models.CouponScopeVendor, &vendor.ID)
}

// CreateGlobalCoupon creates a platform-wide coupon (admin only)
func CreateGlobalCoupon(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	createCoupon(c, user.ID, models.CouponScopeGlobal, nil)
}

func createCoupon(c *gin.Context, createdBy uint, scope string, vendorID *uint) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid coupon data", err.Error())
		return
	}

	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		utils.BadRequest(c, "Percentage discount cannot exceed 100", nil)
		return
	}

	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		utils.BadRequest(c, "Invalid valid_from date, expected RFC3339", nil)
		return
	}
	validUntil, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		utils.BadRequest(c, "Invalid valid_until date, expected RFC3339", nil)
		return
	}
	if !validUntil.After(validFrom) {
		utils.BadRequest(c, "valid_until must be after valid_from", nil)
		return
	}

	userLimit := req.UserLimit
	if userLimit < 1 {
		userLimit = 1
	}

	coupon := models.Coupon{
		Code:           strings.ToUpper(req.Code),
		Name:           req.Name,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MaxDiscount:    req.MaxDiscount,
		MinOrderAmount: req.MinOrderAmount,
		Scope:          scope,
		VendorID:       vendorID,
		CreatedBy:      createdBy,
		UsageLimit:     req.UsageLimit,
		UserLimit:      userLimit,
		ValidFrom:      validFrom,
		ValidUntil:     validUntil,
		IsActive:       true,
	}
	if err := config.DB.Create(&coupon).Error; err != nil {
		utils.Conflict(c, "Coupon code already exists", nil)
		return
	}

	utils.LogInfo("Coupon created: %s (%s scope)", coupon.Code, scope)
	utils.Created(c, "Coupon created", gin.H{"coupon": coupon})
}

// ListVendorCoupons returns the vendor's own coupons with usage stats
func ListVendorCoupons(c *gin.Context) {
	vendor := c.MustGet("vendor").(models.Vendor)

	var coupons []models.Coupon
	if err := config.DB.Where("scope = ? AND vendor_id = ?", models.CouponScopeVendor, vendor.ID).
		Order("created_at DESC").Find(&coupons).Error; err != nil {
		utils.InternalServerError(c, "Failed to load coupons", nil)
		return
	}
	utils.Success(c, "Coupons retrieved", gin.H{"coupons": coupons})
}

// DeactivateCoupon turns a coupon off. Vendors can only touch their own;
// admins can touch any.
func DeactivateCoupon(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var coupon models.Coupon
	if err := config.DB.Where("id = ?", c.Param("id")).First(&coupon).Error; err != nil {
		utils.NotFound(c, "Coupon not found")
		return
	}

	if !user.IsAdmin() {
		vendorVal, exists := c.Get("vendor")
		if !exists {
			utils.Forbidden(c, "Not allowed")
			return
		}
		vendor := vendorVal.(models.Vendor)
		if coupon.VendorID == nil || *coupon.VendorID != vendor.ID {
			utils.Forbidden(c, "You can only deactivate your own coupons")
			return
		}
	}

	if err := config.DB.Model(&coupon).Update("is_active", false).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate coupon", nil)
		return
	}

	utils.Success(c, "Coupon deactivated", nil)
}
