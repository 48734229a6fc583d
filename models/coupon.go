package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Coupon scopes
const (
	CouponScopeGlobal = "global"
	CouponScopeVendor = "vendor"
)

// Coupon defines a discount. Vendor-scoped coupons only apply to orders for
// that vendor; global coupons are created by admins.
type Coupon struct {
	gorm.Model
	Code           string    `gorm:"uniqueIndex" json:"code"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  float64   `json:"discount_value"`
	MaxDiscount    float64   `json:"max_discount"` // 0 means uncapped
	MinOrderAmount float64   `json:"min_order_amount"`
	Scope          string    `json:"scope" gorm:"default:'global'"`
	VendorID       *uint     `json:"vendor_id"`
	CreatedBy      uint      `json:"created_by"`
	UsageLimit     int       `json:"usage_limit"` // 0 means unlimited
	UsedCount      int       `json:"used_count"`
	UserLimit      int       `json:"user_limit" gorm:"default:1"` // 0 means unlimited
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
}

// IsValid reports whether the coupon is active, within its validity window
// and under its overall usage limit.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// CanUse checks whether a user may apply this coupon to an order of the
// given amount. It is a read-only check; recording usage happens later,
// inside the order placement transaction.
func (c *Coupon) CanUse(db *gorm.DB, userID uint, orderAmount float64) (bool, string) {
	if !c.IsValid(time.Now()) {
		return false, "Coupon is not valid"
	}
	if orderAmount < c.MinOrderAmount {
		return false, fmt.Sprintf("Minimum order amount is %.2f", c.MinOrderAmount)
	}
	var used int64
	if err := db.Model(&CouponUsage{}).Where("coupon_id = ? AND user_id = ?", c.ID, userID).Count(&used).Error; err != nil {
		return false, "Unable to check coupon usage"
	}
	if c.UserLimit > 0 && used >= int64(c.UserLimit) {
		return false, "You have already used this coupon"
	}
	return true, "Valid"
}

// CalculateDiscount computes the discount for an order amount. The result
// never exceeds the order amount, so the net payable cannot go negative.
func (c *Coupon) CalculateDiscount(orderAmount float64) float64 {
	var discount float64
	if c.DiscountType == DiscountTypePercentage {
		discount = orderAmount * c.DiscountValue / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	} else {
		discount = c.DiscountValue
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CouponUsage links a coupon, user and order. One row per order enforces
// single use per order; counting rows per user enforces the user limit.
type CouponUsage struct {
	gorm.Model
	CouponID       uint    `json:"coupon_id" gorm:"index;uniqueIndex:idx_coupon_order"`
	UserID         uint    `json:"user_id" gorm:"index"`
	OrderID        uint    `json:"order_id" gorm:"uniqueIndex:idx_coupon_order"`
	DiscountAmount float64 `json:"discount_amount"`
}
