package models

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Coupon{}, &CouponUsage{}))
	return db
}

func validCoupon() Coupon {
	return Coupon{
		Code:          "SCRAP10",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: 10,
		UserLimit:     1,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		IsActive:      true,
	}
}

func TestCalculateDiscountPercentage(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 10}
	assert.Equal(t, 50.0, c.CalculateDiscount(500))
}

func TestCalculateDiscountPercentageCapped(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 20, MaxDiscount: 75}
	assert.Equal(t, 75.0, c.CalculateDiscount(1000))
}

func TestCalculateDiscountPercentageUncapped(t *testing.T) {
	// MaxDiscount of zero means no cap
	c := Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 20}
	assert.Equal(t, 200.0, c.CalculateDiscount(1000))
}

func TestCalculateDiscountFixed(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypeFixed, DiscountValue: 50}
	assert.Equal(t, 50.0, c.CalculateDiscount(500))
}

func TestCalculateDiscountNeverExceedsOrderAmount(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypeFixed, DiscountValue: 500}
	assert.Equal(t, 120.0, c.CalculateDiscount(120))
}

func TestCalculateDiscountNeverNegative(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypeFixed, DiscountValue: -10}
	assert.Equal(t, 0.0, c.CalculateDiscount(100))
}

func TestIsValid(t *testing.T) {
	now := time.Now()

	c := validCoupon()
	assert.True(t, c.IsValid(now))

	inactive := validCoupon()
	inactive.IsActive = false
	assert.False(t, inactive.IsValid(now))

	notStarted := validCoupon()
	notStarted.ValidFrom = now.Add(time.Hour)
	notStarted.ValidUntil = now.Add(2 * time.Hour)
	assert.False(t, notStarted.IsValid(now))

	expired := validCoupon()
	expired.ValidFrom = now.Add(-2 * time.Hour)
	expired.ValidUntil = now.Add(-time.Hour)
	assert.False(t, expired.IsValid(now))

	exhausted := validCoupon()
	exhausted.UsageLimit = 5
	exhausted.UsedCount = 5
	assert.False(t, exhausted.IsValid(now))

	unlimited := validCoupon()
	unlimited.UsageLimit = 0
	unlimited.UsedCount = 10000
	assert.True(t, unlimited.IsValid(now))
}

func TestCanUseMinOrderAmount(t *testing.T) {
	db := newTestDB(t)

	c := validCoupon()
	c.MinOrderAmount = 500
	require.NoError(t, db.Create(&c).Error)

	ok, reason := c.CanUse(db, 1, 300)
	assert.False(t, ok)
	assert.Contains(t, reason, "Minimum order amount")

	ok, _ = c.CanUse(db, 1, 500)
	assert.True(t, ok)
}

func TestCanUsePerUserLimit(t *testing.T) {
	db := newTestDB(t)

	c := validCoupon()
	require.NoError(t, db.Create(&c).Error)

	ok, _ := c.CanUse(db, 7, 100)
	assert.True(t, ok)

	usage := CouponUsage{CouponID: c.ID, UserID: 7, OrderID: 1, DiscountAmount: 10}
	require.NoError(t, db.Create(&usage).Error)

	ok, reason := c.CanUse(db, 7, 100)
	assert.False(t, ok)
	assert.Contains(t, reason, "already used")

	// Another user is unaffected
	ok, _ = c.CanUse(db, 8, 100)
	assert.True(t, ok)
}

func TestCanUseUnlimitedUserLimit(t *testing.T) {
	db := newTestDB(t)

	// Zero means unlimited, matching the overall usage limit convention.
	c := validCoupon()
	require.NoError(t, db.Create(&c).Error)
	require.NoError(t, db.Model(&c).Update("user_limit", 0).Error)
	c.UserLimit = 0

	for order := uint(1); order <= 3; order++ {
		usage := CouponUsage{CouponID: c.ID, UserID: 7, OrderID: order, DiscountAmount: 10}
		require.NoError(t, db.Create(&usage).Error)
	}

	ok, _ := c.CanUse(db, 7, 100)
	assert.True(t, ok, "zero user limit must not block reuse")
}

func TestCouponUsageUniquePerOrder(t *testing.T) {
	db := newTestDB(t)

	c := validCoupon()
	c.UserLimit = 5
	require.NoError(t, db.Create(&c).Error)

	first := CouponUsage{CouponID: c.ID, UserID: 7, OrderID: 99, DiscountAmount: 10}
	require.NoError(t, db.Create(&first).Error)

	duplicate := CouponUsage{CouponID: c.ID, UserID: 7, OrderID: 99, DiscountAmount: 10}
	assert.Error(t, db.Create(&duplicate).Error, "one usage row per coupon and order")
}
