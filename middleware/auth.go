package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// AuthMiddleware validates the JWT and loads the authenticated user
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.Unauthorized(c, "Invalid authorization format")
			c.Abort()
			return
		}

		userID, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.LogDebug("Token validation failed: %v", err)
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		var user models.User
		if err := config.DB.First(&user, userID).Error; err != nil {
			utils.Unauthorized(c, "User not found")
			c.Abort()
			return
		}

		if user.IsBanned {
			utils.Forbidden(c, "Your account has been suspended")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// AdminMiddleware allows only admin users. Must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			utils.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		u := user.(models.User)
		if !u.IsAdmin() {
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// VendorMiddleware allows only vendor users with an approved profile.
// Loads the vendor record into the context for downstream handlers.
func VendorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			utils.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		u := user.(models.User)
		if !u.IsVendor() {
			utils.Forbidden(c, "Vendor access required")
			c.Abort()
			return
		}

		var vendor models.Vendor
		if err := config.DB.Where("user_id = ?", u.ID).First(&vendor).Error; err != nil {
			utils.Forbidden(c, "Vendor profile not found")
			c.Abort()
			return
		}

		c.Set("vendor", vendor)
		c.Next()
	}
}

// ApprovedVendorMiddleware additionally requires the vendor's KYC to be
// approved before they can sell. Must run after VendorMiddleware.
func ApprovedVendorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, exists := c.Get("vendor")
		if !exists {
			utils.Unauthorized(c, "Vendor authentication required")
			c.Abort()
			return
		}

		v := vendor.(models.Vendor)
		if !v.CanSell() {
			utils.Forbidden(c, "Vendor KYC approval pending")
			c.Abort()
			return
		}

		c.Next()
	}
}
