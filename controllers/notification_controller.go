package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// ListNotifications returns the user's notifications, newest first
func ListNotifications(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var notifications []models.Notification
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&notifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to load notifications", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Notifications retrieved", notifications, pagination)
}

// MarkNotificationRead marks one notification as read
func MarkNotificationRead(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	res := config.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Update("is_read", true)
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to update notification", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Notification not found")
		return
	}

	utils.Success(c, "Notification marked as read", nil)
}

// MarkAllNotificationsRead marks all of the user's notifications as read
func MarkAllNotificationsRead(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to update notifications", nil)
		return
	}

	utils.Success(c, "All notifications marked as read", nil)
}

// AddressRequest holds the create payload for a delivery address
type AddressRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	PhoneNumber   string `json:"phone_number" binding:"required"`
	StreetAddress string `json:"street_address" binding:"required"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
	AddressType   string `json:"address_type"`
	IsDefault     bool   `json:"is_default"`
}

// ListAddresses returns the user's saved delivery addresses
func ListAddresses(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var addresses []models.Address
	if err := config.DB.Where("user_id = ?", user.ID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error; err != nil {
		utils.InternalServerError(c, "Failed to load addresses", nil)
		return
	}

	utils.Success(c, "Addresses retrieved", gin.H{"addresses": addresses})
}

// AddAddress saves a new delivery address
func AddAddress(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid address data", err.Error())
		return
	}

	addressType := req.AddressType
	if addressType == "" {
		addressType = "home"
	}

	tx := config.DB.Begin()
	if req.IsDefault {
		tx.Model(&models.Address{}).Where("user_id = ?", user.ID).Update("is_default", false)
	}

	address := models.Address{
		UserID:        user.ID,
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		AddressType:   addressType,
		IsDefault:     req.IsDefault,
	}
	if err := tx.Create(&address).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to save address", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to save address", nil)
		return
	}

	utils.Created(c, "Address saved", gin.H{"address": address})
}

// DeleteAddress removes one of the user's addresses
func DeleteAddress(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	res := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).Delete(&models.Address{})
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to delete address", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Address not found")
		return
	}

	utils.Success(c, "Address deleted", nil)
}
