package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
	"gorm.io/gorm"
)

// AdvertisementRequest holds the create/update payload for an ad
type AdvertisementRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" binding:"required"`
	ClickURL    string `json:"click_url" binding:"required"`
	Placement   string `json:"placement" binding:"required,oneof=banner sidebar popup inline"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
}

// ListActiveAds serves the ads live for a placement and records an
// impression for each
func ListActiveAds(c *gin.Context) {
	now := time.Now()
	query := config.DB.Model(&models.Advertisement{}).
		Where("status = ? AND start_date <= ? AND end_date >= ?", models.AdStatusActive, now, now)
	if placement := c.Query("placement"); placement != "" {
		query = query.Where("placement = ?", placement)
	}

	var ads []models.Advertisement
	if err := query.Order("created_at DESC").Find(&ads).Error; err != nil {
		utils.InternalServerError(c, "Failed to load advertisements", nil)
		return
	}

	ip := c.ClientIP()
	for _, ad := range ads {
		config.DB.Model(&models.Advertisement{}).Where("id = ?", ad.ID).
			UpdateColumn("impressions", gorm.Expr("impressions + 1"))
		config.DB.Create(&models.AdImpression{
			AdvertisementID: ad.ID,
			IPAddress:       ip,
		})
	}

	utils.Success(c, "Advertisements retrieved", gin.H{"advertisements": ads})
}

// TrackAdClick records a click and returns the destination URL
func TrackAdClick(c *gin.Context) {
	var ad models.Advertisement
	if err := config.DB.Where("id = ?", c.Param("id")).First(&ad).Error; err != nil {
		utils.NotFound(c, "Advertisement not found")
		return
	}

	config.DB.Model(&ad).UpdateColumn("clicks", gorm.Expr("clicks + 1"))
	config.DB.Create(&models.AdClick{
		AdvertisementID: ad.ID,
		IPAddress:       c.ClientIP(),
		UserAgent:       c.Request.UserAgent(),
	})

	utils.Success(c, "Click recorded", gin.H{"click_url": ad.ClickURL})
}

// CreateAdvertisement creates an ad in draft status (admin only)
func CreateAdvertisement(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req AdvertisementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid advertisement data", err.Error())
		return
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		utils.BadRequest(c, "Invalid start_date, expected RFC3339", nil)
		return
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		utils.BadRequest(c, "Invalid end_date, expected RFC3339", nil)
		return
	}
	if !endDate.After(startDate) {
		utils.BadRequest(c, "end_date must be after start_date", nil)
		return
	}

	ad := models.Advertisement{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ClickURL:    req.ClickURL,
		Placement:   req.Placement,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      models.AdStatusDraft,
		CreatedBy:   user.ID,
	}
	if err := config.DB.Create(&ad).Error; err != nil {
		utils.InternalServerError(c, "Failed to create advertisement", nil)
		return
	}

	utils.Created(c, "Advertisement created", gin.H{"advertisement": ad})
}

// UpdateAdvertisementStatus activates, pauses or expires an ad (admin only)
func UpdateAdvertisementStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=active paused expired draft"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid status", err.Error())
		return
	}

	var ad models.Advertisement
	if err := config.DB.Where("id = ?", c.Param("id")).First(&ad).Error; err != nil {
		utils.NotFound(c, "Advertisement not found")
		return
	}

	if err := config.DB.Model(&ad).Update("status", req.Status).Error; err != nil {
		utils.InternalServerError(c, "Failed to update advertisement", nil)
		return
	}

	utils.Success(c, "Advertisement status updated", gin.H{"status": req.Status})
}

// ListAdvertisements returns all ads with performance stats (admin only)
func ListAdvertisements(c *gin.Context) {
	var ads []models.Advertisement
	if err := config.DB.Order("created_at DESC").Find(&ads).Error; err != nil {
		utils.InternalServerError(c, "Failed to load advertisements", nil)
		return
	}

	result := make([]gin.H, 0, len(ads))
	for _, ad := range ads {
		result = append(result, gin.H{
			"advertisement": ad,
			"ctr":           ad.CTR(),
		})
	}
	utils.Success(c, "Advertisements retrieved", gin.H{"advertisements": result})
}
