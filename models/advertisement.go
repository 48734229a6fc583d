package models

import (
	"time"

	"gorm.io/gorm"
)

// Ad placements
const (
	AdPlacementBanner  = "banner"
	AdPlacementSidebar = "sidebar"
	AdPlacementPopup   = "popup"
	AdPlacementInline  = "inline"
)

// Ad statuses
const (
	AdStatusActive  = "active"
	AdStatusPaused  = "paused"
	AdStatusExpired = "expired"
	AdStatusDraft   = "draft"
)

// Advertisement is a paid placement shown on the storefront
type Advertisement struct {
	gorm.Model
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	ClickURL    string    `json:"click_url"`
	Placement   string    `json:"placement" gorm:"default:'banner'"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status" gorm:"default:'draft'"`
	Impressions int64     `json:"impressions" gorm:"default:0"`
	Clicks      int64     `json:"clicks" gorm:"default:0"`
	CreatedBy   uint      `json:"created_by"`
}

// IsLive reports whether the ad should currently be served.
func (a *Advertisement) IsLive(now time.Time) bool {
	return a.Status == AdStatusActive && !now.Before(a.StartDate) && !now.After(a.EndDate)
}

// CTR returns the click-through rate as a percentage.
func (a *Advertisement) CTR() float64 {
	if a.Impressions == 0 {
		return 0
	}
	return float64(a.Clicks) / float64(a.Impressions) * 100
}

// AdClick records one click on an advertisement
type AdClick struct {
	gorm.Model
	AdvertisementID uint   `json:"advertisement_id" gorm:"index"`
	UserID          *uint  `json:"user_id"`
	IPAddress       string `json:"ip_address"`
	UserAgent       string `json:"user_agent"`
}

// AdImpression records one view of an advertisement
type AdImpression struct {
	gorm.Model
	AdvertisementID uint   `json:"advertisement_id" gorm:"index"`
	UserID          *uint  `json:"user_id"`
	IPAddress       string `json:"ip_address"`
}
