package models

import (
	"time"

	"gorm.io/gorm"
)

// Account roles. Resolved once at authentication time and carried on the user
// record instead of being inferred from related profiles.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// User represents an account in the marketplace
type User struct {
	gorm.Model
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Password     string    `json:"-"`
	FullName     string    `json:"full_name"`
	MobileNumber string    `json:"mobile_number"`
	ProfilePhoto string    `json:"profile_photo"`
	Role         string    `json:"role" gorm:"default:'customer'"`
	IsVerified   bool      `json:"is_verified" gorm:"default:false"`
	IsBanned     bool      `json:"is_banned" gorm:"default:false"`
	OTP          string    `json:"-"`
	OTPExpiry    time.Time `json:"-"`
	LastLoginAt  time.Time `json:"last_login_at"`
	GoogleID     string    `gorm:"default:null" json:"-"`

	Wallet Wallet `json:"wallet,omitempty" gorm:"foreignKey:UserID"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsVendor reports whether the user holds the vendor role.
func (u *User) IsVendor() bool {
	return u.Role == RoleVendor
}

// Notification types
const (
	NotificationTypeOrder   = "order"
	NotificationTypePayment = "payment"
	NotificationTypeChat    = "chat"
	NotificationTypeSystem  = "system"
	NotificationTypeVendor  = "vendor"
	NotificationTypeAdmin   = "admin"
)

// Notification represents an in-app notification for a user
type Notification struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"index"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type" gorm:"default:'system'"`
	IsRead  bool   `json:"is_read" gorm:"default:false"`
	Data    string `json:"data,omitempty"`
}

// Address represents a delivery address for a user
type Address struct {
	gorm.Model
	UserID        uint   `json:"user_id" gorm:"index"`
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	AddressType   string `json:"address_type" gorm:"default:'home'"`
	IsDefault     bool   `json:"is_default" gorm:"default:false"`
}
