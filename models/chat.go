package models

import (
	"gorm.io/gorm"
)

// Moderation violation types
const (
	ViolationContactSharing  = "contact_sharing"
	ViolationExternalPayment = "external_payment"
	ViolationEscrowBypass    = "escrow_bypass"
)

// ChatRoom connects a customer and a vendor, optionally about a product.
type ChatRoom struct {
	gorm.Model
	CustomerID uint     `json:"customer_id" gorm:"index;uniqueIndex:idx_room_pair"`
	VendorID   uint     `json:"vendor_id" gorm:"index;uniqueIndex:idx_room_pair"`
	ProductID  *uint    `json:"product_id"`
	IsActive   bool     `json:"is_active" gorm:"default:true"`
	Customer   User     `json:"customer" gorm:"foreignKey:CustomerID"`
	Vendor     Vendor   `json:"vendor" gorm:"foreignKey:VendorID"`
	Messages   []ChatMessage `json:"messages,omitempty" gorm:"foreignKey:RoomID"`
}

// ChatMessage is a single message in a room. Messages that trip the
// moderation filter are flagged but still stored.
type ChatMessage struct {
	gorm.Model
	RoomID        uint   `json:"room_id" gorm:"index"`
	SenderID      uint   `json:"sender_id"`
	Sender        User   `json:"sender" gorm:"foreignKey:SenderID"`
	Content       string `json:"content"`
	IsRead        bool   `json:"is_read" gorm:"default:false"`
	IsFlagged     bool   `json:"is_flagged" gorm:"default:false"`
	FlaggedReason string `json:"flagged_reason,omitempty"`
}

// ChatModeration records one detected policy violation on a message.
type ChatModeration struct {
	gorm.Model
	MessageID       uint   `json:"message_id" gorm:"index"`
	ViolationType   string `json:"violation_type"`
	DetectedContent string `json:"detected_content"`
	Reviewed        bool   `json:"reviewed" gorm:"default:false"`
}
