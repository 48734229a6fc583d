package models

import (
	"time"

	"gorm.io/gorm"
)

// KYC statuses
const (
	KYCStatusPending  = "pending"
	KYCStatusApproved = "approved"
	KYCStatusRejected = "rejected"
)

// Vendor is the seller profile attached to a user account. A vendor can
// list products and receive orders only after KYC approval.
type Vendor struct {
	gorm.Model
	UserID             uint     `json:"user_id" gorm:"uniqueIndex"`
	User               User     `json:"user" gorm:"foreignKey:UserID"`
	StoreName          string   `json:"store_name" gorm:"uniqueIndex"`
	StoreLogo          string   `json:"store_logo"`
	BusinessEmail      string   `json:"business_email"`
	BusinessPhone      string   `json:"business_phone"`
	StoreDescription   string   `json:"store_description"`
	StoreAddress       string   `json:"store_address"`
	KYCStatus          string   `json:"kyc_status" gorm:"default:'pending'"`
	KYCRejectionReason string   `json:"kyc_rejection_reason"`
	IsActive           bool     `json:"is_active" gorm:"default:true"`
	CommissionRate     *float64 `json:"commission_rate"` // nil falls back to the global rate
}

// CanSell reports whether the vendor may list products and take orders.
func (v *Vendor) CanSell() bool {
	return v.KYCStatus == KYCStatusApproved && v.IsActive
}

// VendorKYC holds the submitted verification documents for a vendor.
type VendorKYC struct {
	gorm.Model
	VendorID          uint       `json:"vendor_id" gorm:"uniqueIndex"`
	PANDocument       string     `json:"pan_document"`
	GSTINDocument     string     `json:"gstin_document"`
	BankAccountNumber string     `json:"bank_account_number"`
	BankIFSC          string     `json:"bank_ifsc"`
	BankAccountHolder string     `json:"bank_account_holder"`
	VerifiedBy        *uint      `json:"verified_by"`
	VerifiedAt        *time.Time `json:"verified_at"`
	RejectionReason   string     `json:"rejection_reason"`
}
