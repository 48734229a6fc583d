package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds a customer's funds. CurrentBalance is spendable money,
// HeldAmount is money locked against in-flight orders. The two never go
// negative and every mutation appends a WalletTransaction.
type Wallet struct {
	gorm.Model
	UserID         uint    `json:"user_id" gorm:"uniqueIndex"`
	CurrentBalance float64 `json:"current_balance" gorm:"default:0"`
	TotalRecharged float64 `json:"total_recharged" gorm:"default:0"`
	TotalSpent     float64 `json:"total_spent" gorm:"default:0"`
	HeldAmount     float64 `json:"held_amount" gorm:"default:0"`
	IsActive       bool    `json:"is_active" gorm:"default:true"`
}

// Transaction types
const (
	TransactionTypeRecharge = "recharge"
	TransactionTypeHold     = "hold"
	TransactionTypeDeduct   = "deduct"
	TransactionTypeRelease  = "release"
	TransactionTypeRefund   = "refund"
)

// Transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
)

// WalletTransaction is a ledger entry for a single balance-affecting
// operation. Once status reaches completed or failed the row is never
// edited; corrections are written as new offsetting entries.
type WalletTransaction struct {
	gorm.Model
	WalletID          uint       `json:"wallet_id" gorm:"index"`
	Wallet            Wallet     `json:"-" gorm:"foreignKey:WalletID"`
	TransactionType   string     `json:"transaction_type"`
	Amount            float64    `json:"amount"`
	OrderID           *uint      `json:"order_id" gorm:"index"`
	PaymentGatewayRef string     `json:"payment_gateway_ref" gorm:"index"`
	Status            string     `json:"status" gorm:"default:'pending'"`
	Description       string     `json:"description"`
	BalanceBefore     float64    `json:"balance_before"`
	BalanceAfter      float64    `json:"balance_after"`
	ProcessedAt       *time.Time `json:"processed_at"`
}
