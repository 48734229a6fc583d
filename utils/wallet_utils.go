package utils

import (
	"fmt"
	"time"

	"github.com/kabaadwala/marketplace/models"
	"gorm.io/gorm"
)

// Wallet escrow helpers. Every balance mutation here is a guarded UPDATE
// (the WHERE clause re-checks the invariant) executed inside the caller's
// transaction, and appends exactly one ledger entry recording the balance
// before and after. Two concurrent holds against the same wallet cannot
// jointly overdraw it: the guarded update is the serialization point.

// GetOrCreateWallet retrieves or creates the wallet for a user
func GetOrCreateWallet(db *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		wallet = models.Wallet{UserID: userID}
		if err := db.Create(&wallet).Error; err != nil {
			return nil, err
		}
	}
	return &wallet, nil
}

// HoldOrderAmount moves amount from spendable balance to held, in lock-step
// with order placement. Fails with ErrInsufficientBalance when the wallet
// cannot cover the amount at the moment of the update.
func HoldOrderAmount(tx *gorm.DB, wallet *models.Wallet, order *models.Order) (*models.WalletTransaction, error) {
	if !wallet.IsActive {
		return nil, ErrWalletInactive
	}
	amount := order.TotalAmount

	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND current_balance >= ?", wallet.ID, amount).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance - ?", amount),
			"held_amount":     gorm.Expr("held_amount + ?", amount),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientBalance
	}

	if err := tx.First(wallet, wallet.ID).Error; err != nil {
		return nil, err
	}

	return appendLedgerEntry(tx, wallet, models.TransactionTypeHold, amount, &order.ID,
		fmt.Sprintf("Payment held for order #%s", order.OrderNumber),
		wallet.CurrentBalance+amount, wallet.CurrentBalance)
}

// CompleteOrderDeduct moves the held amount for a delivered order into
// total spent. Idempotent per order: a repeated or concurrent call is
// refused with ErrDuplicateUsage, either by the settled-entry check or by
// losing the order-row claim.
func CompleteOrderDeduct(tx *gorm.DB, wallet *models.Wallet, order *models.Order) (*models.WalletTransaction, error) {
	settled, err := orderAlreadySettled(tx, wallet.ID, order.ID)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, ErrDuplicateUsage
	}

	hold, err := findCompletedHold(tx, wallet.ID, order.ID)
	if err != nil {
		return nil, err
	}
	amount := hold.Amount

	if err := claimOrderEscrow(tx, order.ID); err != nil {
		return nil, err
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND held_amount >= ?", wallet.ID, amount).
		Updates(map[string]interface{}{
			"held_amount": gorm.Expr("held_amount - ?", amount),
			"total_spent": gorm.Expr("total_spent + ?", amount),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// A completed hold exists but the held funds are gone: another
		// operation on the same order won the race.
		return nil, ErrConcurrencyConflict
	}

	if err := tx.First(wallet, wallet.ID).Error; err != nil {
		return nil, err
	}

	// Held funds never pass through the spendable balance, so the deduct
	// entry records an unchanged balance.
	return appendLedgerEntry(tx, wallet, models.TransactionTypeDeduct, amount, &order.ID,
		fmt.Sprintf("Payment for order #%s", order.OrderNumber),
		wallet.CurrentBalance, wallet.CurrentBalance)
}

// RefundOrderHold returns the held amount for a cancelled order to the
// spendable balance and appends a refund entry. Like the deduct path it
// settles an order at most once: a second refund would otherwise pay out
// with money held for other orders.
func RefundOrderHold(tx *gorm.DB, wallet *models.Wallet, order *models.Order) (*models.WalletTransaction, error) {
	settled, err := orderAlreadySettled(tx, wallet.ID, order.ID)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, ErrDuplicateUsage
	}

	hold, err := findCompletedHold(tx, wallet.ID, order.ID)
	if err != nil {
		return nil, err
	}
	amount := hold.Amount

	if err := claimOrderEscrow(tx, order.ID); err != nil {
		return nil, err
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND held_amount >= ?", wallet.ID, amount).
		Updates(map[string]interface{}{
			"held_amount":     gorm.Expr("held_amount - ?", amount),
			"current_balance": gorm.Expr("current_balance + ?", amount),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConcurrencyConflict
	}

	if err := tx.First(wallet, wallet.ID).Error; err != nil {
		return nil, err
	}

	return appendLedgerEntry(tx, wallet, models.TransactionTypeRefund, amount, &order.ID,
		fmt.Sprintf("Refund for cancelled order #%s", order.OrderNumber),
		wallet.CurrentBalance-amount, wallet.CurrentBalance)
}

// CompleteRecharge finalizes a pending gateway recharge. The guarded status
// flip makes it idempotent: a repeated callback for the same transaction
// finds no pending row and gets ErrDuplicateUsage.
func CompleteRecharge(tx *gorm.DB, txn *models.WalletTransaction, paymentRef string) (*models.Wallet, error) {
	res := tx.Model(&models.WalletTransaction{}).
		Where("id = ? AND status = ?", txn.ID, models.TransactionStatusPending).
		Update("status", models.TransactionStatusCompleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateUsage
	}

	res = tx.Model(&models.Wallet{}).
		Where("id = ?", txn.WalletID).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance + ?", txn.Amount),
			"total_recharged": gorm.Expr("total_recharged + ?", txn.Amount),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var wallet models.Wallet
	if err := tx.First(&wallet, txn.WalletID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	err := tx.Model(&models.WalletTransaction{}).
		Where("id = ?", txn.ID).
		Updates(map[string]interface{}{
			"balance_before":      wallet.CurrentBalance - txn.Amount,
			"balance_after":       wallet.CurrentBalance,
			"payment_gateway_ref": paymentRef,
			"processed_at":        &now,
		}).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// FailRecharge marks a pending recharge as failed. Completed entries are
// never touched.
func FailRecharge(db *gorm.DB, txnID uint, reason string) error {
	return db.Model(&models.WalletTransaction{}).
		Where("id = ? AND status = ?", txnID, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":      models.TransactionStatusFailed,
			"description": gorm.Expr("description || ?", " - Failed: "+reason),
		}).Error
}

// orderAlreadySettled reports whether a completed deduct or refund entry
// exists for the order. An order is settled at most once.
func orderAlreadySettled(tx *gorm.DB, walletID, orderID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND order_id = ? AND transaction_type IN ? AND status = ?",
			walletID, orderID,
			[]string{models.TransactionTypeDeduct, models.TransactionTypeRefund},
			models.TransactionStatusCompleted).
		Count(&n).Error
	return n > 0, err
}

// claimOrderEscrow flips the order's escrow to released with a guarded
// update. The order row is the serialization point for settlement:
// whichever transaction wins the flip moves the funds, and any concurrent
// or repeated settlement finds the escrow already released.
func claimOrderEscrow(tx *gorm.DB, orderID uint) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND escrow_status IN ?", orderID,
			[]string{models.EscrowStatusHeld, models.EscrowStatusDisputed}).
		Update("escrow_status", models.EscrowStatusReleased)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicateUsage
	}
	return nil
}

func findCompletedHold(tx *gorm.DB, walletID, orderID uint) (*models.WalletTransaction, error) {
	var hold models.WalletTransaction
	err := tx.Where("wallet_id = ? AND order_id = ? AND transaction_type = ? AND status = ?",
		walletID, orderID, models.TransactionTypeHold, models.TransactionStatusCompleted).
		First(&hold).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return &hold, nil
}

func appendLedgerEntry(tx *gorm.DB, wallet *models.Wallet, txnType string, amount float64, orderID *uint, description string, before, after float64) (*models.WalletTransaction, error) {
	now := time.Now()
	entry := models.WalletTransaction{
		WalletID:        wallet.ID,
		TransactionType: txnType,
		Amount:          amount,
		OrderID:         orderID,
		Status:          models.TransactionStatusCompleted,
		Description:     description,
		BalanceBefore:   before,
		BalanceAfter:    after,
		ProcessedAt:     &now,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
