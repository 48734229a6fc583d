package utils

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// A single connection serializes transactions, which keeps the
	// concurrency tests deterministic.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func seedWallet(t *testing.T, db *gorm.DB, balance float64) *models.Wallet {
	t.Helper()

	user := models.User{Username: "payer", Email: "payer@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	wallet := models.Wallet{UserID: user.ID, CurrentBalance: balance, IsActive: true}
	require.NoError(t, db.Create(&wallet).Error)
	return &wallet
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, amount float64) *models.Order {
	t.Helper()

	order := models.Order{
		OrderNumber: models.NewOrderNumber(),
		UserID:      userID,
		VendorID:    1,
		Subtotal:    amount,
		TotalAmount: amount,
		OrderStatus: models.OrderStatusPlaced,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func TestGetOrCreateWallet(t *testing.T) {
	db := newTestDB(t)

	first, err := GetOrCreateWallet(db, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), first.UserID)
	assert.Equal(t, 0.0, first.CurrentBalance)
	assert.True(t, first.IsActive)

	second, err := GetOrCreateWallet(db, 42)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestHoldOrderAmount(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 500)
	order := seedOrder(t, db, wallet.UserID, 300)

	entry, err := HoldOrderAmount(db, wallet, order)
	require.NoError(t, err)

	assert.Equal(t, 200.0, wallet.CurrentBalance)
	assert.Equal(t, 300.0, wallet.HeldAmount)

	assert.Equal(t, models.TransactionTypeHold, entry.TransactionType)
	assert.Equal(t, models.TransactionStatusCompleted, entry.Status)
	assert.Equal(t, 300.0, entry.Amount)
	assert.Equal(t, 500.0, entry.BalanceBefore)
	assert.Equal(t, 200.0, entry.BalanceAfter)
	require.NotNil(t, entry.OrderID)
	assert.Equal(t, order.ID, *entry.OrderID)
	assert.NotNil(t, entry.ProcessedAt)
}

func TestHoldOrderAmountInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 100)
	order := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, order)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 100.0, reloaded.CurrentBalance)
	assert.Equal(t, 0.0, reloaded.HeldAmount)

	var count int64
	db.Model(&models.WalletTransaction{}).Count(&count)
	assert.Equal(t, int64(0), count, "a failed hold must not write a ledger entry")
}

func TestHoldOrderAmountInactiveWallet(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 500)
	require.NoError(t, db.Model(wallet).Update("is_active", false).Error)
	wallet.IsActive = false
	order := seedOrder(t, db, wallet.UserID, 100)

	_, err := HoldOrderAmount(db, wallet, order)
	assert.ErrorIs(t, err, ErrWalletInactive)
}

func TestCompleteOrderDeduct(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 500)
	order := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, order)
	require.NoError(t, err)

	entry, err := CompleteOrderDeduct(db, wallet, order)
	require.NoError(t, err)

	assert.Equal(t, 200.0, wallet.CurrentBalance)
	assert.Equal(t, 0.0, wallet.HeldAmount)
	assert.Equal(t, 300.0, wallet.TotalSpent)

	// Held money never re-enters the spendable balance, so the deduct
	// entry records no balance change.
	assert.Equal(t, models.TransactionTypeDeduct, entry.TransactionType)
	assert.Equal(t, entry.BalanceBefore, entry.BalanceAfter)
	assert.Equal(t, 200.0, entry.BalanceAfter)
}

func TestCompleteOrderDeductIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 500)
	order := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, order)
	require.NoError(t, err)
	_, err = CompleteOrderDeduct(db, wallet, order)
	require.NoError(t, err)

	_, err = CompleteOrderDeduct(db, wallet, order)
	assert.ErrorIs(t, err, ErrDuplicateUsage)

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 300.0, reloaded.TotalSpent, "a repeated settle must not deduct twice")
}

func TestCompleteOrderDeductWithoutHold(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 500)
	order := seedOrder(t, db, wallet.UserID, 300)

	_, err := CompleteOrderDeduct(db, wallet, order)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestRefundOrderHold(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 500)
	order := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, order)
	require.NoError(t, err)

	entry, err := RefundOrderHold(db, wallet, order)
	require.NoError(t, err)

	assert.Equal(t, 500.0, wallet.CurrentBalance)
	assert.Equal(t, 0.0, wallet.HeldAmount)
	assert.Equal(t, 0.0, wallet.TotalSpent)

	assert.Equal(t, models.TransactionTypeRefund, entry.TransactionType)
	assert.Equal(t, 200.0, entry.BalanceBefore)
	assert.Equal(t, 500.0, entry.BalanceAfter)
}

func TestRefundOrderHoldWithoutHold(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 500)
	order := seedOrder(t, db, wallet.UserID, 300)

	_, err := RefundOrderHold(db, wallet, order)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCompleteRecharge(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 100)

	txn := models.WalletTransaction{
		WalletID:        wallet.ID,
		TransactionType: models.TransactionTypeRecharge,
		Amount:          250,
		Status:          models.TransactionStatusPending,
	}
	require.NoError(t, db.Create(&txn).Error)

	updated, err := CompleteRecharge(db, &txn, "pay_abc123")
	require.NoError(t, err)
	assert.Equal(t, 350.0, updated.CurrentBalance)
	assert.Equal(t, 250.0, updated.TotalRecharged)

	var reloaded models.WalletTransaction
	require.NoError(t, db.First(&reloaded, txn.ID).Error)
	assert.Equal(t, models.TransactionStatusCompleted, reloaded.Status)
	assert.Equal(t, 100.0, reloaded.BalanceBefore)
	assert.Equal(t, 350.0, reloaded.BalanceAfter)
	assert.Equal(t, "pay_abc123", reloaded.PaymentGatewayRef)
	assert.NotNil(t, reloaded.ProcessedAt)
}

func TestCompleteRechargeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 0)

	txn := models.WalletTransaction{
		WalletID:        wallet.ID,
		TransactionType: models.TransactionTypeRecharge,
		Amount:          250,
		Status:          models.TransactionStatusPending,
	}
	require.NoError(t, db.Create(&txn).Error)

	_, err := CompleteRecharge(db, &txn, "pay_abc123")
	require.NoError(t, err)

	_, err = CompleteRecharge(db, &txn, "pay_abc123")
	assert.ErrorIs(t, err, ErrDuplicateUsage)

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 250.0, reloaded.CurrentBalance, "a replayed callback must not credit twice")
}

func TestFailRecharge(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 0)

	txn := models.WalletTransaction{
		WalletID:        wallet.ID,
		TransactionType: models.TransactionTypeRecharge,
		Amount:          250,
		Status:          models.TransactionStatusPending,
		Description:     "Wallet recharge of 250.00",
	}
	require.NoError(t, db.Create(&txn).Error)

	require.NoError(t, FailRecharge(db, txn.ID, "signature verification failed"))

	var reloaded models.WalletTransaction
	require.NoError(t, db.First(&reloaded, txn.ID).Error)
	assert.Equal(t, models.TransactionStatusFailed, reloaded.Status)
	assert.Contains(t, reloaded.Description, "signature verification failed")

	// Already-failed entries stay failed
	require.NoError(t, FailRecharge(db, txn.ID, "second attempt"))
	require.NoError(t, db.First(&reloaded, txn.ID).Error)
	assert.NotContains(t, reloaded.Description, "second attempt")
}

func TestConcurrentHoldsCannotOverdraw(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 400)

	orderA := seedOrder(t, db, wallet.UserID, 300)
	orderB := seedOrder(t, db, wallet.UserID, 300)

	hold := func(order *models.Order, result chan<- error) {
		tx := db.Begin()
		w := models.Wallet{}
		if err := tx.First(&w, wallet.ID).Error; err != nil {
			tx.Rollback()
			result <- err
			return
		}
		if _, err := HoldOrderAmount(tx, &w, order); err != nil {
			tx.Rollback()
			result <- err
			return
		}
		result <- tx.Commit().Error
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); hold(orderA, results) }()
	go func() { defer wg.Done(); hold(orderB, results) }()
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == ErrInsufficientBalance:
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one concurrent hold must win")
	assert.Equal(t, 1, insufficient)

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 100.0, reloaded.CurrentBalance)
	assert.Equal(t, 300.0, reloaded.HeldAmount)
}

func TestRefundOrderHoldSettlesOnce(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 600)

	orderA := seedOrder(t, db, wallet.UserID, 300)
	orderB := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, orderA)
	require.NoError(t, err)
	_, err = HoldOrderAmount(db, wallet, orderB)
	require.NoError(t, err)

	_, err = RefundOrderHold(db, wallet, orderA)
	require.NoError(t, err)

	// The second hold keeps held_amount covering the refund amount, so only
	// the per-order settlement guard stands between the wallet and a double
	// payout of the other order's money.
	_, err = RefundOrderHold(db, wallet, orderA)
	assert.ErrorIs(t, err, ErrDuplicateUsage)

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 300.0, reloaded.CurrentBalance, "a repeated refund must not credit twice")
	assert.Equal(t, 300.0, reloaded.HeldAmount, "the other order's hold must stay intact")

	var reloadedOrder models.Order
	require.NoError(t, db.First(&reloadedOrder, orderA.ID).Error)
	assert.Equal(t, models.EscrowStatusReleased, reloadedOrder.EscrowStatus)
}

func TestSettledOrderRejectsOppositeSettlement(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 600)

	deducted := seedOrder(t, db, wallet.UserID, 300)
	refunded := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, deducted)
	require.NoError(t, err)
	_, err = HoldOrderAmount(db, wallet, refunded)
	require.NoError(t, err)

	_, err = CompleteOrderDeduct(db, wallet, deducted)
	require.NoError(t, err)
	_, err = RefundOrderHold(db, wallet, deducted)
	assert.ErrorIs(t, err, ErrDuplicateUsage, "a deducted order must not also be refunded")

	_, err = RefundOrderHold(db, wallet, refunded)
	require.NoError(t, err)
	_, err = CompleteOrderDeduct(db, wallet, refunded)
	assert.ErrorIs(t, err, ErrDuplicateUsage, "a refunded order must not also be deducted")

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 300.0, reloaded.CurrentBalance)
	assert.Equal(t, 0.0, reloaded.HeldAmount)
	assert.Equal(t, 300.0, reloaded.TotalSpent)
}

func TestConcurrentRefundsSameOrder(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 600)

	orderA := seedOrder(t, db, wallet.UserID, 300)
	orderB := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, orderA)
	require.NoError(t, err)
	_, err = HoldOrderAmount(db, wallet, orderB)
	require.NoError(t, err)

	refund := func(result chan<- error) {
		tx := db.Begin()
		w := models.Wallet{}
		if err := tx.First(&w, wallet.ID).Error; err != nil {
			tx.Rollback()
			result <- err
			return
		}
		if _, err := RefundOrderHold(tx, &w, orderA); err != nil {
			tx.Rollback()
			result <- err
			return
		}
		result <- tx.Commit().Error
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); refund(results) }()
	go func() { defer wg.Done(); refund(results) }()
	wg.Wait()
	close(results)

	var succeeded, duplicate int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == ErrDuplicateUsage:
			duplicate++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one concurrent refund must win")
	assert.Equal(t, 1, duplicate)

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 300.0, reloaded.CurrentBalance)
	assert.Equal(t, 300.0, reloaded.HeldAmount)
}

func TestConcurrentSettlementsSameOrder(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 600)

	orderA := seedOrder(t, db, wallet.UserID, 300)
	orderB := seedOrder(t, db, wallet.UserID, 300)

	_, err := HoldOrderAmount(db, wallet, orderA)
	require.NoError(t, err)
	_, err = HoldOrderAmount(db, wallet, orderB)
	require.NoError(t, err)

	settle := func(result chan<- error) {
		tx := db.Begin()
		w := models.Wallet{}
		if err := tx.First(&w, wallet.ID).Error; err != nil {
			tx.Rollback()
			result <- err
			return
		}
		if _, err := CompleteOrderDeduct(tx, &w, orderA); err != nil {
			tx.Rollback()
			result <- err
			return
		}
		result <- tx.Commit().Error
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); settle(results) }()
	go func() { defer wg.Done(); settle(results) }()
	wg.Wait()
	close(results)

	var succeeded, duplicate int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == ErrDuplicateUsage:
			duplicate++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one concurrent settlement must win")
	assert.Equal(t, 1, duplicate)

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, wallet.ID).Error)
	assert.Equal(t, 300.0, reloaded.TotalSpent, "only one order's hold may be deducted")
	assert.Equal(t, 300.0, reloaded.HeldAmount, "the other order's hold must stay intact")
}

func TestLedgerEntriesBalanceArithmetic(t *testing.T) {
	db := newTestDB(t)
	wallet := seedWallet(t, db, 1000)

	first := seedOrder(t, db, wallet.UserID, 250)
	second := seedOrder(t, db, wallet.UserID, 400)

	_, err := HoldOrderAmount(db, wallet, first)
	require.NoError(t, err)
	_, err = HoldOrderAmount(db, wallet, second)
	require.NoError(t, err)
	_, err = CompleteOrderDeduct(db, wallet, first)
	require.NoError(t, err)
	_, err = RefundOrderHold(db, wallet, second)
	require.NoError(t, err)

	var entries []models.WalletTransaction
	require.NoError(t, db.Where("wallet_id = ?", wallet.ID).Order("id ASC").Find(&entries).Error)
	require.Len(t, entries, 4)

	for _, e := range entries {
		var signed float64
		switch e.TransactionType {
		case models.TransactionTypeHold:
			signed = -e.Amount
		case models.TransactionTypeRefund, models.TransactionTypeRecharge, models.TransactionTypeRelease:
			signed = e.Amount
		case models.TransactionTypeDeduct:
			signed = 0
		}
		assert.Equal(t, signed, e.BalanceAfter-e.BalanceBefore,
			"entry %d (%s) breaks the ledger arithmetic", e.ID, e.TransactionType)
	}

	var final models.Wallet
	require.NoError(t, db.First(&final, wallet.ID).Error)
	assert.Equal(t, 750.0, final.CurrentBalance)
	assert.Equal(t, 0.0, final.HeldAmount)
	assert.Equal(t, 250.0, final.TotalSpent)
}
