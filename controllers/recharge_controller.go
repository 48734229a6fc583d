package controllers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
	razorpay "github.com/razorpay/razorpay-go"
)

// InitiateRechargeRequest holds the recharge initiation payload
type InitiateRechargeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// VerifyRechargeRequest holds the gateway callback payload
type VerifyRechargeRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

const (
	minRechargeAmount = 10
	maxRechargeAmount = 100000
)

// InitiateRecharge creates a gateway order and a pending ledger entry.
// The wallet balance is untouched until the signed callback arrives.
func InitiateRecharge(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req InitiateRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid recharge data", err.Error())
		return
	}

	if req.Amount < minRechargeAmount || req.Amount > maxRechargeAmount {
		utils.BadRequest(c, fmt.Sprintf("Recharge amount must be between %d and %d", minRechargeAmount, maxRechargeAmount), nil)
		return
	}

	wallet, err := utils.GetOrCreateWallet(config.DB, user.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}
	if !wallet.IsActive {
		utils.Forbidden(c, "Your wallet is frozen. Contact support.")
		return
	}

	client := razorpay.NewClient(config.AppConfig.RazorpayKey, config.AppConfig.RazorpaySecret)
	orderData := map[string]interface{}{
		"amount":   int(req.Amount * 100), // paise
		"currency": "INR",
		"receipt":  fmt.Sprintf("wallet_%d_%d", wallet.ID, user.ID),
	}
	gatewayOrder, err := client.Order.Create(orderData, nil)
	if err != nil {
		utils.LogError("Failed to create Razorpay order for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to initiate recharge", nil)
		return
	}
	gatewayOrderID, _ := gatewayOrder["id"].(string)
	if gatewayOrderID == "" {
		utils.InternalServerError(c, "Failed to initiate recharge", nil)
		return
	}

	txn := models.WalletTransaction{
		WalletID:          wallet.ID,
		TransactionType:   models.TransactionTypeRecharge,
		Amount:            req.Amount,
		PaymentGatewayRef: gatewayOrderID,
		Status:            models.TransactionStatusPending,
		Description:       fmt.Sprintf("Wallet recharge of %.2f", req.Amount),
	}
	if err := config.DB.Create(&txn).Error; err != nil {
		utils.LogError("Failed to create recharge entry for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to initiate recharge", nil)
		return
	}

	utils.LogInfo("Recharge initiated: user %d, amount %.2f, gateway order %s", user.ID, req.Amount, gatewayOrderID)
	utils.Created(c, "Recharge initiated", gin.H{
		"gateway_order_id": gatewayOrderID,
		"amount":           req.Amount,
		"currency":         "INR",
		"key":              config.AppConfig.RazorpayKey,
		"transaction_id":   txn.ID,
	})
}

// VerifyRecharge handles the signed gateway callback. The signature is
// checked before any state changes; completion is idempotent, so a retried
// callback cannot credit the wallet twice.
func VerifyRecharge(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req VerifyRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid verification data", err.Error())
		return
	}

	wallet, err := utils.GetOrCreateWallet(config.DB, user.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	var txn models.WalletTransaction
	if err := config.DB.Where("payment_gateway_ref = ? AND wallet_id = ? AND transaction_type = ?",
		req.RazorpayOrderID, wallet.ID, models.TransactionTypeRecharge).
		First(&txn).Error; err != nil {
		utils.NotFound(c, "Recharge transaction not found")
		return
	}

	if err := utils.VerifyGatewayCallback(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, config.AppConfig.RazorpaySecret); err != nil {
		utils.LogError("Signature mismatch on recharge %d (user %d): %v", txn.ID, user.ID, err)
		if err := utils.FailRecharge(config.DB, txn.ID, "signature verification failed"); err != nil {
			utils.LogError("Failed to mark recharge %d failed: %v", txn.ID, err)
		}
		utils.BadRequest(c, "Payment signature verification failed", nil)
		return
	}

	tx := config.DB.Begin()
	updatedWallet, err := utils.CompleteRecharge(tx, &txn, req.RazorpayPaymentID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, utils.ErrDuplicateUsage) {
			utils.Success(c, "Recharge already processed", gin.H{"transaction_id": txn.ID})
			return
		}
		utils.LogError("Failed to complete recharge %d: %v", txn.ID, err)
		utils.InternalServerError(c, "Failed to complete recharge", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to complete recharge", nil)
		return
	}

	utils.LogInfo("Recharge completed: user %d, amount %.2f, new balance %.2f", user.ID, txn.Amount, updatedWallet.CurrentBalance)
	utils.PublishEvent(utils.SubjectRechargeCompleted, gin.H{
		"user_id":        user.ID,
		"amount":         txn.Amount,
		"new_balance":    updatedWallet.CurrentBalance,
		"transaction_id": txn.ID,
	})
	utils.Notify(config.DB, user.ID, models.NotificationTypePayment,
		"Wallet recharged",
		fmt.Sprintf("%.2f has been added to your wallet. New balance: %.2f", txn.Amount, updatedWallet.CurrentBalance))

	// Invoice generation and email are best-effort
	go func(u models.User, t models.WalletTransaction, balance float64, paymentRef string) {
		pdf, err := utils.GenerateRechargeInvoice(&u, &t, balance, paymentRef)
		if err != nil {
			utils.LogError("Failed to generate invoice for recharge %d: %v", t.ID, err)
			return
		}
		if err := utils.SendRechargeInvoice(u.Email, t.Amount, balance, t.ID, pdf); err != nil {
			utils.LogError("Failed to email invoice for recharge %d: %v", t.ID, err)
		}
	}(user, txn, updatedWallet.CurrentBalance, req.RazorpayPaymentID)

	utils.Success(c, "Wallet recharged successfully", gin.H{
		"amount":         txn.Amount,
		"new_balance":    updatedWallet.CurrentBalance,
		"transaction_id": txn.ID,
	})
}
