package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// GetWallet returns the user's wallet balances
func GetWallet(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	wallet, err := utils.GetOrCreateWallet(config.DB, user.ID)
	if err != nil {
		utils.LogError("Failed to load wallet for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	utils.Success(c, "Wallet retrieved", gin.H{
		"wallet": gin.H{
			"current_balance": wallet.CurrentBalance,
			"held_amount":     wallet.HeldAmount,
			"total_recharged": wallet.TotalRecharged,
			"total_spent":     wallet.TotalSpent,
			"is_active":       wallet.IsActive,
		},
	})
}

// ListWalletTransactions returns the user's ledger, newest first, with an
// optional type filter
func ListWalletTransactions(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	pagination := utils.NewPagination(c)

	wallet, err := utils.GetOrCreateWallet(config.DB, user.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load wallet", nil)
		return
	}

	query := config.DB.Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID)
	if txnType := c.Query("type"); txnType != "" {
		query = query.Where("transaction_type = ?", txnType)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var transactions []models.WalletTransaction
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&transactions).Error; err != nil {
		utils.InternalServerError(c, "Failed to load transactions", nil)
		return
	}

	utils.SendPaginatedResponse(c, "Transactions retrieved", transactions, pagination)
}
