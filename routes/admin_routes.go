package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/controllers"
	"github.com/kabaadwala/marketplace/middleware"
)

// RegisterAdminRoutes wires the admin back-office
func RegisterAdminRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/escrow/stats", controllers.EscrowStats)
		admin.GET("/escrow/orders", controllers.ListEscrowOrders)
		admin.POST("/escrow/orders/:id/release", controllers.ReleaseEscrow)
		admin.POST("/escrow/orders/:id/dispute", controllers.DisputeEscrow)
		admin.POST("/escrow/orders/:id/resolve", controllers.ResolveDispute)

		admin.GET("/kyc", controllers.ListKYCQueue)
		admin.POST("/kyc/:id/decide", controllers.DecideKYC)

		admin.GET("/users", controllers.ListUsers)
		admin.PUT("/users/:id/ban", controllers.SetUserBan)
		admin.PUT("/users/:id/wallet-freeze", controllers.SetWalletFreeze)

		admin.POST("/coupons", controllers.CreateGlobalCoupon)
		admin.DELETE("/coupons/:id", controllers.DeactivateCoupon)

		admin.GET("/reports/commission", controllers.CommissionReport)
		admin.GET("/reports/sales.xlsx", controllers.ExportSalesReport)

		admin.GET("/moderation/flagged", controllers.ListFlaggedMessages)

		admin.GET("/ads", controllers.ListAdvertisements)
		admin.POST("/ads", controllers.CreateAdvertisement)
		admin.PUT("/ads/:id/status", controllers.UpdateAdvertisementStatus)
	}
}
