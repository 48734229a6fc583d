package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/controllers"
	"github.com/kabaadwala/marketplace/middleware"
)

// RegisterUserRoutes wires routes available to any authenticated user
func RegisterUserRoutes(rg *gin.RouterGroup) {
	user := rg.Group("")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)

		user.GET("/addresses", controllers.ListAddresses)
		user.POST("/addresses", controllers.AddAddress)
		user.DELETE("/addresses/:id", controllers.DeleteAddress)

		user.GET("/cart", controllers.GetCart)
		user.POST("/cart", controllers.AddToCart)
		user.PUT("/cart/:id", controllers.UpdateCartItem)
		user.DELETE("/cart/:id", controllers.RemoveCartItem)
		user.DELETE("/cart", controllers.ClearCart)

		user.GET("/checkout/summary", controllers.GetCheckoutSummary)
		user.POST("/checkout", controllers.PlaceOrder)

		user.GET("/orders", controllers.ListOrders)
		user.GET("/orders/:id", controllers.GetOrder)
		user.POST("/orders/:id/cancel", controllers.CancelOrder)
		user.POST("/orders/:id/confirm-delivery", controllers.ConfirmDelivery)

		user.GET("/wallet", controllers.GetWallet)
		user.GET("/wallet/transactions", controllers.ListWalletTransactions)
		user.POST("/wallet/recharge", controllers.InitiateRecharge)
		user.POST("/wallet/recharge/verify", controllers.VerifyRecharge)

		user.POST("/coupons/validate", controllers.ValidateCoupon)

		user.POST("/chats", controllers.StartChat)
		user.GET("/chats", controllers.ListChatRooms)
		user.GET("/chats/:id/messages", controllers.ListMessages)
		user.POST("/chats/:id/messages", controllers.SendMessage)

		user.GET("/notifications", controllers.ListNotifications)
		user.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
		user.PUT("/notifications/read-all", controllers.MarkAllNotificationsRead)

		user.POST("/vendor/register", controllers.RegisterVendor)
	}
}
