package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/controllers"
	"github.com/kabaadwala/marketplace/middleware"
)

// RegisterVendorRoutes wires the vendor back-office. KYC submission and the
// profile are open to any vendor; selling operations require approval.
func RegisterVendorRoutes(rg *gin.RouterGroup) {
	vendor := rg.Group("/vendor")
	vendor.Use(middleware.AuthMiddleware(), middleware.VendorMiddleware())
	{
		vendor.GET("/profile", controllers.GetVendorProfile)
		vendor.PUT("/profile", controllers.UpdateVendorProfile)
		vendor.POST("/kyc", controllers.SubmitKYC)

		approved := vendor.Group("")
		approved.Use(middleware.ApprovedVendorMiddleware())
		{
			approved.GET("/dashboard", controllers.VendorDashboard)

			approved.GET("/products", controllers.ListVendorProducts)
			approved.POST("/products", controllers.CreateProduct)
			approved.PUT("/products/:id", controllers.UpdateProduct)
			approved.DELETE("/products/:id", controllers.DeleteProduct)

			approved.GET("/orders", controllers.ListVendorOrders)
			approved.PUT("/orders/:id/status", controllers.UpdateOrderStatus)

			approved.GET("/coupons", controllers.ListVendorCoupons)
			approved.POST("/coupons", controllers.CreateVendorCoupon)
			approved.DELETE("/coupons/:id", controllers.DeactivateCoupon)
		}
	}
}
