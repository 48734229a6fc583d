package routes

import (
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/controllers"
	"github.com/kabaadwala/marketplace/utils"
)

// SetupRouter wires up middleware and all route groups
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "kabaadwala-dev-session"
	}
	store := cookie.NewStore([]byte(sessionSecret))
	router.Use(sessions.Sessions("kabaadwala_session", store))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		// Public
		v1.POST("/auth/register", controllers.Register)
		v1.POST("/auth/verify-otp", controllers.VerifyOTP)
		v1.POST("/auth/resend-otp", controllers.ResendOTP)
		v1.POST("/auth/login", controllers.Login)
		v1.GET("/auth/google/login", controllers.GoogleLogin)
		v1.GET("/auth/google/callback", controllers.GoogleCallback)

		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.GET("/categories", controllers.ListCategories)
		v1.GET("/stores/:id", controllers.GetStore)
		v1.GET("/coupons", controllers.ListAvailableCoupons)
		v1.GET("/ads", controllers.ListActiveAds)
		v1.POST("/ads/:id/click", controllers.TrackAdClick)

		RegisterUserRoutes(v1)
		RegisterVendorRoutes(v1)
		RegisterAdminRoutes(v1)
	}

	return router
}
