package main

import (
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/routes"
	"github.com/kabaadwala/marketplace/utils"
)

func main() {
	if err := utils.InitLogger(); err != nil {
		panic(err)
	}
	utils.LogInfo("Starting KABAADWALA marketplace API")

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Failed to load configuration: %v", err)
		panic(err)
	}
	config.AppConfig = cfg

	config.InitDB()
	config.InitGoogleOAuth()

	if err := utils.InitEvents(); err != nil {
		utils.LogError("Failed to connect to NATS: %v", err)
	}
	defer utils.CloseEvents()

	router := routes.SetupRouter()

	utils.LogInfo("Server listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Server exited: %v", err)
		panic(err)
	}
}
