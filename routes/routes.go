package routes

import (
	"net/http"
	"time"

	"stablebank/config"
	"stablebank/controllers"
	"stablebank/middleware"
	"stablebank/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter создаёт gin.Engine, регистрирует все маршруты и возвращает роутер
func SetupRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryMiddleware())

	// CORS middleware ДО роутов
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	walletLedger := services.NewWalletLedger(db)
	settlement := services.NewSettlementClient(cfg)
	mortgageLedger := services.NewMortgageLedger(db, walletLedger, settlement, cfg.PoolWalletAddress)

	authController := controllers.NewAuthController(cfg)
	mortgageController := controllers.NewMortgageController(mortgageLedger)
	walletController := controllers.NewWalletController(walletLedger, rdb)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now()})
	})

	r.POST("/auth/login", authController.Login)

	SetupMortgageRoutes(r, cfg, mortgageController)
	SetupWalletRoutes(r, walletController)

	return r
}
