package routes

import (
	"stablebank/config"
	"stablebank/controllers"
	"stablebank/middleware"

	"github.com/gin-gonic/gin"
)

// SetupMortgageRoutes регистрирует маршруты ипотеки
func SetupMortgageRoutes(r *gin.Engine, cfg *config.Config, mc *controllers.MortgageController) {
	mortgages := r.Group("/mortgages")
	{
		mortgages.POST("", mc.CreateMortgage)
		mortgages.GET("/user/:wallet", mc.GetMortgages)
		mortgages.GET("/:id", mc.GetMortgage)
		mortgages.POST("/:id/payment", mc.MakePayment)
		mortgages.GET("/:id/payments", mc.GetPaymentHistory)
		mortgages.GET("/:id/schedule", mc.GetSchedule)
	}

	// Status transitions are a back-office operation
	admin := r.Group("/mortgages", middleware.AdminAuthMiddleware(cfg.JWTSecret))
	{
		admin.PATCH("/:id/status", mc.UpdateStatus)
	}
}
