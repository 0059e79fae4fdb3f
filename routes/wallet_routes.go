package routes

import (
	"stablebank/controllers"

	"github.com/gin-gonic/gin"
)

// SetupWalletRoutes регистрирует маршруты кошельков
func SetupWalletRoutes(r *gin.Engine, wc *controllers.WalletController) {
	wallets := r.Group("/wallets")
	{
		wallets.POST("", wc.CreateWallet)
		wallets.GET("/:address", wc.GetWalletInfo)
		wallets.POST("/:address/deposit", wc.Deposit)
		wallets.POST("/:address/withdraw", wc.Withdraw)
		wallets.GET("/:address/transactions", wc.GetTransactions)
		wallets.GET("/:address/challenge", wc.GetChallenge)
		wallets.POST("/:address/verify", wc.VerifyWallet)
	}
}
