package controllers

import (
	"net/http"
	"strconv"

	"stablebank/models"
	"stablebank/services"
	"stablebank/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// WalletController контроллер для работы с кошельками
type WalletController struct {
	ledger *services.WalletLedger
	rdb    *redis.Client
}

// NewWalletController создает новый экземпляр WalletController
func NewWalletController(ledger *services.WalletLedger, rdb *redis.Client) *WalletController {
	return &WalletController{ledger: ledger, rdb: rdb}
}

// CreateWallet регистрирует новый кошелек
func (wc *WalletController) CreateWallet(c *gin.Context) {
	var req models.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	wallet, err := wc.ledger.CreateWallet(req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "result": wallet})
}

// GetWalletInfo возвращает информацию о кошельке
func (wc *WalletController) GetWalletInfo(c *gin.Context) {
	address := c.Param("address")

	wallet, err := wc.ledger.GetWallet(address)
	if err != nil {
		respondError(c, err)
		return
	}

	deposits, withdrawals := wc.ledger.Totals(wallet.ID)
	var txCount int64
	history, err := wc.ledger.Transactions(address, "", 1, 1)
	if err == nil {
		txCount = history.Total
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": models.WalletInfoResponse{
			Address:          wallet.Address,
			Balance:          wallet.Balance,
			IsVerified:       wallet.IsVerified,
			TotalDeposits:    deposits,
			TotalWithdrawals: withdrawals,
			TransactionCount: txCount,
			CreatedAt:        wallet.CreatedAt,
			UpdatedAt:        wallet.UpdatedAt,
		},
	})
}

func bindAmount(c *gin.Context) (decimal.Decimal, bool) {
	var req models.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return decimal.Zero, false
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Amount must be greater than 0"})
		return decimal.Zero, false
	}
	return req.Amount.Round(2), true
}

// Deposit пополняет баланс кошелька
func (wc *WalletController) Deposit(c *gin.Context) {
	address := c.Param("address")
	amount, ok := bindAmount(c)
	if !ok {
		return
	}

	wallet, transaction, err := wc.ledger.Deposit(address, amount, "")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"wallet": gin.H{
				"address":     wallet.Address,
				"balance":     wallet.Balance,
				"is_verified": wallet.IsVerified,
			},
			"transaction": transaction,
		},
	})
}

// Withdraw списывает средства с кошелька
func (wc *WalletController) Withdraw(c *gin.Context) {
	address := c.Param("address")
	amount, ok := bindAmount(c)
	if !ok {
		return
	}

	wallet, transaction, err := wc.ledger.Withdraw(address, amount, "")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"wallet": gin.H{
				"address":     wallet.Address,
				"balance":     wallet.Balance,
				"is_verified": wallet.IsVerified,
			},
			"transaction": transaction,
		},
	})
}

// GetTransactions возвращает историю операций с фильтром и пагинацией
func (wc *WalletController) GetTransactions(c *gin.Context) {
	address := c.Param("address")
	txType := c.Query("type")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	history, err := wc.ledger.Transactions(address, txType, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": history})
}

// GetChallenge выдает одноразовое сообщение для подписи
func (wc *WalletController) GetChallenge(c *gin.Context) {
	address := c.Param("address")

	if _, err := wc.ledger.GetWallet(address); err != nil {
		respondError(c, err)
		return
	}

	if ok, msg := utils.CanRequestChallenge(wc.rdb, address); !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": msg})
		return
	}

	challenge := utils.GenerateChallenge()
	if err := utils.StoreChallenge(wc.rdb, address, challenge); err != nil {
		respondError(c, err)
		return
	}
	utils.MarkChallengeRequested(wc.rdb, address)

	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"challenge": challenge}})
}

// VerifyWallet проверяет подпись и подтверждает владение кошельком
func (wc *WalletController) VerifyWallet(c *gin.Context) {
	address := c.Param("address")

	var req models.VerifyWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	if _, err := wc.ledger.GetWallet(address); err != nil {
		respondError(c, err)
		return
	}

	// The signed message must be the challenge this server issued.
	challenge := utils.LoadChallenge(wc.rdb, address)
	if challenge == "" || challenge != req.Message {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown or expired challenge"})
		return
	}

	valid, err := utils.VerifySignature(address, req.Message, req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid signature format", "details": err.Error()})
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Signature verification failed"})
		return
	}

	utils.DropChallenge(wc.rdb, address)
	wallet, err := wc.ledger.MarkVerified(address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"address":     wallet.Address,
			"is_verified": wallet.IsVerified,
		},
	})
}
