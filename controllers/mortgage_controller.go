package controllers

import (
	"net/http"
	"strconv"

	"stablebank/models"
	"stablebank/services"
	"stablebank/utils"

	"github.com/gin-gonic/gin"
)

// MortgageController контроллер для работы с ипотекой
type MortgageController struct {
	ledger *services.MortgageLedger
}

// NewMortgageController создает новый экземпляр MortgageController
func NewMortgageController(ledger *services.MortgageLedger) *MortgageController {
	return &MortgageController{ledger: ledger}
}

func mortgageID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid mortgage id"})
		return 0, false
	}
	return uint(id), true
}

// CreateMortgage принимает заявку на ипотеку
func (mc *MortgageController) CreateMortgage(c *gin.Context) {
	var req models.CreateMortgageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	mortgage, err := mc.ledger.CreateMortgage(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"result":  mortgage,
		"message": "Mortgage application submitted",
	})
}

// GetMortgages возвращает все ипотеки пользователя
func (mc *MortgageController) GetMortgages(c *gin.Context) {
	wallet := c.Param("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Wallet address is required"})
		return
	}

	mortgages, err := mc.ledger.ListByBorrower(wallet)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(mortgages),
		"result":  mortgages,
	})
}

// GetMortgage возвращает одну ипотеку по id
func (mc *MortgageController) GetMortgage(c *gin.Context) {
	id, ok := mortgageID(c)
	if !ok {
		return
	}

	mortgage, err := mc.ledger.GetMortgage(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": mortgage})
}

// MakePayment проводит платеж по ипотеке
func (mc *MortgageController) MakePayment(c *gin.Context) {
	id, ok := mortgageID(c)
	if !ok {
		return
	}

	var req models.MakePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	payment, mortgage, err := mc.ledger.ApplyPayment(id, req.Amount, req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"payment":  payment,
			"mortgage": mortgage,
		},
	})
}

// UpdateStatus меняет статус ипотеки (только для админа)
func (mc *MortgageController) UpdateStatus(c *gin.Context) {
	id, ok := mortgageID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	mortgage, err := mc.ledger.ChangeStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": mortgage})
}

// GetPaymentHistory возвращает историю платежей по ипотеке
func (mc *MortgageController) GetPaymentHistory(c *gin.Context) {
	id, ok := mortgageID(c)
	if !ok {
		return
	}

	mortgage, payments, err := mc.ledger.PaymentHistory(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"mortgage_id":     mortgage.ID,
			"borrower_wallet": mortgage.BorrowerWallet,
			"payment_history": payments,
		},
	})
}

// GetSchedule возвращает полный график амортизации
func (mc *MortgageController) GetSchedule(c *gin.Context) {
	id, ok := mortgageID(c)
	if !ok {
		return
	}

	mortgage, err := mc.ledger.GetMortgage(id)
	if err != nil {
		respondError(c, err)
		return
	}

	schedule := utils.Schedule(mortgage.LoanAmount, mortgage.InterestRate, mortgage.TermYears, mortgage.StartDate)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result": gin.H{
			"mortgage_id":     mortgage.ID,
			"borrower_wallet": mortgage.BorrowerWallet,
			"loan_amount":     mortgage.LoanAmount,
			"interest_rate":   mortgage.InterestRate,
			"term_years":      mortgage.TermYears,
			"monthly_payment": mortgage.MonthlyPayment,
			"total_interest":  utils.TotalInterest(mortgage.LoanAmount, mortgage.MonthlyPayment, mortgage.TermYears),
			"start_date":      mortgage.StartDate,
			"schedule":        schedule,
		},
	})
}
