package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stablebank/models"
	"stablebank/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxLTV caps the loan at 80% of the property value at origination.
var maxLTV = decimal.NewFromInt(80)

var (
	minPropertyValue = decimal.NewFromInt(1000)
	minLoanAmount    = decimal.NewFromInt(1000)
	maxInterestRate  = decimal.NewFromInt(20)
)

// MortgageLedger - журнал ипотечных кредитов и платежей по ним
type MortgageLedger struct {
	db         *gorm.DB
	wallets    *WalletLedger
	settlement *SettlementClient
	poolWallet string
}

func NewMortgageLedger(db *gorm.DB, wallets *WalletLedger, settlement *SettlementClient, poolWallet string) *MortgageLedger {
	return &MortgageLedger{
		db:         db,
		wallets:    wallets,
		settlement: settlement,
		poolWallet: poolWallet,
	}
}

// CreateMortgage validates an application and stores the mortgage in status
// pending. The monthly payment is computed once here and never recomputed.
func (ml *MortgageLedger) CreateMortgage(req models.CreateMortgageRequest) (*models.Mortgage, error) {
	if err := utils.ValidateAddress(req.BorrowerWallet); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if req.PropertyValue.LessThan(minPropertyValue) {
		return nil, fmt.Errorf("%w: property value must be at least %s", models.ErrValidation, minPropertyValue)
	}
	if req.LoanAmount.LessThan(minLoanAmount) {
		return nil, fmt.Errorf("%w: loan amount must be at least %s", models.ErrValidation, minLoanAmount)
	}
	if req.InterestRate.IsNegative() || req.InterestRate.GreaterThan(maxInterestRate) {
		return nil, fmt.Errorf("%w: interest rate must be between 0 and %s", models.ErrValidation, maxInterestRate)
	}
	if req.TermYears < 1 || req.TermYears > 30 {
		return nil, fmt.Errorf("%w: term must be between 1 and 30 years", models.ErrValidation)
	}

	ltv := utils.LoanToValue(req.LoanAmount, req.PropertyValue)
	if ltv.GreaterThan(maxLTV) {
		return nil, fmt.Errorf("%w: loan amount cannot exceed 80%% of property value (LTV %s%%)",
			models.ErrValidation, ltv.StringFixed(2))
	}

	now := time.Now()
	mortgage := models.Mortgage{
		BorrowerWallet:         req.BorrowerWallet,
		PropertyValue:          req.PropertyValue.Round(2),
		LoanAmount:             req.LoanAmount.Round(2),
		InterestRate:           req.InterestRate,
		TermYears:              req.TermYears,
		MonthlyPayment:         utils.MonthlyPayment(req.LoanAmount, req.InterestRate, req.TermYears),
		PropertyAddress:        req.PropertyAddress,
		StartDate:              now,
		Status:                 models.StatusPending,
		NextPaymentDate:        now.AddDate(0, 0, 30),
		RemainingPayments:      req.TermYears * 12,
		CollateralizationRatio: ltv,
	}

	if err := ml.db.Create(&mortgage).Error; err != nil {
		return nil, fmt.Errorf("failed to create mortgage: %w", err)
	}

	// Mirror on-chain in the background; the application never waits on the
	// gateway and a failure only loses the on-chain reference, not the record.
	if ml.settlement.Enabled() {
		go ml.registerOnChain(mortgage)
	}

	return &mortgage, nil
}

func (ml *MortgageLedger) registerOnChain(mortgage models.Mortgage) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	account, _, err := ml.settlement.RegisterMortgage(ctx,
		mortgage.BorrowerWallet, mortgage.LoanAmount, mortgage.PropertyValue,
		mortgage.TermYears*12, mortgage.InterestRate)
	mortgageRef := fmt.Sprintf("mortgage %d", mortgage.ID)
	if err != nil {
		log.Printf("[SETTLEMENT] failed to register mortgage %d on-chain: %v", mortgage.ID, err)
		utils.LogSettlement(mortgageRef, "register", err)
		return
	}
	if err := ml.db.Model(&models.Mortgage{}).Where("id = ?", mortgage.ID).
		Update("on_chain_mortgage_id", account).Error; err != nil {
		log.Printf("[SETTLEMENT] failed to store on-chain ref for mortgage %d: %v", mortgage.ID, err)
		utils.LogSettlement(mortgageRef, "store on-chain ref "+account, err)
		return
	}
	utils.LogSettlement(mortgageRef, "registered as "+account, nil)
}

// GetMortgage loads a mortgage by id.
func (ml *MortgageLedger) GetMortgage(id uint) (*models.Mortgage, error) {
	var mortgage models.Mortgage
	if err := ml.db.First(&mortgage, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: mortgage %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	return &mortgage, nil
}

// ListByBorrower returns every mortgage owned by the wallet address.
func (ml *MortgageLedger) ListByBorrower(wallet string) ([]models.Mortgage, error) {
	var mortgages []models.Mortgage
	if err := ml.db.Where("borrower_wallet = ?", wallet).Order("created_at DESC").Find(&mortgages).Error; err != nil {
		return nil, err
	}
	return mortgages, nil
}

// PaymentHistory returns the append-only payment records of a mortgage.
func (ml *MortgageLedger) PaymentHistory(id uint) (*models.Mortgage, []models.MortgagePayment, error) {
	mortgage, err := ml.GetMortgage(id)
	if err != nil {
		return nil, nil, err
	}
	var payments []models.MortgagePayment
	if err := ml.db.Where("mortgage_id = ?", id).Order("date ASC").Find(&payments).Error; err != nil {
		return nil, nil, err
	}
	return mortgage, payments, nil
}

// ApplyPayment settles one installment: debits the payer's wallet, appends a
// payment record with the principal/interest split, advances the schedule and
// closes the mortgage when the schedule is exhausted.
//
// The split is always derived from the fixed monthly payment and the current
// outstanding balance, regardless of the amount actually paid. Over- or
// underpayment changes only the wallet debit, not the split.
func (ml *MortgageLedger) ApplyPayment(id uint, amount decimal.Decimal, payerWallet string) (*models.MortgagePayment, *models.Mortgage, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: payment amount must be greater than zero", models.ErrValidation)
	}
	amount = amount.Round(2)

	mortgage, err := ml.GetMortgage(id)
	if err != nil {
		return nil, nil, err
	}
	if err := checkPayable(mortgage, payerWallet); err != nil {
		return nil, nil, err
	}

	// Debit the wallet first: an insufficient balance must abort before any
	// mortgage state changes. The debit and the mortgage update are separate
	// per-record commits; a failed mortgage update is compensated below.
	ref := uuid.New().String()
	_, walletTx, err := ml.wallets.Pay(payerWallet, amount, ref)
	if err != nil {
		return nil, nil, err
	}

	var payment *models.MortgagePayment
	for attempt := 0; attempt < casRetries; attempt++ {
		principal, interest := utils.SplitPayment(mortgage.LoanAmount, mortgage.InterestRate, mortgage.MonthlyPayment)
		if principal.GreaterThan(mortgage.LoanAmount) {
			// Final periods: never amortize below zero.
			principal = mortgage.LoanAmount
		}

		newLoanAmount := mortgage.LoanAmount.Sub(principal)
		remaining := mortgage.RemainingPayments - 1
		if remaining < 0 {
			remaining = 0
		}
		newStatus := mortgage.Status
		if remaining <= 0 {
			// An exhausted schedule always closes the mortgage, even when it
			// was paid off while still approved and never activated.
			newStatus = models.StatusCompleted
		}

		record := models.MortgagePayment{
			MortgageID: mortgage.ID,
			Reference:  ref,
			Date:       time.Now(),
			Amount:     amount,
			Status:     models.PaymentCompleted,
			Principal:  principal,
			Interest:   interest,
		}

		err = ml.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Mortgage{}).
				Where("id = ? AND version = ?", mortgage.ID, mortgage.Version).
				Updates(map[string]interface{}{
					"loan_amount":        newLoanAmount,
					"remaining_payments": remaining,
					"next_payment_date":  mortgage.NextPaymentDate.AddDate(0, 1, 0),
					"status":             newStatus,
					"version":            mortgage.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}
			return tx.Create(&record).Error
		})
		if errors.Is(err, errVersionConflict) {
			// Another payment or transition won the race; reload and re-check.
			mortgage, err = ml.GetMortgage(id)
			if err == nil {
				err = checkPayable(mortgage, payerWallet)
			}
			if err != nil {
				ml.refund(payerWallet, amount, ref)
				return nil, nil, err
			}
			continue
		}
		if err != nil {
			ml.refund(payerWallet, amount, ref)
			return nil, nil, fmt.Errorf("failed to apply payment: %w", err)
		}

		mortgage.LoanAmount = newLoanAmount
		mortgage.RemainingPayments = remaining
		mortgage.NextPaymentDate = mortgage.NextPaymentDate.AddDate(0, 1, 0)
		mortgage.Status = newStatus
		mortgage.Version++
		payment = &record
		break
	}
	if payment == nil {
		ml.refund(payerWallet, amount, ref)
		return nil, nil, fmt.Errorf("mortgage %d is too contended, give up after %d attempts", id, casRetries)
	}

	// Credit the lender pool, when one is configured. Best-effort: the payment
	// stands even if the pool wallet is missing.
	if ml.poolWallet != "" {
		if _, _, err := ml.wallets.Receive(ml.poolWallet, amount, ref); err != nil {
			log.Printf("[LEDGER] failed to credit pool wallet for payment %s: %v", ref, err)
		}
	}

	// Settlement runs after the local commit, outside any record lock, and
	// back-fills the signature on the existing rows. Failure is logged only.
	if ml.settlement.Enabled() {
		go ml.settlePayment(*mortgage, *payment, walletTx.ID)
	}

	return payment, mortgage, nil
}

func checkPayable(mortgage *models.Mortgage, payerWallet string) error {
	if mortgage.BorrowerWallet != payerWallet {
		return fmt.Errorf("%w: only the borrower can make payments on this mortgage", models.ErrUnauthorized)
	}
	if mortgage.Status != models.StatusActive && mortgage.Status != models.StatusApproved {
		return fmt.Errorf("%w: cannot make payment on a mortgage with status %s", models.ErrInvalidState, mortgage.Status)
	}
	return nil
}

// refund compensates an already-debited wallet when the mortgage update could
// not be applied.
func (ml *MortgageLedger) refund(payerWallet string, amount decimal.Decimal, ref string) {
	if _, _, err := ml.wallets.Deposit(payerWallet, amount, "Refund: payment "+ref+" not applied"); err != nil {
		log.Printf("[LEDGER] failed to refund payment %s to %s: %v", ref, payerWallet, err)
		utils.LogError(err, "payment refund")
	}
}

func (ml *MortgageLedger) settlePayment(mortgage models.Mortgage, payment models.MortgagePayment, walletTxID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mortgageRef := mortgage.OnChainMortgageID
	if mortgageRef == "" {
		mortgageRef = payment.Reference
	}
	sig, raw, err := ml.settlement.SubmitPayment(ctx, mortgage.BorrowerWallet, mortgageRef, payment.Amount)
	if err != nil {
		log.Printf("[SETTLEMENT] payment %s not mirrored on-chain: %v", payment.Reference, err)
		utils.LogSettlement(payment.Reference, "submit", err)
		return
	}

	if err := ml.db.Model(&models.MortgagePayment{}).Where("id = ?", payment.ID).
		Updates(map[string]interface{}{"settlement_sig": sig, "settlement_raw": raw}).Error; err != nil {
		log.Printf("[SETTLEMENT] failed to store signature for payment %s: %v", payment.Reference, err)
		utils.LogSettlement(payment.Reference, "store signature "+sig, err)
		return
	}
	if err := ml.db.Model(&models.WalletTransaction{}).Where("id = ?", walletTxID).
		Update("settlement_sig", sig).Error; err != nil {
		log.Printf("[SETTLEMENT] failed to store signature on wallet tx %d: %v", walletTxID, err)
	}
	utils.LogSettlement(payment.Reference, "settled as "+sig, nil)
}

// ChangeStatus applies a lifecycle transition through the transition table.
// approved -> active additionally stamps the start date and schedules the
// first due date 30 days out, atomically with the status write.
func (ml *MortgageLedger) ChangeStatus(id uint, to string) (*models.Mortgage, error) {
	if !models.IsMortgageStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, to)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		mortgage, err := ml.GetMortgage(id)
		if err != nil {
			return nil, err
		}
		if err := models.ValidateTransition(mortgage.Status, to); err != nil {
			return nil, err
		}

		updates := map[string]interface{}{
			"status":  to,
			"version": mortgage.Version + 1,
		}
		now := time.Now()
		activating := mortgage.Status == models.StatusApproved && to == models.StatusActive
		if activating {
			updates["start_date"] = now
			updates["next_payment_date"] = now.AddDate(0, 0, 30)
		}

		res := ml.db.Model(&models.Mortgage{}).
			Where("id = ? AND version = ?", mortgage.ID, mortgage.Version).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}

		mortgage.Status = to
		mortgage.Version++
		if activating {
			mortgage.StartDate = now
			mortgage.NextPaymentDate = now.AddDate(0, 0, 30)
		}
		return mortgage, nil
	}

	return nil, fmt.Errorf("mortgage %d is too contended, give up after %d attempts", id, casRetries)
}
