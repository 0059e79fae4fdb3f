package services

import (
	"errors"
	"fmt"
	"time"

	"stablebank/models"
	"stablebank/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// casRetries bounds the optimistic-lock retry loop for concurrent updates to
// the same wallet or mortgage row.
const casRetries = 5

var errVersionConflict = errors.New("version conflict")

// WalletLedger - журнал операций и балансов кошельков
type WalletLedger struct {
	db *gorm.DB
}

func NewWalletLedger(db *gorm.DB) *WalletLedger {
	return &WalletLedger{db: db}
}

// CreateWallet registers a new custodial wallet for an address.
func (wl *WalletLedger) CreateWallet(address string) (*models.Wallet, error) {
	if err := utils.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	var count int64
	wl.db.Model(&models.Wallet{}).Where("address = ?", address).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: wallet already exists", models.ErrValidation)
	}

	wallet := models.Wallet{
		Address: address,
		Balance: decimal.Zero,
	}
	if err := wl.db.Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return &wallet, nil
}

// GetWallet loads a wallet by address.
func (wl *WalletLedger) GetWallet(address string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := wl.db.Where("address = ?", address).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: wallet %s", models.ErrNotFound, address)
		}
		return nil, err
	}
	return &wallet, nil
}

// HasSufficientFunds reports whether the wallet can cover amount.
func (wl *WalletLedger) HasSufficientFunds(wallet *models.Wallet, amount decimal.Decimal) bool {
	return wallet.Balance.GreaterThanOrEqual(amount)
}

// Deposit credits the wallet and appends a completed deposit transaction.
func (wl *WalletLedger) Deposit(address string, amount decimal.Decimal, description string) (*models.Wallet, *models.WalletTransaction, error) {
	if description == "" {
		description = "Deposit funds"
	}
	return wl.applyDelta(address, amount, models.TxDeposit, description, "")
}

// Withdraw debits the wallet after a sufficiency check and appends a completed
// withdrawal transaction. Fails with ErrInsufficientFunds without any change.
func (wl *WalletLedger) Withdraw(address string, amount decimal.Decimal, description string) (*models.Wallet, *models.WalletTransaction, error) {
	if description == "" {
		description = "Withdraw funds"
	}
	return wl.applyDelta(address, amount.Neg(), models.TxWithdrawal, description, "")
}

// Pay debits the wallet for a mortgage payment, tagging the transaction with
// the payment reference so it can be reconciled against the mortgage ledger.
func (wl *WalletLedger) Pay(address string, amount decimal.Decimal, paymentRef string) (*models.Wallet, *models.WalletTransaction, error) {
	return wl.applyDelta(address, amount.Neg(), models.TxPayment, "Mortgage payment", paymentRef)
}

// Receive credits a wallet with a mortgage payment receipt (the lender pool).
func (wl *WalletLedger) Receive(address string, amount decimal.Decimal, paymentRef string) (*models.Wallet, *models.WalletTransaction, error) {
	return wl.applyDelta(address, amount, models.TxReceipt, "Mortgage payment receipt", paymentRef)
}

// applyDelta mutates the balance through a compare-and-swap on the version
// column and appends the transaction row in the same DB transaction. Concurrent
// withdrawals therefore cannot both pass the sufficiency check against a stale
// balance; the loser retries against the fresh row.
func (wl *WalletLedger) applyDelta(address string, delta decimal.Decimal, txType, description, relatedID string) (*models.Wallet, *models.WalletTransaction, error) {
	if delta.IsZero() {
		return nil, nil, fmt.Errorf("%w: amount must be greater than zero", models.ErrValidation)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		wallet, err := wl.GetWallet(address)
		if err != nil {
			return nil, nil, err
		}

		newBalance := wallet.Balance.Add(delta)
		if newBalance.IsNegative() {
			return nil, nil, fmt.Errorf("%w: balance %s, requested %s",
				models.ErrInsufficientFunds, wallet.Balance.StringFixed(2), delta.Abs().StringFixed(2))
		}

		transaction := models.WalletTransaction{
			WalletID:        wallet.ID,
			Date:            time.Now(),
			Amount:          delta.Abs(),
			Type:            txType,
			Description:     description,
			Status:          models.TxCompleted,
			RelatedEntityID: relatedID,
		}

		err = wl.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Wallet{}).
				Where("id = ? AND version = ?", wallet.ID, wallet.Version).
				Updates(map[string]interface{}{
					"balance": newBalance,
					"version": wallet.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}
			return tx.Create(&transaction).Error
		})
		if errors.Is(err, errVersionConflict) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to apply wallet operation: %w", err)
		}

		wallet.Balance = newBalance
		wallet.Version++
		return wallet, &transaction, nil
	}

	return nil, nil, fmt.Errorf("wallet %s is too contended, give up after %d attempts", address, casRetries)
}

// MarkVerified flips the verification flag after a successful signature check.
func (wl *WalletLedger) MarkVerified(address string) (*models.Wallet, error) {
	wallet, err := wl.GetWallet(address)
	if err != nil {
		return nil, err
	}
	if err := wl.db.Model(wallet).Update("is_verified", true).Error; err != nil {
		return nil, err
	}
	wallet.IsVerified = true
	return wallet, nil
}

// Transactions returns the wallet's history, optionally filtered by type,
// newest first, paginated.
func (wl *WalletLedger) Transactions(address, txType string, page, limit int) (*models.TransactionListResponse, error) {
	wallet, err := wl.GetWallet(address)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := wl.db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var transactions []models.WalletTransaction
	if err := query.Order("date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
	}, nil
}

// Totals sums completed deposits and withdrawals for the wallet info view.
func (wl *WalletLedger) Totals(walletID uint) (deposits, withdrawals decimal.Decimal) {
	type row struct {
		Type  string
		Total decimal.Decimal
	}
	var rows []row
	wl.db.Model(&models.WalletTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) as total").
		Where("wallet_id = ? AND status = ?", walletID, models.TxCompleted).
		Group("type").
		Scan(&rows)

	deposits, withdrawals = decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch r.Type {
		case models.TxDeposit:
			deposits = r.Total
		case models.TxWithdrawal:
			withdrawals = r.Total
		}
	}
	return deposits, withdrawals
}
