package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxPayment    = "payment"
	TxReceipt    = "receipt"
)

// Transaction statuses.
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
)

// Wallet - кастодиальный баланс одного адреса
type Wallet struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Address    string          `json:"address" gorm:"uniqueIndex;not null"`
	Balance    decimal.Decimal `json:"balance" gorm:"type:decimal(18,2);not null;default:0"` // never negative
	IsVerified bool            `json:"is_verified" gorm:"default:false"`
	Version    int64           `json:"-" gorm:"not null;default:0"` // optimistic lock counter
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"deleted_at" gorm:"index"`

	Transactions []WalletTransaction `json:"transactions,omitempty" gorm:"foreignKey:WalletID"`
}

// WalletTransaction - одна запись в журнале операций кошелька (append-only)
type WalletTransaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	WalletID        uint            `json:"wallet_id" gorm:"not null;index:idx_tx_wallet"`
	Date            time.Time       `json:"date" gorm:"not null;index:idx_tx_date"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Type            string          `json:"type" gorm:"not null;index:idx_tx_type"`
	Description     string          `json:"description" gorm:"not null"`
	Status          string          `json:"status" gorm:"not null;default:'pending'"`
	SettlementSig   string          `json:"settlement_sig"`
	RelatedEntityID string          `json:"related_entity_id"` // mortgage payment reference, when applicable
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// CreateWalletRequest структура для регистрации кошелька
type CreateWalletRequest struct {
	Address string `json:"address" binding:"required"`
}

// AmountRequest структура для депозита и вывода средств
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// VerifyWalletRequest структура для подтверждения владения кошельком
type VerifyWalletRequest struct {
	Signature string `json:"signature" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// WalletInfoResponse структура ответа с информацией о кошельке
type WalletInfoResponse struct {
	Address          string          `json:"address"`
	Balance          decimal.Decimal `json:"balance"`
	IsVerified       bool            `json:"is_verified"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TransactionCount int64           `json:"transaction_count"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TransactionListResponse структура для списка операций с пагинацией
type TransactionListResponse struct {
	Transactions []WalletTransaction `json:"transactions"`
	Total        int64               `json:"total"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	TotalPages   int                 `json:"total_pages"`
}
