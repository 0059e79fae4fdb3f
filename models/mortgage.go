package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Mortgage представляет один ипотечный кредит
type Mortgage struct {
	ID                     uint            `json:"id" gorm:"primaryKey"`
	BorrowerWallet         string          `json:"borrower_wallet" gorm:"not null;index:idx_mortgage_borrower"`
	PropertyValue          decimal.Decimal `json:"property_value" gorm:"type:decimal(18,2);not null"`
	LoanAmount             decimal.Decimal `json:"loan_amount" gorm:"type:decimal(18,2);not null"` // outstanding balance, decremented by each payment's principal
	InterestRate           decimal.Decimal `json:"interest_rate" gorm:"type:decimal(5,2);not null"`
	TermYears              int             `json:"term_years" gorm:"not null"`
	MonthlyPayment         decimal.Decimal `json:"monthly_payment" gorm:"type:decimal(18,2);not null"` // fixed at creation, never recomputed
	PropertyAddress        string          `json:"property_address" gorm:"not null"`
	StartDate              time.Time       `json:"start_date"`
	Status                 string          `json:"status" gorm:"default:'pending';index:idx_mortgage_status"`
	NextPaymentDate        time.Time       `json:"next_payment_date" gorm:"not null"`
	RemainingPayments      int             `json:"remaining_payments" gorm:"not null"`
	CollateralizationRatio decimal.Decimal `json:"collateralization_ratio" gorm:"type:decimal(5,2);not null"` // LTV at origination, immutable
	OnChainMortgageID      string          `json:"on_chain_mortgage_id"`
	Version                int64           `json:"-" gorm:"not null;default:0"` // optimistic lock counter
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	DeletedAt              gorm.DeletedAt  `json:"deleted_at" gorm:"index"`

	Payments []MortgagePayment `json:"payments,omitempty" gorm:"foreignKey:MortgageID"`
}

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentMissed    = "missed"
)

// MortgagePayment - одна запись в платежной истории ипотеки (append-only)
type MortgagePayment struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	MortgageID    uint            `json:"mortgage_id" gorm:"not null;index:idx_payment_mortgage"`
	Reference     string          `json:"reference" gorm:"uniqueIndex;not null"` // internal uuid reference
	Date          time.Time       `json:"date" gorm:"not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Status        string          `json:"status" gorm:"not null"`
	Principal     decimal.Decimal `json:"principal" gorm:"type:decimal(18,2);not null"`
	Interest      decimal.Decimal `json:"interest" gorm:"type:decimal(18,2);not null"`
	SettlementSig string          `json:"settlement_sig"`           // chain transaction signature, empty until settled
	SettlementRaw datatypes.JSON  `json:"settlement_raw,omitempty"` // raw gateway response, kept for reconciliation
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (MortgagePayment) TableName() string {
	return "mortgage_payments"
}

// CreateMortgageRequest структура для подачи заявки на ипотеку
type CreateMortgageRequest struct {
	BorrowerWallet  string          `json:"borrower_wallet" binding:"required"`
	PropertyValue   decimal.Decimal `json:"property_value" binding:"required"`
	LoanAmount      decimal.Decimal `json:"loan_amount" binding:"required"`
	InterestRate    decimal.Decimal `json:"interest_rate" binding:"required"`
	TermYears       int             `json:"term_years" binding:"required,min=1,max=30"`
	PropertyAddress string          `json:"property_address" binding:"required"`
}

// MakePaymentRequest структура для платежа по ипотеке
type MakePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	WalletAddress string          `json:"wallet_address" binding:"required"`
}

// UpdateStatusRequest структура для смены статуса ипотеки
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
