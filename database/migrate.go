package database

import (
	"stablebank/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Mortgage{},
		&models.MortgagePayment{},
	); err != nil {
		return err
	}

	// Composite indexes for the hot read paths
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_tx_wallet_date ON wallet_transactions(wallet_id, date DESC)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_tx_wallet_type ON wallet_transactions(wallet_id, type)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_mortgage_status_due ON mortgages(status, next_payment_date)`).Error; err != nil {
		return err
	}

	return nil
}
