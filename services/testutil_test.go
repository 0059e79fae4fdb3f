package services

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"testing"

	"stablebank/config"
	"stablebank/database"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// sqlite allows a single writer; one pooled connection keeps concurrent
	// test goroutines from tripping over driver-level lock errors while the
	// version-CAS retry path still sees interleaved reads and writes.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestLedgers(t *testing.T) (*WalletLedger, *MortgageLedger) {
	t.Helper()
	db := newTestDB(t)
	wallets := NewWalletLedger(db)
	settlement := NewSettlementClient(&config.Config{}) // no gateway configured
	mortgages := NewMortgageLedger(db, wallets, settlement, "")
	return wallets, mortgages
}

func newTestAddress(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub)
}
