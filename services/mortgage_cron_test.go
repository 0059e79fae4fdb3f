package services

import (
	"io"
	"log"
	"testing"
	"time"

	"stablebank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkOverdueMortgages(t *testing.T) {
	db := newTestDB(t)
	wallets := NewWalletLedger(db)
	mortgages := NewMortgageLedger(db, wallets, nil, "")

	overdue := activeMortgage(t, mortgages, newApplication(newTestAddress(t)))
	current := activeMortgage(t, mortgages, newApplication(newTestAddress(t)))
	pending, err := mortgages.CreateMortgage(newApplication(newTestAddress(t)))
	require.NoError(t, err)

	// Push one mortgage 40 days past due, keep the other within grace
	require.NoError(t, db.Model(&models.Mortgage{}).Where("id = ?", overdue.ID).
		Update("next_payment_date", time.Now().AddDate(0, 0, -40)).Error)
	require.NoError(t, db.Model(&models.Mortgage{}).Where("id = ?", current.ID).
		Update("next_payment_date", time.Now().AddDate(0, 0, -5)).Error)

	MarkOverdueMortgages(mortgages, db, log.New(io.Discard, "", 0))

	reloaded, err := mortgages.GetMortgage(overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDefaulted, reloaded.Status)

	reloaded, err = mortgages.GetMortgage(current.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, reloaded.Status)

	// Pending mortgages are never touched by the overdue check
	reloaded, err = mortgages.GetMortgage(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reloaded.Status)
}
