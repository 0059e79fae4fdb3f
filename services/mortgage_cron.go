package services

import (
	"log"
	"os"
	"time"

	"stablebank/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// overdueGrace is how far past the due date a mortgage may run before it is
// marked defaulted.
const overdueGrace = 30 * 24 * time.Hour

// MarkOverdueMortgages transitions every active mortgage whose next payment is
// more than the grace period overdue to defaulted, through the normal
// lifecycle path so the transition table stays authoritative.
func MarkOverdueMortgages(ledger *MortgageLedger, db *gorm.DB, logger *log.Logger) {
	cutoff := time.Now().Add(-overdueGrace)

	var overdue []models.Mortgage
	if err := db.Where("status = ? AND next_payment_date < ?", models.StatusActive, cutoff).
		Find(&overdue).Error; err != nil {
		logger.Printf("overdue scan failed: %v", err)
		return
	}

	for _, m := range overdue {
		if _, err := ledger.ChangeStatus(m.ID, models.StatusDefaulted); err != nil {
			logger.Printf("failed to default mortgage %d: %v", m.ID, err)
			continue
		}
		logger.Printf("mortgage %d defaulted, payment was due %s", m.ID, m.NextPaymentDate.Format("2006-01-02"))
	}
}

func StartMortgageCron(ledger *MortgageLedger, db *gorm.DB) {
	c := cron.New()
	c.AddFunc("@daily", func() {
		logFile, _ := os.OpenFile("logs/overdue_errors.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		logger := log.New(logFile, "", log.LstdFlags)
		defer logFile.Close()

		MarkOverdueMortgages(ledger, db, logger)
	})
	c.Start()
	log.Printf("[MORTGAGE CRON] Overdue check scheduled daily")
}
