package mysql

import (
	"testing"
	"time"

	loanDomain "stokvel-backend/internal/domain/loan"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full ledger schema.
// One connection only: every connection to ":memory:" is a separate database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeLoan(borrower string, amount uint64, now time.Time) *loanDomain.Loan {
	return &loanDomain.Loan{
		Borrower:         borrower,
		AmountRequested:  amount,
		CollateralLocked: loanDomain.RequiredCollateral(amount),
		TotalInterest:    loanDomain.TotalInterest(amount),
		State:            loanDomain.StateRequested,
		Installments:     loanDomain.BuildSchedule(amount, now),
		CreatedAt:        now,
	}
}
