package mysql

import (
	"context"
	"sync"

	"stokvel-backend/internal/domain/applicant"
	"stokvel-backend/internal/domain/autofund"
	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/identity"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/treasury"
	"stokvel-backend/internal/domain/uow"

	"gorm.io/gorm"
)

var _ uow.UnitOfWork = (*GormUoW)(nil)

// GormUoW serialises every mutating call behind one lock and runs it in a db
// transaction, so a call either commits fully or leaves no trace.
type GormUoW struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Accounts:   &MemberRepository{db: db},
		Applicants: &ApplicantRepository{db: db},
		Identities: &IdentityRepository{db: db},
		Loans:      &LoanRepository{db: db},
		Treasury:   &TreasuryRepository{db: db},
		Events:     &EventRepository{db: db},
		AutoFund:   &AutoFundRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (u *GormUoW) Read() uow.Repos { return reposFor(u.db) }

// Models lists every table owned by the ledger, in dependency order.
func Models() []any {
	return []any{
		&member.Club{},
		&member.Account{},
		&applicant.Applicant{},
		&applicant.Vote{},
		&identity.Binding{},
		&identity.BlacklistEntry{},
		&loan.Loan{},
		&loan.Installment{},
		&loan.Contribution{},
		&treasury.Treasury{},
		&treasury.Transfer{},
		&event.Event{},
		&autofund.Rule{},
	}
}

// Migrate creates or updates the ledger schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
