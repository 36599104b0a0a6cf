package uow

import (
	"context"

	"stokvel-backend/internal/domain/applicant"
	"stokvel-backend/internal/domain/autofund"
	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/identity"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/treasury"
)

// Repos bundles every repository bound to the same transaction.
type Repos struct {
	Accounts   member.Repository
	Applicants applicant.Repository
	Identities identity.Repository
	Loans      loan.Repository
	Treasury   treasury.Repository
	Events     event.Repository
	AutoFund   autofund.Repository
}

type UnitOfWork interface {
	// WithinTx runs fn with exclusive access to the ledger. Any error from fn
	// discards every write made through r.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan first and passes it in; loan.ErrNotFound if absent.
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
	// Read returns repositories for read-only views outside a transaction.
	Read() Repos
}
