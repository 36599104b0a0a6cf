package loanmock

import (
	"context"

	domain "stokvel-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-ops; reads default to ErrNotFound or empty results.
type Repo struct {
	CreateFn             func(ctx context.Context, l *domain.Loan) error
	GetByIDFn            func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn   func(ctx context.Context, id uint64) (*domain.Loan, error)
	SaveFn               func(ctx context.Context, l *domain.Loan) error
	ListByBorrowerFn     func(ctx context.Context, borrower string) ([]domain.Loan, error)
	ListByStateFn        func(ctx context.Context, states ...domain.State) ([]domain.Loan, error)
	ContributionsFn      func(ctx context.Context, loanID uint64) ([]domain.Contribution, error)
	GetContributionFn    func(ctx context.Context, loanID uint64, lender string) (*domain.Contribution, error)
	CreateContributionFn func(ctx context.Context, c *domain.Contribution) error
	SaveContributionFn   func(ctx context.Context, c *domain.Contribution) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByBorrower(ctx context.Context, borrower string) ([]domain.Loan, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrower)
	}
	return nil, nil
}

func (m *Repo) ListByState(ctx context.Context, states ...domain.State) ([]domain.Loan, error) {
	if m.ListByStateFn != nil {
		return m.ListByStateFn(ctx, states...)
	}
	return nil, nil
}

func (m *Repo) Contributions(ctx context.Context, loanID uint64) ([]domain.Contribution, error) {
	if m.ContributionsFn != nil {
		return m.ContributionsFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) GetContribution(ctx context.Context, loanID uint64, lender string) (*domain.Contribution, error) {
	if m.GetContributionFn != nil {
		return m.GetContributionFn(ctx, loanID, lender)
	}
	return nil, nil
}

func (m *Repo) CreateContribution(ctx context.Context, c *domain.Contribution) error {
	if m.CreateContributionFn != nil {
		return m.CreateContributionFn(ctx, c)
	}
	return nil
}

func (m *Repo) SaveContribution(ctx context.Context, c *domain.Contribution) error {
	if m.SaveContributionFn != nil {
		return m.SaveContributionFn(ctx, c)
	}
	return nil
}
