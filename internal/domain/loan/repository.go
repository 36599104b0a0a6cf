package loan

import "context"

type Repository interface {
	// Create persists the loan and its installments and assigns l.ID.
	Create(ctx context.Context, l *Loan) error
	// GetByID loads the loan with installments ordered by index; ErrNotFound if absent.
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate is GetByID with a row lock where the engine supports one.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	// Save persists the loan row and every loaded installment.
	Save(ctx context.Context, l *Loan) error
	ListByBorrower(ctx context.Context, borrower string) ([]Loan, error)
	ListByState(ctx context.Context, states ...State) ([]Loan, error)

	// Contributions returns the lenders of a loan in funding order.
	Contributions(ctx context.Context, loanID uint64) ([]Contribution, error)
	GetContribution(ctx context.Context, loanID uint64, lender string) (*Contribution, error)
	CreateContribution(ctx context.Context, c *Contribution) error
	SaveContribution(ctx context.Context, c *Contribution) error
}
