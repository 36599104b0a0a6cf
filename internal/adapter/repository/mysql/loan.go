package mysql

import (
	"context"
	"errors"

	loanDomain "stokvel-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *LoanRepository) Tx(ctx context.Context, fn func(repo loanDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoanRepository{db: tx})
	})
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(l).Error; err != nil {
		return err
	}
	for i := range l.Installments {
		l.Installments[i].LoanID = l.ID
		if err := db.Save(&l.Installments[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *LoanRepository) get(db *gorm.DB, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := db.Preload("Installments", func(db *gorm.DB) *gorm.DB {
		return db.Order("idx ASC")
	}).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) ListByBorrower(ctx context.Context, borrower string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("borrower = ?", borrower).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListByState(ctx context.Context, states ...loanDomain.State) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("state IN ?", states).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) Contributions(ctx context.Context, loanID uint64) ([]loanDomain.Contribution, error) {
	var out []loanDomain.Contribution
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// GetContribution returns (nil, nil) when the lender has not funded the loan.
func (r *LoanRepository) GetContribution(ctx context.Context, loanID uint64, lender string) (*loanDomain.Contribution, error) {
	var out loanDomain.Contribution
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND lender = ?", loanID, lender).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) CreateContribution(ctx context.Context, c *loanDomain.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *LoanRepository) SaveContribution(ctx context.Context, c *loanDomain.Contribution) error {
	return r.db.WithContext(ctx).Save(c).Error
}
