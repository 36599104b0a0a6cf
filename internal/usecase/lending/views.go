package lending

import (
	"context"
	"time"

	"stokvel-backend/internal/domain/loan"
)

// GetLoan returns the loan with its schedule and lenders in funding order.
func (u *Usecase) GetLoan(ctx context.Context, id uint64) (*LoanDTO, error) {
	r := u.run.Read()
	l, err := r.Loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lenders, err := r.Loans.Contributions(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(l, lenders), nil
}

// OpenLoans lists loans still accepting funds.
func (u *Usecase) OpenLoans(ctx context.Context) ([]LoanDTO, error) {
	ls, err := u.run.Read().Loans.ListByState(ctx, loan.StateRequested, loan.StateFunding)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		if ls[i].Remaining() == 0 {
			continue
		}
		out = append(out, *summary(&ls[i]))
	}
	return out, nil
}

func (u *Usecase) LoansByBorrower(ctx context.Context, borrower string) ([]LoanDTO, error) {
	ls, err := u.run.Read().Loans.ListByBorrower(ctx, borrower)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *summary(&ls[i]))
	}
	return out, nil
}

// Quote computes what MakeMonthlyPayment would require at now without
// recording anything.
func (u *Usecase) Quote(ctx context.Context, id uint64, now time.Time) (*QuoteDTO, error) {
	l, err := u.run.Read().Loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch l.State {
	case loan.StateDefaulted:
		return nil, loan.ErrAlreadyDefaulted
	case loan.StateActive:
	default:
		if l.Settled() {
			return nil, loan.ErrAlreadySettled
		}
		return nil, loan.ErrNotActive
	}
	if l.Settled() {
		return nil, loan.ErrAlreadySettled
	}
	inst := l.Installments[l.NextInstallmentIndex]
	fee := loan.LateFee(inst, now)
	return &QuoteDTO{
		LoanID:    l.ID,
		Index:     inst.Idx,
		DueDate:   inst.DueDate,
		AmountDue: inst.AmountDue,
		LateFee:   fee,
		Total:     inst.AmountDue + fee,
		At:        now,
	}, nil
}

func summary(l *loan.Loan) *LoanDTO {
	dto := toDTO(l, nil)
	dto.Installments = nil
	return dto
}
