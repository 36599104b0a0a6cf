// Package lending runs the loan lifecycle up to disbursement: request with
// collateral, pooled funding from lenders and the payout to the borrower.
package lending

import (
	"context"
	"errors"
	"time"

	"stokvel-backend/internal/domain/apperr"
	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/domain/policy"
	"stokvel-backend/internal/domain/treasury"
	"stokvel-backend/internal/usecase/ledger"
)

type Usecase struct{ run *ledger.Runner }

func NewUsecase(run *ledger.Runner) *Usecase { return &Usecase{run: run} }

// RequestLoan locks the collateral and writes the 12 installment schedule.
func (u *Usecase) RequestLoan(ctx context.Context, in RequestInput) (*LoanDTO, error) {
	if in.Amount == 0 {
		return nil, apperr.ErrZeroAmount
	}
	var dto *LoanDTO
	err := u.run.Do(ctx, "request_loan", in.Now, func(c *ledger.Call) error {
		borrower, err := c.ActiveMember(ctx, in.Caller)
		if err != nil {
			return err
		}
		collateral := loan.RequiredCollateral(in.Amount)
		if borrower.AvailableSavings() < collateral {
			return loan.ErrInsufficientCollateral
		}
		borrower.AmountLockedCollateral += collateral
		if err := c.Repos.Accounts.Save(ctx, borrower); err != nil {
			return err
		}

		l := &loan.Loan{
			Borrower:         in.Caller,
			AmountRequested:  in.Amount,
			CollateralLocked: collateral,
			TotalInterest:    loan.TotalInterest(in.Amount),
			State:            loan.StateRequested,
			Installments:     loan.BuildSchedule(in.Amount, c.Now),
			CreatedAt:        c.Now,
		}
		if err := c.Repos.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.LoanRequested, map[string]any{
			"loan_id": l.ID, "borrower": l.Borrower, "amount": l.AmountRequested, "collateral": collateral,
		}); err != nil {
			return err
		}
		c.Log().Info("loan requested", "loan_id", l.ID, "borrower", l.Borrower, "amount", l.AmountRequested)
		dto = toDTO(l, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// FundLoan moves up to the remaining principal from the caller's available
// savings into the loan. Reaching full funding triggers disbursement; a failed
// disbursement keeps the contribution and leaves the loan in funding.
func (u *Usecase) FundLoan(ctx context.Context, in FundInput) (*FundResult, error) {
	if in.Amount == 0 {
		return nil, apperr.ErrZeroAmount
	}
	var res *FundResult
	err := u.run.DoLoan(ctx, "fund_loan", in.Now, in.LoanID, func(c *ledger.Call, l *loan.Loan) error {
		r := c.Repos
		switch l.State {
		case loan.StateActive, loan.StateCompleted:
			return loan.ErrAlreadyActive
		case loan.StateDefaulted:
			return loan.ErrAlreadyDefaulted
		}
		if l.Remaining() == 0 {
			return loan.ErrFullyFunded
		}
		if l.Borrower == in.Caller {
			return loan.ErrSelfFunding
		}
		if err := borrowerActive(ctx, c, l); err != nil {
			return err
		}
		lender, err := c.ActiveMember(ctx, in.Caller)
		if err != nil {
			return err
		}

		amount := min(in.Amount, l.Remaining())
		available := lender.AvailableSavings()
		if amount > available*policy.LendingLimitPercent/100 || amount > available {
			return loan.ErrInsufficientAvailableSavings
		}
		lender.TotalSavings -= amount
		lender.AmountLentOut += amount
		if err := r.Accounts.Save(ctx, lender); err != nil {
			return err
		}

		contrib, err := r.Loans.GetContribution(ctx, l.ID, lender.Address)
		if err != nil {
			return err
		}
		if contrib == nil {
			existing, err := r.Loans.Contributions(ctx, l.ID)
			if err != nil {
				return err
			}
			contrib = &loan.Contribution{LoanID: l.ID, Lender: lender.Address, Amount: amount, Seq: len(existing)}
			if err := r.Loans.CreateContribution(ctx, contrib); err != nil {
				return err
			}
		} else {
			contrib.Amount += amount
			if err := r.Loans.SaveContribution(ctx, contrib); err != nil {
				return err
			}
		}

		l.AmountFunded += amount
		l.State = loan.StateFunding
		if err := c.Emit(ctx, event.LoanFunded, map[string]any{
			"loan_id": l.ID, "lender": lender.Address, "amount": amount, "amount_funded": l.AmountFunded,
		}); err != nil {
			return err
		}

		res = &FundResult{Funded: amount}
		if l.Remaining() == 0 {
			derr := u.disburse(ctx, c, l)
			switch {
			case derr == nil:
				res.Disbursed = true
			case isTransferFailure(derr):
				c.Log().Warn("disbursement failed; loan stays in funding", "loan_id", l.ID, "error", derr)
				res.DisbursementError = derr.Error()
			default:
				return derr
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		lenders, err := r.Loans.Contributions(ctx, l.ID)
		if err != nil {
			return err
		}
		res.Loan = toDTO(l, lenders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RetryDisbursement pays out a fully funded loan whose earlier disbursement
// failed.
func (u *Usecase) RetryDisbursement(ctx context.Context, caller string, loanID uint64, now time.Time) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.run.DoLoan(ctx, "retry_disbursement", now, loanID, func(c *ledger.Call, l *loan.Loan) error {
		if _, err := c.ActiveMember(ctx, caller); err != nil {
			return err
		}
		switch l.State {
		case loan.StateActive, loan.StateCompleted:
			return loan.ErrAlreadyActive
		case loan.StateDefaulted:
			return loan.ErrAlreadyDefaulted
		}
		if l.Remaining() != 0 {
			return loan.ErrNotFullyFunded
		}
		if err := borrowerActive(ctx, c, l); err != nil {
			return err
		}
		if err := u.disburse(ctx, c, l); err != nil {
			return err
		}
		if err := c.Repos.Loans.Save(ctx, l); err != nil {
			return err
		}
		lenders, err := c.Repos.Loans.Contributions(ctx, l.ID)
		if err != nil {
			return err
		}
		dto = toDTO(l, lenders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// disburse sends the full principal to the borrower and activates the loan.
func (u *Usecase) disburse(ctx context.Context, c *ledger.Call, l *loan.Loan) error {
	id := l.ID
	t, err := c.Pay(ctx, l.Borrower, l.AmountRequested, treasury.ReasonDisbursement, &id)
	if err != nil {
		return err
	}
	l.State = loan.StateActive
	c.Log().Info("loan disbursed", "loan_id", l.ID, "borrower", l.Borrower, "amount", l.AmountRequested, "transfer_id", t.TransferID)
	return c.Emit(ctx, event.LoanDisbursed, map[string]any{
		"loan_id": l.ID, "borrower": l.Borrower, "amount": l.AmountRequested, "transfer_id": t.TransferID,
	})
}

// borrowerActive refuses to move principal towards a borrower who defaulted
// or closed their account after requesting the loan.
func borrowerActive(ctx context.Context, c *ledger.Call, l *loan.Loan) error {
	b, err := c.Repos.Accounts.GetByAddress(ctx, l.Borrower)
	if err != nil {
		return err
	}
	if !b.IsActive {
		return loan.ErrBorrowerInactive
	}
	return nil
}

func isTransferFailure(err error) bool {
	return errors.Is(err, treasury.ErrPayoutFailed) || errors.Is(err, treasury.ErrShortfall)
}
