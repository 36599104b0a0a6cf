// Package defaults detects defaulted loans, seizes the borrower's collateral
// for the lenders and blacklists the borrower's identity.
package defaults

import (
	"context"
	"time"

	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/identity"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/domain/policy"
	"stokvel-backend/internal/usecase/ledger"
	"stokvel-backend/pkg/prorate"
)

type Usecase struct{ run *ledger.Runner }

func NewUsecase(run *ledger.Runner) *Usecase { return &Usecase{run: run} }

type CheckInput struct {
	Caller string
	LoanID uint64
	Now    time.Time
}

type DefaultDTO struct {
	LoanID           uint64          `json:"loan_id"`
	Borrower         string          `json:"borrower"`
	Missed           int             `json:"missed_installments"`
	CollateralSeized uint64          `json:"collateral_seized"`
	Shares           []prorate.Share `json:"shares"`
}

type OverdueDTO struct {
	LoanID      uint64    `json:"loan_id"`
	Borrower    string    `json:"borrower"`
	Index       int       `json:"index"`
	DueDate     time.Time `json:"due_date"`
	DaysOverdue int       `json:"days_overdue"`
	Missed      int       `json:"missed_installments"`
}

// CheckLoanDefault defaults the loan when at least DefaultThreshold
// installments are overdue and unpaid.
func (u *Usecase) CheckLoanDefault(ctx context.Context, in CheckInput) (*DefaultDTO, error) {
	var dto *DefaultDTO
	err := u.run.DoLoan(ctx, "check_default", in.Now, in.LoanID, func(c *ledger.Call, l *loan.Loan) error {
		r := c.Repos
		if _, err := c.ActiveMember(ctx, in.Caller); err != nil {
			return err
		}
		switch l.State {
		case loan.StateDefaulted:
			return loan.ErrAlreadyDefaulted
		case loan.StateActive:
		default:
			return loan.ErrNotActive
		}
		missed := loan.MissedInstallments(l.Installments, l.NextInstallmentIndex, c.Now)
		if missed < policy.DefaultThreshold {
			return loan.ErrNoDefaultDetected
		}

		borrower, err := r.Accounts.GetByAddress(ctx, l.Borrower)
		if err != nil {
			return err
		}
		seized := min(l.CollateralLocked, borrower.AmountLockedCollateral)
		borrower.AmountLockedCollateral -= seized
		borrower.TotalSavings -= min(seized, borrower.TotalSavings)
		wasActive := borrower.IsActive
		borrower.IsActive = false
		if err := r.Accounts.Save(ctx, borrower); err != nil {
			return err
		}

		lenders, err := r.Loans.Contributions(ctx, l.ID)
		if err != nil {
			return err
		}
		parts := make([]prorate.Part, len(lenders))
		for i, ct := range lenders {
			parts[i] = prorate.Part{Key: ct.Lender, Weight: ct.Amount}
		}
		shares := prorate.Allocate(parts, l.AmountRequested, seized)
		for i := range lenders {
			ct := &lenders[i]
			acc, err := r.Accounts.GetByAddress(ctx, ct.Lender)
			if err != nil {
				return err
			}
			acc.TotalSavings += shares[i].Amount
			acc.AmountLentOut -= min(ct.Outstanding(), acc.AmountLentOut)
			ct.PrincipalReturned = ct.Amount
			if err := r.Accounts.Save(ctx, acc); err != nil {
				return err
			}
			if err := r.Loans.SaveContribution(ctx, ct); err != nil {
				return err
			}
		}

		if wasActive {
			club, err := r.Accounts.GetClub(ctx)
			if err != nil {
				return err
			}
			if club.TotalMembers > 0 {
				club.TotalMembers--
			}
			if err := r.Accounts.SaveClub(ctx, club); err != nil {
				return err
			}
		}
		if err := r.Identities.AddToBlacklist(ctx, &identity.BlacklistEntry{
			HashedID: borrower.HashedID, Address: borrower.Address, LoanID: l.ID,
		}); err != nil {
			return err
		}

		l.State = loan.StateDefaulted
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.LoanDefaulted, map[string]any{
			"loan_id": l.ID, "borrower": l.Borrower, "missed": missed, "collateral_seized": seized, "was_active": wasActive,
		}); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.MemberBlacklisted, map[string]any{
			"address": borrower.Address, "hashed_id": borrower.HashedID, "loan_id": l.ID,
		}); err != nil {
			return err
		}
		c.Log().Warn("loan defaulted", "loan_id", l.ID, "borrower", l.Borrower, "missed", missed, "seized", seized)

		dto = &DefaultDTO{LoanID: l.ID, Borrower: l.Borrower, Missed: missed, CollateralSeized: seized, Shares: shares}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ScanOverdue lists active loans whose next installment is more than
// OverdueAlertAfter past due. It never changes state.
func (u *Usecase) ScanOverdue(ctx context.Context, now time.Time) ([]OverdueDTO, error) {
	ls, err := u.run.Read().Loans.ListByState(ctx, loan.StateActive)
	if err != nil {
		return nil, err
	}
	out := []OverdueDTO{}
	for _, l := range ls {
		if l.Settled() || l.NextInstallmentIndex >= len(l.Installments) {
			continue
		}
		next := l.Installments[l.NextInstallmentIndex]
		late := now.Sub(next.DueDate)
		if late <= policy.OverdueAlertAfter {
			continue
		}
		out = append(out, OverdueDTO{
			LoanID:      l.ID,
			Borrower:    l.Borrower,
			Index:       next.Idx,
			DueDate:     next.DueDate,
			DaysOverdue: int(late / (24 * time.Hour)),
			Missed:      loan.MissedInstallments(l.Installments, l.NextInstallmentIndex, now),
		})
	}
	return out, nil
}
