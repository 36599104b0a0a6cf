// Package repayment applies installment payments and shares them out to the
// loan's lenders in proportion to the principal each one funded.
package repayment

import (
	"context"
	"time"

	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/usecase/ledger"
	"stokvel-backend/pkg/prorate"
)

type Usecase struct{ run *ledger.Runner }

func NewUsecase(run *ledger.Runner) *Usecase { return &Usecase{run: run} }

type PaymentInput struct {
	Caller  string
	LoanID  uint64
	Payment uint64
	Now     time.Time
}

type PaymentDTO struct {
	LoanID    uint64        `json:"loan_id"`
	Index     int           `json:"index"`
	AmountDue uint64        `json:"amount_due"`
	LateFee   uint64        `json:"late_fee"`
	Principal uint64        `json:"principal"`
	Interest  uint64        `json:"interest"`
	Completed bool          `json:"completed"`
	Shares    []LenderShare `json:"shares"`
}

type LenderShare struct {
	Lender    string `json:"lender"`
	Principal uint64 `json:"principal"`
	Income    uint64 `json:"income"`
}

// MakeMonthlyPayment settles the next installment. The payment must equal the
// amount due plus the late fee as of Now.
func (u *Usecase) MakeMonthlyPayment(ctx context.Context, in PaymentInput) (*PaymentDTO, error) {
	var dto *PaymentDTO
	err := u.run.DoLoan(ctx, "make_payment", in.Now, in.LoanID, func(c *ledger.Call, l *loan.Loan) error {
		r := c.Repos
		switch l.State {
		case loan.StateDefaulted:
			return loan.ErrAlreadyDefaulted
		case loan.StateCompleted:
			return loan.ErrAlreadySettled
		case loan.StateActive:
		default:
			return loan.ErrNotActive
		}
		if l.Borrower != in.Caller {
			return loan.ErrNotBorrower
		}
		if l.Settled() {
			return loan.ErrAlreadySettled
		}
		inst := &l.Installments[l.NextInstallmentIndex]
		if inst.IsPaid {
			return loan.ErrAlreadyPaid
		}
		inst.LateFeesAccrued = loan.LateFee(*inst, c.Now)
		if in.Payment != inst.AmountDue+inst.LateFeesAccrued {
			return loan.ErrWrongAmount
		}
		if err := c.Receive(ctx, in.Payment); err != nil {
			return err
		}

		principal, interest := loan.Portions(l.AmountRequested, l.TotalInterest, inst.Idx)
		lenders, err := r.Loans.Contributions(ctx, l.ID)
		if err != nil {
			return err
		}
		parts := weights(lenders)
		pShares := prorate.Allocate(parts, l.AmountRequested, principal)
		iShares := prorate.Allocate(parts, l.AmountRequested, interest+inst.LateFeesAccrued)

		dto = &PaymentDTO{
			LoanID:    l.ID,
			Index:     inst.Idx,
			AmountDue: inst.AmountDue,
			LateFee:   inst.LateFeesAccrued,
			Principal: principal,
			Interest:  interest,
		}
		for i := range lenders {
			ct := &lenders[i]
			acc, err := r.Accounts.GetByAddress(ctx, ct.Lender)
			if err != nil {
				return err
			}
			p, inc := pShares[i].Amount, iShares[i].Amount
			acc.TotalSavings += p + inc
			acc.AmountLentOut -= min(p, acc.AmountLentOut)
			ct.PrincipalReturned += p
			if err := r.Accounts.Save(ctx, acc); err != nil {
				return err
			}
			if err := r.Loans.SaveContribution(ctx, ct); err != nil {
				return err
			}
			dto.Shares = append(dto.Shares, LenderShare{Lender: ct.Lender, Principal: p, Income: inc})
		}

		paidAt := c.Now
		inst.IsPaid = true
		inst.PaidAt = &paidAt
		l.NextInstallmentIndex++
		if l.Settled() {
			if err := u.complete(ctx, c, l, lenders); err != nil {
				return err
			}
			dto.Completed = true
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return c.Emit(ctx, event.InstallmentPaid, map[string]any{
			"loan_id": l.ID, "index": inst.Idx, "amount": in.Payment, "late_fee": inst.LateFeesAccrued, "completed": dto.Completed,
		})
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// complete releases the collateral and clears lent-out residue left by share
// truncation.
func (u *Usecase) complete(ctx context.Context, c *ledger.Call, l *loan.Loan, lenders []loan.Contribution) error {
	r := c.Repos
	l.State = loan.StateCompleted
	borrower, err := r.Accounts.GetByAddress(ctx, l.Borrower)
	if err != nil {
		return err
	}
	borrower.AmountLockedCollateral -= min(l.CollateralLocked, borrower.AmountLockedCollateral)
	if err := r.Accounts.Save(ctx, borrower); err != nil {
		return err
	}
	for i := range lenders {
		ct := &lenders[i]
		residue := ct.Outstanding()
		if residue == 0 {
			continue
		}
		acc, err := r.Accounts.GetByAddress(ctx, ct.Lender)
		if err != nil {
			return err
		}
		acc.AmountLentOut -= min(residue, acc.AmountLentOut)
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
	}
	c.Log().Info("loan completed", "loan_id", l.ID, "borrower", l.Borrower, "collateral_released", l.CollateralLocked)
	return nil
}

func weights(cs []loan.Contribution) []prorate.Part {
	out := make([]prorate.Part, len(cs))
	for i, c := range cs {
		out[i] = prorate.Part{Key: c.Lender, Weight: c.Amount}
	}
	return out
}
