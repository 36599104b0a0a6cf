// Package autofund lends on members' behalf according to their standing
// rules. Every funding goes through the regular lending path.
package autofund

import (
	"context"
	"time"

	"stokvel-backend/internal/domain/apperr"
	domainAutofund "stokvel-backend/internal/domain/autofund"
	"stokvel-backend/internal/usecase/ledger"
	"stokvel-backend/internal/usecase/lending"
)

type Usecase struct {
	run     *ledger.Runner
	lending *lending.Usecase
}

func NewUsecase(run *ledger.Runner, l *lending.Usecase) *Usecase {
	return &Usecase{run: run, lending: l}
}

type RuleInput struct {
	Caller            string
	MaxFundAmount     uint64
	MinSavingsBalance uint64
	IsActive          bool
	Now               time.Time
}

type RuleDTO struct {
	Address           string `json:"address"`
	MaxFundAmount     uint64 `json:"max_fund_amount"`
	MinSavingsBalance uint64 `json:"min_savings_balance"`
	IsActive          bool   `json:"is_active"`
}

// Attempt is the outcome of one rule against one loan.
type Attempt struct {
	Lender  string `json:"lender"`
	Amount  uint64 `json:"amount"`
	Funded  uint64 `json:"funded"`
	Skipped string `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (u *Usecase) SetRule(ctx context.Context, in RuleInput) (*RuleDTO, error) {
	if in.IsActive && in.MaxFundAmount == 0 {
		return nil, apperr.ErrZeroAmount
	}
	rule := &domainAutofund.Rule{
		Address:           in.Caller,
		MaxFundAmount:     in.MaxFundAmount,
		MinSavingsBalance: in.MinSavingsBalance,
		IsActive:          in.IsActive,
	}
	err := u.run.Do(ctx, "set_autofund_rule", in.Now, func(c *ledger.Call) error {
		if _, err := c.ActiveMember(ctx, in.Caller); err != nil {
			return err
		}
		return c.Repos.AutoFund.Upsert(ctx, rule)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(rule), nil
}

// GetRule returns (nil, nil) when the member never set a rule.
func (u *Usecase) GetRule(ctx context.Context, address string) (*RuleDTO, error) {
	rule, err := u.run.Read().AutoFund.Get(ctx, address)
	if err != nil || rule == nil {
		return nil, err
	}
	return toDTO(rule), nil
}

// Run offers the loan to every active rule in address order until it is fully
// funded. Failures are recorded and skipped.
func (u *Usecase) Run(ctx context.Context, loanID uint64, now time.Time) ([]Attempt, error) {
	r := u.run.Read()
	rules, err := r.AutoFund.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	log := u.run.Logger()
	out := []Attempt{}
	for _, rule := range rules {
		l, err := r.Loans.GetByID(ctx, loanID)
		if err != nil {
			return out, err
		}
		remaining := l.Remaining()
		if remaining == 0 {
			break
		}
		a := Attempt{Lender: rule.Address, Amount: min(rule.MaxFundAmount, remaining)}
		if rule.Address == l.Borrower {
			a.Skipped = "borrower"
			out = append(out, a)
			continue
		}
		acc, err := r.Accounts.GetByAddress(ctx, rule.Address)
		if err != nil || !acc.IsActive {
			a.Skipped = "inactive"
			out = append(out, a)
			continue
		}
		available := acc.AvailableSavings()
		if available < rule.MinSavingsBalance || available < a.Amount {
			a.Skipped = "insufficient_savings"
			out = append(out, a)
			continue
		}

		res, err := u.lending.FundLoan(ctx, lending.FundInput{Caller: rule.Address, LoanID: loanID, Amount: a.Amount, Now: now})
		if err != nil {
			log.Info("autofund attempt failed", "loan_id", loanID, "lender", rule.Address, "amount", a.Amount, "error", err)
			a.Error = apperr.CodeOf(err)
			out = append(out, a)
			continue
		}
		a.Funded = res.Funded
		log.Info("autofund", "loan_id", loanID, "lender", rule.Address, "funded", res.Funded, "disbursed", res.Disbursed)
		out = append(out, a)
	}
	return out, nil
}

func toDTO(r *domainAutofund.Rule) *RuleDTO {
	return &RuleDTO{
		Address:           r.Address,
		MaxFundAmount:     r.MaxFundAmount,
		MinSavingsBalance: r.MinSavingsBalance,
		IsActive:          r.IsActive,
	}
}
