package http

import (
	"time"

	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/usecase/admission"
	"stokvel-backend/internal/usecase/autofund"
	"stokvel-backend/internal/usecase/defaults"
	"stokvel-backend/internal/usecase/ledger"
	"stokvel-backend/internal/usecase/lending"
	"stokvel-backend/internal/usecase/repayment"
)

// Presenter renders smallest-unit integers as fixed-point decimal strings.
// Ledger arithmetic never leaves integers; only the wire format changes.
type Presenter struct{ decimals int32 }

func NewPresenter(decimals int32) Presenter { return Presenter{decimals: decimals} }

func (p Presenter) Amount(v uint64) string {
	return fromUnits(v).Shift(-p.decimals).StringFixed(p.decimals)
}

type accountResp struct {
	Address                string    `json:"address"`
	IsActive               bool      `json:"is_active"`
	TotalSavings           string    `json:"total_savings"`
	AvailableSavings       string    `json:"available_savings"`
	AmountLentOut          string    `json:"amount_lent_out"`
	AmountLockedCollateral string    `json:"amount_locked_collateral"`
	JoinedAt               time.Time `json:"joined_at"`
}

func (p Presenter) Account(a *ledger.AccountDTO) accountResp {
	return accountResp{
		Address:                a.Address,
		IsActive:               a.IsActive,
		TotalSavings:           p.Amount(a.TotalSavings),
		AvailableSavings:       p.Amount(a.AvailableSavings),
		AmountLentOut:          p.Amount(a.AmountLentOut),
		AmountLockedCollateral: p.Amount(a.AmountLockedCollateral),
		JoinedAt:               a.JoinedAt,
	}
}

type clubResp struct {
	Creator         string `json:"creator"`
	TotalMembers    uint64 `json:"total_members"`
	TreasuryBalance string `json:"treasury_balance"`
	JoiningFee      string `json:"joining_fee"`
}

func (p Presenter) Club(c *admission.ClubDTO) clubResp {
	return clubResp{
		Creator:         c.Creator,
		TotalMembers:    c.TotalMembers,
		TreasuryBalance: p.Amount(c.TreasuryBalance),
		JoiningFee:      p.Amount(c.JoiningFee),
	}
}

type installmentResp struct {
	Index           int        `json:"index"`
	DueDate         time.Time  `json:"due_date"`
	AmountDue       string     `json:"amount_due"`
	LateFeesAccrued string     `json:"late_fees_accrued"`
	IsPaid          bool       `json:"is_paid"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

type lenderResp struct {
	Address           string `json:"address"`
	Amount            string `json:"amount"`
	PrincipalReturned string `json:"principal_returned"`
}

type loanResp struct {
	LoanID               uint64            `json:"loan_id"`
	Borrower             string            `json:"borrower"`
	AmountRequested      string            `json:"amount_requested"`
	AmountFunded         string            `json:"amount_funded"`
	CollateralLocked     string            `json:"collateral_locked"`
	TotalInterest        string            `json:"total_interest"`
	TotalRepayment       string            `json:"total_repayment"`
	State                loan.State        `json:"state"`
	NextInstallmentIndex int               `json:"next_installment_index"`
	CreatedAt            time.Time         `json:"created_at"`
	Installments         []installmentResp `json:"installments,omitempty"`
	Lenders              []lenderResp      `json:"lenders,omitempty"`
}

func (p Presenter) Loan(l *lending.LoanDTO) loanResp {
	out := loanResp{
		LoanID:               l.LoanID,
		Borrower:             l.Borrower,
		AmountRequested:      p.Amount(l.AmountRequested),
		AmountFunded:         p.Amount(l.AmountFunded),
		CollateralLocked:     p.Amount(l.CollateralLocked),
		TotalInterest:        p.Amount(l.TotalInterest),
		TotalRepayment:       p.Amount(l.TotalRepayment),
		State:                l.State,
		NextInstallmentIndex: l.NextInstallmentIndex,
		CreatedAt:            l.CreatedAt,
	}
	for _, in := range l.Installments {
		out.Installments = append(out.Installments, installmentResp{
			Index:           in.Index,
			DueDate:         in.DueDate,
			AmountDue:       p.Amount(in.AmountDue),
			LateFeesAccrued: p.Amount(in.LateFeesAccrued),
			IsPaid:          in.IsPaid,
			PaidAt:          in.PaidAt,
		})
	}
	for _, le := range l.Lenders {
		out.Lenders = append(out.Lenders, lenderResp{
			Address:           le.Address,
			Amount:            p.Amount(le.Amount),
			PrincipalReturned: p.Amount(le.PrincipalReturned),
		})
	}
	return out
}

func (p Presenter) Loans(ls []lending.LoanDTO) []loanResp {
	out := make([]loanResp, 0, len(ls))
	for i := range ls {
		out = append(out, p.Loan(&ls[i]))
	}
	return out
}

type fundResp struct {
	Loan              loanResp `json:"loan"`
	Funded            string   `json:"funded"`
	Disbursed         bool     `json:"disbursed"`
	DisbursementError string   `json:"disbursement_error,omitempty"`
}

func (p Presenter) Fund(r *lending.FundResult) fundResp {
	return fundResp{
		Loan:              p.Loan(r.Loan),
		Funded:            p.Amount(r.Funded),
		Disbursed:         r.Disbursed,
		DisbursementError: r.DisbursementError,
	}
}

type quoteResp struct {
	LoanID    uint64    `json:"loan_id"`
	Index     int       `json:"index"`
	DueDate   time.Time `json:"due_date"`
	AmountDue string    `json:"amount_due"`
	LateFee   string    `json:"late_fee"`
	Total     string    `json:"total"`
	At        time.Time `json:"at"`
}

func (p Presenter) Quote(q *lending.QuoteDTO) quoteResp {
	return quoteResp{
		LoanID:    q.LoanID,
		Index:     q.Index,
		DueDate:   q.DueDate,
		AmountDue: p.Amount(q.AmountDue),
		LateFee:   p.Amount(q.LateFee),
		Total:     p.Amount(q.Total),
		At:        q.At,
	}
}

type shareResp struct {
	Lender    string `json:"lender"`
	Principal string `json:"principal,omitempty"`
	Income    string `json:"income,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

type paymentResp struct {
	LoanID    uint64      `json:"loan_id"`
	Index     int         `json:"index"`
	AmountDue string      `json:"amount_due"`
	LateFee   string      `json:"late_fee"`
	Principal string      `json:"principal"`
	Interest  string      `json:"interest"`
	Completed bool        `json:"completed"`
	Shares    []shareResp `json:"shares"`
}

func (p Presenter) Payment(r *repayment.PaymentDTO) paymentResp {
	out := paymentResp{
		LoanID:    r.LoanID,
		Index:     r.Index,
		AmountDue: p.Amount(r.AmountDue),
		LateFee:   p.Amount(r.LateFee),
		Principal: p.Amount(r.Principal),
		Interest:  p.Amount(r.Interest),
		Completed: r.Completed,
		Shares:    make([]shareResp, 0, len(r.Shares)),
	}
	for _, s := range r.Shares {
		out.Shares = append(out.Shares, shareResp{
			Lender:    s.Lender,
			Principal: p.Amount(s.Principal),
			Income:    p.Amount(s.Income),
		})
	}
	return out
}

type defaultResp struct {
	LoanID           uint64      `json:"loan_id"`
	Borrower         string      `json:"borrower"`
	Missed           int         `json:"missed_installments"`
	CollateralSeized string      `json:"collateral_seized"`
	Shares           []shareResp `json:"shares"`
}

func (p Presenter) Default(d *defaults.DefaultDTO) defaultResp {
	out := defaultResp{
		LoanID:           d.LoanID,
		Borrower:         d.Borrower,
		Missed:           d.Missed,
		CollateralSeized: p.Amount(d.CollateralSeized),
		Shares:           make([]shareResp, 0, len(d.Shares)),
	}
	for _, s := range d.Shares {
		out.Shares = append(out.Shares, shareResp{Lender: s.Key, Amount: p.Amount(s.Amount)})
	}
	return out
}

type ruleResp struct {
	Address           string `json:"address"`
	MaxFundAmount     string `json:"max_fund_amount"`
	MinSavingsBalance string `json:"min_savings_balance"`
	IsActive          bool   `json:"is_active"`
}

func (p Presenter) Rule(r *autofund.RuleDTO) ruleResp {
	return ruleResp{
		Address:           r.Address,
		MaxFundAmount:     p.Amount(r.MaxFundAmount),
		MinSavingsBalance: p.Amount(r.MinSavingsBalance),
		IsActive:          r.IsActive,
	}
}

type attemptResp struct {
	Lender  string `json:"lender"`
	Amount  string `json:"amount"`
	Funded  string `json:"funded"`
	Skipped string `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (p Presenter) Attempts(as []autofund.Attempt) []attemptResp {
	out := make([]attemptResp, 0, len(as))
	for _, a := range as {
		out = append(out, attemptResp{
			Lender:  a.Lender,
			Amount:  p.Amount(a.Amount),
			Funded:  p.Amount(a.Funded),
			Skipped: a.Skipped,
			Error:   a.Error,
		})
	}
	return out
}

// Event payloads are passed through untouched; amounts inside stay in
// smallest units.
type eventsResp struct {
	Events []event.Event `json:"events"`
	Next   uint64        `json:"next"`
}
