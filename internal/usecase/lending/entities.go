package lending

import (
	"time"

	"stokvel-backend/internal/domain/loan"
)

type RequestInput struct {
	Caller string
	Amount uint64
	Now    time.Time
}

type FundInput struct {
	Caller string
	LoanID uint64
	Amount uint64
	Now    time.Time
}

type InstallmentDTO struct {
	Index           int        `json:"index"`
	DueDate         time.Time  `json:"due_date"`
	AmountDue       uint64     `json:"amount_due"`
	LateFeesAccrued uint64     `json:"late_fees_accrued"`
	IsPaid          bool       `json:"is_paid"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

type LenderDTO struct {
	Address           string `json:"address"`
	Amount            uint64 `json:"amount"`
	PrincipalReturned uint64 `json:"principal_returned"`
}

type LoanDTO struct {
	LoanID               uint64           `json:"loan_id"`
	Borrower             string           `json:"borrower"`
	AmountRequested      uint64           `json:"amount_requested"`
	AmountFunded         uint64           `json:"amount_funded"`
	CollateralLocked     uint64           `json:"collateral_locked"`
	TotalInterest        uint64           `json:"total_interest"`
	TotalRepayment       uint64           `json:"total_repayment"`
	State                loan.State       `json:"state"`
	NextInstallmentIndex int              `json:"next_installment_index"`
	CreatedAt            time.Time        `json:"created_at"`
	Installments         []InstallmentDTO `json:"installments,omitempty"`
	Lenders              []LenderDTO      `json:"lenders,omitempty"`
}

// FundResult reports one contribution. Disbursed is false when the loan is
// not yet fully funded or the disbursement transfer failed.
type FundResult struct {
	Loan              *LoanDTO `json:"loan"`
	Funded            uint64   `json:"funded"`
	Disbursed         bool     `json:"disbursed"`
	DisbursementError string   `json:"disbursement_error,omitempty"`
}

// QuoteDTO is the exact payment the next installment needs at At.
type QuoteDTO struct {
	LoanID    uint64    `json:"loan_id"`
	Index     int       `json:"index"`
	DueDate   time.Time `json:"due_date"`
	AmountDue uint64    `json:"amount_due"`
	LateFee   uint64    `json:"late_fee"`
	Total     uint64    `json:"total"`
	At        time.Time `json:"at"`
}

func toDTO(l *loan.Loan, lenders []loan.Contribution) *LoanDTO {
	dto := &LoanDTO{
		LoanID:               l.ID,
		Borrower:             l.Borrower,
		AmountRequested:      l.AmountRequested,
		AmountFunded:         l.AmountFunded,
		CollateralLocked:     l.CollateralLocked,
		TotalInterest:        l.TotalInterest,
		TotalRepayment:       l.AmountRequested + l.TotalInterest,
		State:                l.State,
		NextInstallmentIndex: l.NextInstallmentIndex,
		CreatedAt:            l.CreatedAt,
	}
	for _, in := range l.Installments {
		dto.Installments = append(dto.Installments, InstallmentDTO{
			Index:           in.Idx,
			DueDate:         in.DueDate,
			AmountDue:       in.AmountDue,
			LateFeesAccrued: in.LateFeesAccrued,
			IsPaid:          in.IsPaid,
			PaidAt:          in.PaidAt,
		})
	}
	for _, c := range lenders {
		dto.Lenders = append(dto.Lenders, LenderDTO{Address: c.Lender, Amount: c.Amount, PrincipalReturned: c.PrincipalReturned})
	}
	return dto
}
