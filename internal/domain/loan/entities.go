package loan

import (
	"time"

	"stokvel-backend/internal/domain/apperr"
	"stokvel-backend/internal/domain/policy"
)

var (
	ErrNotFound                     = apperr.New(apperr.KindState, "LOAN_NOT_FOUND", "loan not found")
	ErrAlreadyActive                = apperr.New(apperr.KindState, "LOAN_ALREADY_ACTIVE", "loan is already active")
	ErrAlreadyDefaulted             = apperr.New(apperr.KindState, "LOAN_ALREADY_DEFAULTED", "loan has already defaulted")
	ErrNotActive                    = apperr.New(apperr.KindState, "LOAN_NOT_ACTIVE", "loan is not active")
	ErrFullyFunded                  = apperr.New(apperr.KindState, "LOAN_FULLY_FUNDED", "loan is fully funded and awaiting disbursement")
	ErrNotFullyFunded               = apperr.New(apperr.KindState, "LOAN_NOT_FULLY_FUNDED", "loan is not fully funded")
	ErrAlreadySettled               = apperr.New(apperr.KindState, "ALREADY_SETTLED", "all installments are paid")
	ErrAlreadyPaid                  = apperr.New(apperr.KindState, "ALREADY_PAID", "installment is already paid")
	ErrNoDefaultDetected            = apperr.New(apperr.KindState, "NO_DEFAULT_DETECTED", "fewer than the required installments are missed")
	ErrBorrowerInactive             = apperr.New(apperr.KindState, "LOAN_BORROWER_INACTIVE", "borrower is no longer an active member")
	ErrSelfFunding                  = apperr.New(apperr.KindAuthorization, "SELF_FUNDING", "borrower cannot fund their own loan")
	ErrNotBorrower                  = apperr.New(apperr.KindAuthorization, "NOT_BORROWER", "caller is not the borrower")
	ErrInsufficientCollateral       = apperr.New(apperr.KindValue, "INSUFFICIENT_COLLATERAL", "available savings cannot cover the required collateral")
	ErrInsufficientAvailableSavings = apperr.New(apperr.KindValue, "INSUFFICIENT_AVAILABLE_SAVINGS", "funding exceeds the lender's lending limit")
	ErrWrongAmount                  = apperr.New(apperr.KindValue, "WRONG_AMOUNT", "payment does not match the amount due")
)

type State string

const (
	StateRequested State = "requested"
	StateFunding   State = "funding"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateDefaulted State = "defaulted"
)

// Table: loans
type Loan struct {
	ID                   uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"loan_id"`
	Borrower             string        `gorm:"column:borrower;size:42;not null;index" json:"borrower"`
	AmountRequested      uint64        `gorm:"column:amount_requested;not null" json:"amount_requested"`
	AmountFunded         uint64        `gorm:"column:amount_funded;not null" json:"amount_funded"`
	CollateralLocked     uint64        `gorm:"column:collateral_locked;not null" json:"collateral_locked"`
	TotalInterest        uint64        `gorm:"column:total_interest;not null" json:"total_interest"`
	State                State         `gorm:"column:state;size:16;not null;index" json:"state"`
	NextInstallmentIndex int           `gorm:"column:next_installment_index;not null" json:"next_installment_index"`
	Installments         []Installment `gorm:"foreignKey:LoanID" json:"installments"`
	CreatedAt            time.Time     `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Remaining is the principal still waiting for lenders.
func (l *Loan) Remaining() uint64 { return l.AmountRequested - l.AmountFunded }

// Settled reports whether every installment has been paid.
func (l *Loan) Settled() bool { return l.NextInstallmentIndex >= policy.LoanTerm }

// Table: installments
type Installment struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID          uint64     `gorm:"column:loan_id;not null;uniqueIndex:ux_installments_loan_idx" json:"-"`
	Idx             int        `gorm:"column:idx;not null;uniqueIndex:ux_installments_loan_idx" json:"index"`
	DueDate         time.Time  `gorm:"column:due_date;not null" json:"due_date"`
	AmountDue       uint64     `gorm:"column:amount_due;not null" json:"amount_due"`
	LateFeesAccrued uint64     `gorm:"column:late_fees_accrued;not null" json:"late_fees_accrued"`
	IsPaid          bool       `gorm:"column:is_paid;not null" json:"is_paid"`
	PaidAt          *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
}

func (Installment) TableName() string { return "installments" }

// Table: loan_contributions. Seq preserves funding order.
type Contribution struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID            uint64    `gorm:"column:loan_id;not null;uniqueIndex:ux_contrib_loan_lender" json:"loan_id"`
	Lender            string    `gorm:"column:lender;size:42;not null;uniqueIndex:ux_contrib_loan_lender" json:"lender"`
	Amount            uint64    `gorm:"column:amount;not null" json:"amount"`
	PrincipalReturned uint64    `gorm:"column:principal_returned;not null" json:"principal_returned"`
	Seq               int       `gorm:"column:seq;not null" json:"seq"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Contribution) TableName() string { return "loan_contributions" }

// Outstanding is the lender's principal not yet returned.
func (c *Contribution) Outstanding() uint64 {
	if c.PrincipalReturned >= c.Amount {
		return 0
	}
	return c.Amount - c.PrincipalReturned
}
