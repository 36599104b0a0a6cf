// Package event defines the observable transitions of the ledger.
package event

import (
	"context"
	"encoding/json"
	"time"
)

type Type string

const (
	ApplicationSubmitted Type = "application_submitted"
	VoteCast             Type = "vote_cast"
	ApplicantApproved    Type = "applicant_approved"
	ApplicantRejected    Type = "applicant_rejected"
	MemberActivated      Type = "member_activated"
	Deposit              Type = "deposit"
	Withdrawal           Type = "withdrawal"
	AccountClosed        Type = "account_closed"
	LoanRequested        Type = "loan_requested"
	LoanFunded           Type = "loan_funded"
	LoanDisbursed        Type = "loan_disbursed"
	InstallmentPaid      Type = "installment_paid"
	LoanDefaulted        Type = "loan_defaulted"
	MemberBlacklisted    Type = "member_blacklisted"
)

// Table: events. Seq gives the commit order.
type Event struct {
	Seq        uint64          `gorm:"column:seq;primaryKey;autoIncrement" json:"seq"`
	EventID    string          `gorm:"column:event_id;size:36;not null;uniqueIndex" json:"event_id"`
	Type       Type            `gorm:"column:type;size:32;not null;index" json:"type"`
	Payload    json.RawMessage `gorm:"column:payload;type:text;not null" json:"payload"`
	OccurredAt time.Time       `gorm:"column:occurred_at;not null" json:"occurred_at"`
}

func (Event) TableName() string { return "events" }

type Repository interface {
	Append(ctx context.Context, e *Event) error
	ListAfter(ctx context.Context, seq uint64, limit int) ([]Event, error)
}

// Publisher forwards committed events to external consumers.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}
