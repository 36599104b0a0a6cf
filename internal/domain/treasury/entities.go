// Package treasury models the pool's custody of real value: every inbound
// payment credits it and every outbound transfer debits it.
package treasury

import (
	"time"

	"stokvel-backend/internal/domain/apperr"
)

var (
	ErrShortfall    = apperr.New(apperr.KindState, "TREASURY_SHORTFALL", "treasury cannot cover the transfer")
	ErrPayoutFailed = apperr.New(apperr.KindInternal, "PAYOUT_FAILED", "outbound value transfer failed")
)

type Reason string

const (
	ReasonWithdrawal   Reason = "withdrawal"
	ReasonClosure      Reason = "closure"
	ReasonDisbursement Reason = "disbursement"
)

// Table: treasury (single row, ID = 1)
type Treasury struct {
	ID        uint64    `gorm:"column:id;primaryKey" json:"-"`
	Balance   uint64    `gorm:"column:balance;not null" json:"balance"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Treasury) TableName() string { return "treasury" }

const TreasuryID uint64 = 1

// Table: transfers (outbound value)
type Transfer struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TransferID string    `gorm:"column:transfer_id;type:char(32);not null;uniqueIndex" json:"transfer_id"`
	To         string    `gorm:"column:recipient;size:42;not null;index" json:"to"`
	Amount     uint64    `gorm:"column:amount;not null" json:"amount"`
	Reason     Reason    `gorm:"column:reason;size:32;not null" json:"reason"`
	LoanID     *uint64   `gorm:"column:loan_id" json:"loan_id,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transfer) TableName() string { return "transfers" }
