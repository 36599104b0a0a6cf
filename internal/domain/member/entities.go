package member

import (
	"time"

	"stokvel-backend/internal/domain/apperr"
	"stokvel-backend/internal/domain/policy"
)

var (
	ErrNotFound          = apperr.New(apperr.KindState, "ACCOUNT_NOT_FOUND", "account not found")
	ErrInsufficientFunds = apperr.New(apperr.KindValue, "INSUFFICIENT_FUNDS", "amount exceeds available savings")
	ErrCannotClose       = apperr.New(apperr.KindState, "CANNOT_CLOSE", "account has funds lent out or collateral locked")
	ErrClubNotFound      = apperr.New(apperr.KindState, "CLUB_NOT_INITIALISED", "club has not been initialised")
	ErrClubExists        = apperr.New(apperr.KindState, "CLUB_ALREADY_INITIALISED", "club has already been initialised")
)

// Table: accounts
type Account struct {
	Address                string    `gorm:"column:address;primaryKey;size:42" json:"address"`
	HashedID               string    `gorm:"column:hashed_id;size:64;not null;index" json:"hashed_id"`
	IsActive               bool      `gorm:"column:is_active;not null;index" json:"is_active"`
	TotalSavings           uint64    `gorm:"column:total_savings;not null" json:"total_savings"`
	AmountLentOut          uint64    `gorm:"column:amount_lent_out;not null" json:"amount_lent_out"`
	AmountLockedCollateral uint64    `gorm:"column:amount_locked_collateral;not null" json:"amount_locked_collateral"`
	JoinedAt               time.Time `gorm:"column:joined_at" json:"joined_at"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// AvailableSavings is what the member may withdraw, lend or lock as collateral.
// Inactive accounts have nothing available.
func (a *Account) AvailableSavings() uint64 {
	if !a.IsActive {
		return 0
	}
	reserved := policy.JoiningFee + a.AmountLockedCollateral
	if a.TotalSavings < reserved {
		return 0
	}
	return a.TotalSavings - reserved
}

// Table: clubs (single row, ID = 1)
type Club struct {
	ID           uint64    `gorm:"column:id;primaryKey" json:"-"`
	Creator      string    `gorm:"column:creator;size:42;not null" json:"creator"`
	TotalMembers uint64    `gorm:"column:total_members;not null" json:"total_members"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Club) TableName() string { return "clubs" }

// ClubID is the primary key of the only club row.
const ClubID uint64 = 1
