package ledger

import (
	"time"

	"stokvel-backend/internal/domain/member"
)

type AccountDTO struct {
	Address                string    `json:"address"`
	IsActive               bool      `json:"is_active"`
	TotalSavings           uint64    `json:"total_savings"`
	AvailableSavings       uint64    `json:"available_savings"`
	AmountLentOut          uint64    `json:"amount_lent_out"`
	AmountLockedCollateral uint64    `json:"amount_locked_collateral"`
	JoinedAt               time.Time `json:"joined_at"`
}

func NewAccountDTO(a *member.Account) *AccountDTO {
	return &AccountDTO{
		Address:                a.Address,
		IsActive:               a.IsActive,
		TotalSavings:           a.TotalSavings,
		AvailableSavings:       a.AvailableSavings(),
		AmountLentOut:          a.AmountLentOut,
		AmountLockedCollateral: a.AmountLockedCollateral,
		JoinedAt:               a.JoinedAt,
	}
}
