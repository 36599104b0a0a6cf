package autofund

import (
	"context"
	"time"
)

// Table: autofund_rules
type Rule struct {
	Address           string    `gorm:"column:address;primaryKey;size:42" json:"address"`
	MaxFundAmount     uint64    `gorm:"column:max_fund_amount;not null" json:"max_fund_amount"`
	MinSavingsBalance uint64    `gorm:"column:min_savings_balance;not null" json:"min_savings_balance"`
	IsActive          bool      `gorm:"column:is_active;not null;index" json:"is_active"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Rule) TableName() string { return "autofund_rules" }

type Repository interface {
	// Get returns (nil, nil) when the member has no rule.
	Get(ctx context.Context, address string) (*Rule, error)
	Upsert(ctx context.Context, r *Rule) error
	// ListActive returns active rules ordered by address.
	ListActive(ctx context.Context) ([]Rule, error)
}
