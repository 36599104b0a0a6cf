package mysql

import (
	"context"
	"errors"

	autofundDomain "stokvel-backend/internal/domain/autofund"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AutoFundRepository struct{ db *gorm.DB }

func NewAutoFundRepository(db *gorm.DB) *AutoFundRepository { return &AutoFundRepository{db: db} }

func (r *AutoFundRepository) Get(ctx context.Context, address string) (*autofundDomain.Rule, error) {
	var out autofundDomain.Rule
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AutoFundRepository) Upsert(ctx context.Context, rule *autofundDomain.Rule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_fund_amount", "min_savings_balance", "is_active", "updated_at"}),
	}).Create(rule).Error
}

func (r *AutoFundRepository) ListActive(ctx context.Context) ([]autofundDomain.Rule, error) {
	var out []autofundDomain.Rule
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("address ASC").Find(&out).Error
	return out, err
}
