package mysql

import (
	"context"
	"errors"

	treasuryDomain "stokvel-backend/internal/domain/treasury"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TreasuryRepository struct{ db *gorm.DB }

func NewTreasuryRepository(db *gorm.DB) *TreasuryRepository { return &TreasuryRepository{db: db} }

func (r *TreasuryRepository) load(ctx context.Context) (*treasuryDomain.Treasury, error) {
	var t treasuryDomain.Treasury
	err := r.db.WithContext(ctx).Where("id = ?", treasuryDomain.TreasuryID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &treasuryDomain.Treasury{ID: treasuryDomain.TreasuryID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TreasuryRepository) store(ctx context.Context, t *treasuryDomain.Treasury) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(t).Error
}

func (r *TreasuryRepository) Balance(ctx context.Context) (uint64, error) {
	t, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return t.Balance, nil
}

func (r *TreasuryRepository) Credit(ctx context.Context, amount uint64) error {
	t, err := r.load(ctx)
	if err != nil {
		return err
	}
	t.Balance += amount
	return r.store(ctx, t)
}

func (r *TreasuryRepository) Debit(ctx context.Context, amount uint64) error {
	t, err := r.load(ctx)
	if err != nil {
		return err
	}
	if t.Balance < amount {
		return treasuryDomain.ErrShortfall
	}
	t.Balance -= amount
	return r.store(ctx, t)
}

func (r *TreasuryRepository) RecordTransfer(ctx context.Context, t *treasuryDomain.Transfer) error {
	return r.db.WithContext(ctx).Create(t).Error
}
