package mysql

import (
	"context"
	"errors"

	identityDomain "stokvel-backend/internal/domain/identity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdentityRepository struct{ db *gorm.DB }

func NewIdentityRepository(db *gorm.DB) *IdentityRepository { return &IdentityRepository{db: db} }

func (r *IdentityRepository) GetBinding(ctx context.Context, hashedID string) (*identityDomain.Binding, error) {
	var out identityDomain.Binding
	err := r.db.WithContext(ctx).Where("hashed_id = ?", hashedID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *IdentityRepository) Bind(ctx context.Context, b *identityDomain.Binding) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hashed_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
	}).Create(b).Error
}

func (r *IdentityRepository) IsBlacklisted(ctx context.Context, hashedID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&identityDomain.BlacklistEntry{}).
		Where("hashed_id = ?", hashedID).
		Count(&n).Error
	return n > 0, err
}

func (r *IdentityRepository) IsAddressBlacklisted(ctx context.Context, address string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&identityDomain.BlacklistEntry{}).
		Where("address = ?", address).
		Count(&n).Error
	return n > 0, err
}

func (r *IdentityRepository) AddToBlacklist(ctx context.Context, e *identityDomain.BlacklistEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e).Error
}
