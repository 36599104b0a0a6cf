package mysql

import (
	"context"
	"errors"

	memberDomain "stokvel-backend/internal/domain/member"

	"gorm.io/gorm"
)

type MemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) *MemberRepository { return &MemberRepository{db: db} }

func (r *MemberRepository) Create(ctx context.Context, a *memberDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Save writes every column, including zero balances and IsActive=false.
func (r *MemberRepository) Save(ctx context.Context, a *memberDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *MemberRepository) GetByAddress(ctx context.Context, address string) (*memberDomain.Account, error) {
	var out memberDomain.Account
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, memberDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MemberRepository) GetClub(ctx context.Context) (*memberDomain.Club, error) {
	var out memberDomain.Club
	err := r.db.WithContext(ctx).Where("id = ?", memberDomain.ClubID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, memberDomain.ErrClubNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MemberRepository) CreateClub(ctx context.Context, c *memberDomain.Club) error {
	c.ID = memberDomain.ClubID
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *MemberRepository) SaveClub(ctx context.Context, c *memberDomain.Club) error {
	return r.db.WithContext(ctx).Save(c).Error
}
