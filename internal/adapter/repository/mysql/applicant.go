package mysql

import (
	"context"
	"errors"

	applicantDomain "stokvel-backend/internal/domain/applicant"

	"gorm.io/gorm"
)

type ApplicantRepository struct{ db *gorm.DB }

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository { return &ApplicantRepository{db: db} }

func (r *ApplicantRepository) Get(ctx context.Context, address string) (*applicantDomain.Applicant, error) {
	var out applicantDomain.Applicant
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, applicantDomain.ErrUnknownApplicant
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicantRepository) Create(ctx context.Context, a *applicantDomain.Applicant) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicantRepository) Save(ctx context.Context, a *applicantDomain.Applicant) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicantRepository) Delete(ctx context.Context, address string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("applicant = ?", address).Delete(&applicantDomain.Vote{}).Error; err != nil {
		return err
	}
	return db.Where("address = ?", address).Delete(&applicantDomain.Applicant{}).Error
}

func (r *ApplicantRepository) AddVote(ctx context.Context, v *applicantDomain.Vote) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *ApplicantRepository) HasVoted(ctx context.Context, applicant, voter string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&applicantDomain.Vote{}).
		Where("applicant = ? AND voter = ?", applicant, voter).
		Count(&n).Error
	return n > 0, err
}
