package applicantmock

import (
	"context"

	domain "stokvel-backend/internal/domain/applicant"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetFn      func(ctx context.Context, address string) (*domain.Applicant, error)
	CreateFn   func(ctx context.Context, a *domain.Applicant) error
	SaveFn     func(ctx context.Context, a *domain.Applicant) error
	DeleteFn   func(ctx context.Context, address string) error
	AddVoteFn  func(ctx context.Context, v *domain.Vote) error
	HasVotedFn func(ctx context.Context, applicant, voter string) (bool, error)
}

func (m *Repo) Get(ctx context.Context, address string) (*domain.Applicant, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, address)
	}
	return nil, domain.ErrUnknownApplicant
}

func (m *Repo) Create(ctx context.Context, a *domain.Applicant) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Applicant) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, address string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, address)
	}
	return nil
}

func (m *Repo) AddVote(ctx context.Context, v *domain.Vote) error {
	if m.AddVoteFn != nil {
		return m.AddVoteFn(ctx, v)
	}
	return nil
}

func (m *Repo) HasVoted(ctx context.Context, applicant, voter string) (bool, error) {
	if m.HasVotedFn != nil {
		return m.HasVotedFn(ctx, applicant, voter)
	}
	return false, nil
}
