package applicant

import "context"

type Repository interface {
	// Get returns ErrUnknownApplicant when no application exists.
	Get(ctx context.Context, address string) (*Applicant, error)
	Create(ctx context.Context, a *Applicant) error
	Save(ctx context.Context, a *Applicant) error
	// Delete clears the applicant and all its votes.
	Delete(ctx context.Context, address string) error

	AddVote(ctx context.Context, v *Vote) error
	HasVoted(ctx context.Context, applicant, voter string) (bool, error)
}
