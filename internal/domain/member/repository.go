package member

import "context"

type Repository interface {
	Create(ctx context.Context, a *Account) error
	Save(ctx context.Context, a *Account) error
	// GetByAddress returns ErrNotFound when no account exists.
	GetByAddress(ctx context.Context, address string) (*Account, error)

	// GetClub returns ErrClubNotFound before bootstrap.
	GetClub(ctx context.Context) (*Club, error)
	CreateClub(ctx context.Context, c *Club) error
	SaveClub(ctx context.Context, c *Club) error
}
