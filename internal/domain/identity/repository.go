package identity

import "context"

type Repository interface {
	// GetBinding returns (nil, nil) when the identifier was never bound.
	GetBinding(ctx context.Context, hashedID string) (*Binding, error)
	// Bind inserts or overwrites the binding for b.HashedID.
	Bind(ctx context.Context, b *Binding) error

	IsBlacklisted(ctx context.Context, hashedID string) (bool, error)
	// IsAddressBlacklisted reports whether the address was blacklisted under any identifier.
	IsAddressBlacklisted(ctx context.Context, address string) (bool, error)
	// AddToBlacklist is a no-op when the identifier is already listed.
	AddToBlacklist(ctx context.Context, e *BlacklistEntry) error
}
