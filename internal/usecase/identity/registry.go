// Package identity maps hashed real-world identifiers to at most one active
// account and keeps blacklisted identifiers out.
package identity

import (
	"context"
	"errors"

	domainIdentity "stokvel-backend/internal/domain/identity"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/uow"
)

// Available fails with ErrBlacklisted or ErrDuplicateIdentity when hashedID
// cannot be bound to a new account.
func Available(ctx context.Context, r uow.Repos, hashedID string) error {
	black, err := r.Identities.IsBlacklisted(ctx, hashedID)
	if err != nil {
		return err
	}
	if black {
		return domainIdentity.ErrBlacklisted
	}
	addr, err := Resolve(ctx, r, hashedID)
	if err != nil {
		return err
	}
	if addr != "" {
		return domainIdentity.ErrDuplicateIdentity
	}
	return nil
}

// Reserve binds hashedID to address. A binding whose account is no longer
// active is replaced.
func Reserve(ctx context.Context, r uow.Repos, hashedID, address string) error {
	if err := Available(ctx, r, hashedID); err != nil {
		return err
	}
	return r.Identities.Bind(ctx, &domainIdentity.Binding{HashedID: hashedID, Address: address})
}

// Resolve returns the active account bound to hashedID, or "".
func Resolve(ctx context.Context, r uow.Repos, hashedID string) (string, error) {
	b, err := r.Identities.GetBinding(ctx, hashedID)
	if err != nil || b == nil {
		return "", err
	}
	acc, err := r.Accounts.GetByAddress(ctx, b.Address)
	if errors.Is(err, member.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !acc.IsActive || acc.HashedID != hashedID {
		return "", nil
	}
	return acc.Address, nil
}

// Usecase exposes the registry read side.
type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

type ResolveDTO struct {
	HashedID    string `json:"hashed_id"`
	Address     string `json:"address,omitempty"`
	Bound       bool   `json:"bound"`
	Blacklisted bool   `json:"blacklisted"`
}

func (u *Usecase) Lookup(ctx context.Context, hashedID string) (*ResolveDTO, error) {
	r := u.uow.Read()
	addr, err := Resolve(ctx, r, hashedID)
	if err != nil {
		return nil, err
	}
	black, err := r.Identities.IsBlacklisted(ctx, hashedID)
	if err != nil {
		return nil, err
	}
	return &ResolveDTO{HashedID: hashedID, Address: addr, Bound: addr != "", Blacklisted: black}, nil
}
