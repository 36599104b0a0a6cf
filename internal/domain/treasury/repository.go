package treasury

import "context"

type Repository interface {
	Balance(ctx context.Context) (uint64, error)
	Credit(ctx context.Context, amount uint64) error
	// Debit returns ErrShortfall if the balance cannot cover amount.
	Debit(ctx context.Context, amount uint64) error
	RecordTransfer(ctx context.Context, t *Transfer) error
}

// Gateway moves value out of the pool to a member's wallet. A non-nil error
// means nothing was delivered.
type Gateway interface {
	Send(ctx context.Context, t *Transfer) error
}
