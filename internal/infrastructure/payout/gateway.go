// Package payout delivers outbound value transfers to member wallets.
package payout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"stokvel-backend/internal/domain/treasury"
	"stokvel-backend/pkg/id"
)

var _ treasury.Gateway = (*LogGateway)(nil)

// LogGateway settles transfers by recording them in the structured log. It
// refuses malformed transfers and never delivers the same transfer id twice.
type LogGateway struct {
	log *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewLogGateway(log *slog.Logger) *LogGateway {
	if log == nil {
		log = slog.Default()
	}
	return &LogGateway{log: log, seen: make(map[string]struct{})}
}

func (g *LogGateway) Send(ctx context.Context, t *treasury.Transfer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", treasury.ErrPayoutFailed, err)
	}
	switch {
	case t == nil:
		return fmt.Errorf("%w: nil transfer", treasury.ErrPayoutFailed)
	case t.Amount == 0:
		return fmt.Errorf("%w: zero amount", treasury.ErrPayoutFailed)
	case t.To == "":
		return fmt.Errorf("%w: missing recipient", treasury.ErrPayoutFailed)
	case !id.IsTransferID(t.TransferID):
		return fmt.Errorf("%w: bad transfer id %q", treasury.ErrPayoutFailed, t.TransferID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, dup := g.seen[t.TransferID]; dup {
		return fmt.Errorf("%w: transfer %s already sent", treasury.ErrPayoutFailed, t.TransferID)
	}
	g.seen[t.TransferID] = struct{}{}

	g.log.Info("payout sent",
		"transfer_id", t.TransferID,
		"to", t.To,
		"amount", t.Amount,
		"reason", string(t.Reason),
	)
	return nil
}
