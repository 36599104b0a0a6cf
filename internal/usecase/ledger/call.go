package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stokvel-backend/internal/domain/apperr"
	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/treasury"
	"stokvel-backend/internal/domain/uow"
	"stokvel-backend/pkg/id"
)

// Call is the state of one in-flight operation.
type Call struct {
	Repos uow.Repos
	Now   time.Time

	gw     treasury.Gateway
	log    *slog.Logger
	events []event.Event
}

func (c *Call) Log() *slog.Logger { return c.log }

// Emit appends an event to the log within the call's transaction.
func (c *Call) Emit(ctx context.Context, typ event.Type, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", typ, err)
	}
	e := event.Event{
		EventID:    id.NewEventID(),
		Type:       typ,
		Payload:    raw,
		OccurredAt: c.Now,
	}
	if err := c.Repos.Events.Append(ctx, &e); err != nil {
		return err
	}
	c.events = append(c.events, e)
	return nil
}

// Events returns what the call has emitted so far.
func (c *Call) Events() []event.Event { return c.events }

// Receive books value attached to the call into the pool.
func (c *Call) Receive(ctx context.Context, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return c.Repos.Treasury.Credit(ctx, amount)
}

// Pay sends value out of the pool. The gateway is attempted before anything
// is written, so a failed transfer leaves the call free to abort cleanly.
func (c *Call) Pay(ctx context.Context, to string, amount uint64, reason treasury.Reason, loanID *uint64) (*treasury.Transfer, error) {
	bal, err := c.Repos.Treasury.Balance(ctx)
	if err != nil {
		return nil, err
	}
	if bal < amount {
		return nil, treasury.ErrShortfall
	}
	t := &treasury.Transfer{
		TransferID: id.NewTransferID(),
		To:         to,
		Amount:     amount,
		Reason:     reason,
		LoanID:     loanID,
		CreatedAt:  c.Now,
	}
	if err := c.gw.Send(ctx, t); err != nil {
		c.log.Warn("payout failed", "to", to, "amount", amount, "reason", reason, "error", err)
		return nil, fmt.Errorf("%w: %v", treasury.ErrPayoutFailed, err)
	}
	if err := c.Repos.Treasury.Debit(ctx, amount); err != nil {
		return nil, err
	}
	if err := c.Repos.Treasury.RecordTransfer(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ActiveMember loads addr and fails with ErrNotActiveMember unless it is an
// active account.
func (c *Call) ActiveMember(ctx context.Context, addr string) (*member.Account, error) {
	return ActiveMember(ctx, c.Repos, addr)
}

func ActiveMember(ctx context.Context, r uow.Repos, addr string) (*member.Account, error) {
	acc, err := r.Accounts.GetByAddress(ctx, addr)
	if errors.Is(err, member.ErrNotFound) {
		return nil, apperr.ErrNotActiveMember
	}
	if err != nil {
		return nil, err
	}
	if !acc.IsActive {
		return nil, apperr.ErrNotActiveMember
	}
	return acc, nil
}
