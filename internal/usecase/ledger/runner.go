// Package ledger runs every mutating operation as one call: a single
// transaction that owns its inbound and outbound value movements and the
// events it emits. Events are published only after the call commits.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/domain/treasury"
	"stokvel-backend/internal/domain/uow"
)

// Observer receives the outcome of every call, after commit or rollback.
type Observer interface {
	Observe(op string, err error, events []event.Event)
}

type Runner struct {
	uow uow.UnitOfWork
	gw  treasury.Gateway
	pub event.Publisher
	obs Observer
	log *slog.Logger
}

type Option func(*Runner)

func WithPublisher(p event.Publisher) Option { return func(r *Runner) { r.pub = p } }
func WithObserver(o Observer) Option         { return func(r *Runner) { r.obs = o } }
func WithLogger(l *slog.Logger) Option       { return func(r *Runner) { r.log = l } }

func NewRunner(u uow.UnitOfWork, gw treasury.Gateway, opts ...Option) *Runner {
	r := &Runner{uow: u, gw: gw, log: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (rn *Runner) Logger() *slog.Logger { return rn.log }

// Read returns repositories outside any transaction, for views.
func (rn *Runner) Read() uow.Repos { return rn.uow.Read() }

// Do runs fn as one atomic call. Any error discards every write of the call,
// including events.
func (rn *Runner) Do(ctx context.Context, op string, now time.Time, fn func(c *Call) error) error {
	var c *Call
	err := rn.uow.WithinTx(ctx, func(r uow.Repos) error {
		c = rn.newCall(r, now)
		return fn(c)
	})
	return rn.finish(ctx, op, c, err)
}

// DoLoan is Do with the loan row loaded and locked first.
func (rn *Runner) DoLoan(ctx context.Context, op string, now time.Time, loanID uint64, fn func(c *Call, l *loan.Loan) error) error {
	var c *Call
	err := rn.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		c = rn.newCall(r, now)
		return fn(c, l)
	})
	return rn.finish(ctx, op, c, err)
}

func (rn *Runner) newCall(r uow.Repos, now time.Time) *Call {
	return &Call{Repos: r, Now: now.UTC(), gw: rn.gw, log: rn.log}
}

func (rn *Runner) finish(ctx context.Context, op string, c *Call, err error) error {
	var events []event.Event
	if err == nil && c != nil {
		events = c.events
	}
	if rn.obs != nil {
		rn.obs.Observe(op, err, events)
	}
	if err != nil {
		rn.log.Debug("ledger call rejected", "op", op, "error", err)
		return err
	}
	if rn.pub != nil && len(events) > 0 {
		if perr := rn.pub.Publish(ctx, events...); perr != nil {
			rn.log.Warn("publish events", "op", op, "count", len(events), "error", perr)
		}
	}
	return nil
}

// EventsAfter lists committed events with seq > after, oldest first.
func (rn *Runner) EventsAfter(ctx context.Context, after uint64, limit int) ([]event.Event, error) {
	return rn.uow.Read().Events.ListAfter(ctx, after, limit)
}
