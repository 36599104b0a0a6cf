package gatewaymock

import (
	"context"
	"sync"

	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/treasury"
)

var (
	_ treasury.Gateway = (*Gateway)(nil)
	_ event.Publisher  = (*Publisher)(nil)
)

// Gateway records every transfer it is asked to send. SendFn, when set,
// decides the outcome; a failed send is not recorded.
type Gateway struct {
	SendFn func(ctx context.Context, t *treasury.Transfer) error

	mu   sync.Mutex
	sent []treasury.Transfer
}

func (g *Gateway) Send(ctx context.Context, t *treasury.Transfer) error {
	if g.SendFn != nil {
		if err := g.SendFn(ctx, t); err != nil {
			return err
		}
	}
	g.mu.Lock()
	g.sent = append(g.sent, *t)
	g.mu.Unlock()
	return nil
}

func (g *Gateway) Sent() []treasury.Transfer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]treasury.Transfer(nil), g.sent...)
}

// Total is the value delivered to addr.
func (g *Gateway) Total(addr string) uint64 {
	var n uint64
	for _, t := range g.Sent() {
		if t.To == addr {
			n += t.Amount
		}
	}
	return n
}

// Publisher records published events.
type Publisher struct {
	PublishFn func(ctx context.Context, events ...event.Event) error

	mu     sync.Mutex
	events []event.Event
}

func (p *Publisher) Publish(ctx context.Context, events ...event.Event) error {
	p.mu.Lock()
	p.events = append(p.events, events...)
	p.mu.Unlock()
	if p.PublishFn != nil {
		return p.PublishFn(ctx, events...)
	}
	return nil
}

func (p *Publisher) Types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// Count returns how many published events have type typ.
func (p *Publisher) Count(typ event.Type) int {
	n := 0
	for _, t := range p.Types() {
		if t == typ {
			n++
		}
	}
	return n
}
