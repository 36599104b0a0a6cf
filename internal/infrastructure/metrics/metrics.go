// Package metrics exposes ledger activity to prometheus.
package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stokvel-backend/internal/domain/apperr"
	"stokvel-backend/internal/domain/event"
)

const namespace = "stokvel"

// Collector implements ledger.Observer.
type Collector struct {
	ops       *prometheus.CounterVec
	events    *prometheus.CounterVec
	disbursed prometheus.Counter
	defaulted prometheus.Counter
	members   prometheus.Gauge
}

func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Ledger calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Committed ledger events by type.",
		}, []string{"type"}),
		disbursed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_disbursed_total",
			Help:      "Loans whose principal reached the borrower.",
		}),
		defaulted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_defaulted_total",
			Help:      "Loans resolved as defaulted.",
		}),
		members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_members",
			Help:      "Active club members.",
		}),
	}
	reg.MustRegister(c.ops, c.events, c.disbursed, c.defaulted, c.members)
	return c
}

// SetActiveMembers seeds the gauge, normally from the club record at startup.
func (c *Collector) SetActiveMembers(n uint64) { c.members.Set(float64(n)) }

// Outcome is "ok", "rejected" for categorised ledger errors, or "error".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperr.KindOf(err) == apperr.KindInternal:
		return "error"
	default:
		return "rejected"
	}
}

func (c *Collector) Observe(op string, err error, events []event.Event) {
	c.ops.WithLabelValues(op, Outcome(err)).Inc()
	for _, e := range events {
		c.events.WithLabelValues(string(e.Type)).Inc()
		switch e.Type {
		case event.LoanDisbursed:
			c.disbursed.Inc()
		case event.LoanDefaulted:
			c.defaulted.Inc()
			if borrowerWasActive(e) {
				c.members.Dec()
			}
		case event.MemberActivated:
			c.members.Inc()
		case event.AccountClosed:
			c.members.Dec()
		}
	}
}

// borrowerWasActive reads was_active from a LoanDefaulted payload. Payloads
// without the field count as active.
func borrowerWasActive(e event.Event) bool {
	var p struct {
		WasActive *bool `json:"was_active"`
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil || p.WasActive == nil {
		return true
	}
	return *p.WasActive
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
