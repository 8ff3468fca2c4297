// Package events provides the in-process audit/event bus: a fire-and-forget
// fan-out that decouples event producers (services, the invoice pipeline)
// from consumers (audit logging, event persistence, billing, e-mail).
//
// Delivery is best-effort by design: each subscriber has a bounded queue and
// a slow subscriber loses entries rather than back-pressuring producers. No
// producer ever blocks on, or learns about, consumer failures.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Event sources.
const (
	SourceInvoice = "app.invoice"
	SourceOrder   = "app.order"
	SourceProduct = "app.product"
)

var (
	busPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bus_events_published_total",
			Help: "Total events published to the in-process bus by source.",
		},
		[]string{"source"},
	)
	busDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bus_events_dropped_total",
			Help: "Total events dropped because a subscriber queue was full.",
		},
		[]string{"subscriber"},
	)
)

func init() {
	prometheus.MustRegister(busPublished, busDropped)
}

// Entry is one published event. Detail carries the event-specific payload
// and is serialized lazily via DetailJSON when a consumer needs it as text.
type Entry struct {
	Source     string
	DetailType string
	Time       time.Time
	Detail     any
}

// DetailJSON returns the Detail payload serialized as JSON, or "{}" when the
// payload cannot be serialized. Consumers persisting events use this.
func (e Entry) DetailJSON() string {
	b, err := json.Marshal(e.Detail)
	if err != nil {
		return "{}"
	}
	return string(b)
}

type subscriber struct {
	name string
	ch   chan Entry
}

// Bus fans published entries out to all subscribers. Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscriber
	closed bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a named consumer and returns its entry channel. The
// buffer bounds how far the consumer may fall behind before entries are
// dropped; values < 1 are coerced to 1. Subscribe after Close returns a
// closed channel.
func (b *Bus) Subscribe(name string, buffer int) <-chan Entry {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Entry, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, &subscriber{name: name, ch: ch})
	return ch
}

// Publish delivers the entry to every subscriber without blocking. Entries
// for full subscriber queues are counted and dropped.
func (b *Bus) Publish(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	busPublished.WithLabelValues(e.Source).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		default:
			busDropped.WithLabelValues(s.name).Inc()
			log.Warn().
				Str("subscriber", s.name).
				Str("source", e.Source).
				Str("detail_type", e.DetailType).
				Msg("event bus subscriber queue full; entry dropped")
		}
	}
}

// Close closes every subscriber channel. Publish after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}
