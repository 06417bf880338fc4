package livequery

import (
	"fmt"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
)

var (
	ErrClosed         = errors.New("live query manager is closed")
	ErrNothingToRetry = errors.New("no failed subscription to retry")
)

type Subscriber interface {
	Subscribe(q docstore.Query, onSnapshot func(docstore.Snapshot), onError func(error)) (func(), error)
}

type Decoder[T any] func(docstore.Document) (T, error)

// SubscriptionError is a delivery failure of one scope. It is local to the manager that saw it.
type SubscriptionError struct {
	Scope string
	Err   error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription %s failed: %v", e.Scope, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// Update carries the full list of one scope. Items is nil while the first snapshot is pending
// or after Clear; Err is set once the subscription failed.
type Update[T any] struct {
	Scope string
	Items []T
	Err   error
}

type subscription struct {
	key         string
	query       docstore.Query
	unsubscribe func()
	canceled    bool
	live        bool
}

// Manager keeps at most one live subscription. Changing the scope closes the previous
// subscription before the next one is opened, and callbacks of a closed subscription are dropped.
type Manager[T any] struct {
	subscriber Subscriber
	decode     Decoder[T]
	updates    chan Update[T]

	// ops serializes scope changes; callbacks only take mu
	ops sync.Mutex

	mu     sync.Mutex
	active *subscription
	items  []T
	err    error
	closed bool
}

func NewManager[T any](subscriber Subscriber, decode Decoder[T]) *Manager[T] {
	return &Manager[T]{
		subscriber: subscriber,
		decode:     decode,
		updates:    make(chan Update[T], 1),
	}
}

// Updates delivers the latest update only; a slow reader skips intermediate ones.
// The channel is closed by Close.
func (m *Manager[T]) Updates() <-chan Update[T] {
	return m.updates
}

func (m *Manager[T]) SetScope(q docstore.Query) error {

	if err := q.Validate(); err != nil {
		return err
	}
	key := q.Key()

	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.active != nil && m.active.key == key {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	return m.open(q, key)
}

// Retry reopens the current scope after a delivery error.
func (m *Manager[T]) Retry() error {

	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.active == nil || m.err == nil {
		m.mu.Unlock()
		return ErrNothingToRetry
	}
	q, key := m.active.query, m.active.key
	m.mu.Unlock()

	return m.open(q, key)
}

// Clear drops the subscription and the list, e.g. on sign-out.
func (m *Manager[T]) Clear() {

	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	old := m.detachLocked()
	if !m.closed {
		m.items, m.err = nil, nil
		m.publishLocked(Update[T]{})
	}
	m.mu.Unlock()

	m.release(old)
}

// Close releases the subscription for good. Safe to call more than once.
func (m *Manager[T]) Close() {

	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	old := m.detachLocked()
	m.items, m.err = nil, nil
	close(m.updates)
	m.mu.Unlock()

	m.release(old)
}

func (m *Manager[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]T, len(m.items))
	copy(items, m.items)
	return items
}

func (m *Manager[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// ActiveScope returns the key of the current scope, live or failed.
func (m *Manager[T]) ActiveScope() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.key, true
}

// Live reports whether a subscription is currently open and delivering.
func (m *Manager[T]) Live() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil && m.active.live
}

// open must be called with ops held.
func (m *Manager[T]) open(q docstore.Query, key string) error {

	sub := &subscription{key: key, query: q}

	m.mu.Lock()
	old := m.detachLocked()
	m.active = sub
	m.items, m.err = nil, nil
	m.publishLocked(Update[T]{Scope: key})
	m.mu.Unlock()

	m.release(old)

	unsubscribe, err := m.subscriber.Subscribe(q,
		func(snapshot docstore.Snapshot) { m.onSnapshot(sub, snapshot) },
		func(err error) { m.onError(sub, err) },
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		if m.active == sub {
			m.err = &SubscriptionError{Scope: key, Err: err}
			m.publishLocked(Update[T]{Scope: key, Err: m.err})
		}
		return m.err
	}

	sub.unsubscribe = unsubscribe
	if sub.canceled || m.err != nil {
		// failed or dropped while subscribing
		unsubscribe()
		return nil
	}
	sub.live = true
	metrics.ActiveSubscriptionsGauge.Inc()
	return nil
}

func (m *Manager[T]) onSnapshot(sub *subscription, snapshot docstore.Snapshot) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.canceled || m.active != sub || m.closed {
		return
	}

	items := make([]T, 0, len(snapshot.Documents))
	for _, doc := range snapshot.Documents {
		item, err := m.decode(doc)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSubscription).
				Warnf("skipping malformed document %s in %s: %v", doc.ID, sub.key, err)
			continue
		}
		items = append(items, item)
	}

	m.items = items
	m.publishLocked(Update[T]{Scope: sub.key, Items: m.copyItemsLocked()})
}

func (m *Manager[T]) onError(sub *subscription, err error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.canceled || m.active != sub || m.closed {
		return
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeSubscription).
		Errorf("live query %s failed: %v", sub.key, err)

	if sub.live {
		sub.live = false
		metrics.ActiveSubscriptionsGauge.Dec()
	}
	m.err = &SubscriptionError{Scope: sub.key, Err: err}
	m.publishLocked(Update[T]{Scope: sub.key, Items: m.copyItemsLocked(), Err: m.err})
}

// detachLocked marks the active subscription canceled and returns it for release outside mu.
func (m *Manager[T]) detachLocked() *subscription {
	old := m.active
	m.active = nil
	if old != nil {
		old.canceled = true
	}
	return old
}

func (m *Manager[T]) release(sub *subscription) {
	if sub == nil {
		return
	}

	m.mu.Lock()
	unsubscribe := sub.unsubscribe
	wasLive := sub.live
	sub.live = false
	m.mu.Unlock()

	if wasLive {
		metrics.ActiveSubscriptionsGauge.Dec()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (m *Manager[T]) publishLocked(update Update[T]) {
	select {
	case <-m.updates:
	default:
	}
	m.updates <- update
}

func (m *Manager[T]) copyItemsLocked() []T {
	if m.items == nil {
		return nil
	}
	items := make([]T, len(m.items))
	copy(items, m.items)
	return items
}
