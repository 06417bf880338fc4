package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type watcher struct {
	query      Query
	onSnapshot func(Snapshot)
	onError    func(error)
	notify     chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

// Subscribe delivers the full snapshot of q now and after every write to its collection.
// Deliveries of one subscription never overlap and come in order; pending notifications
// are coalesced, so the last snapshot always reflects the latest write. After the first
// error the subscription stops delivering.
func (s *Store) Subscribe(q Query, onSnapshot func(Snapshot), onError func(error)) (func(), error) {

	if err := q.Validate(); err != nil {
		return nil, err
	}
	if onSnapshot == nil {
		return nil, fmt.Errorf("onSnapshot callback is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{
		query:      q,
		onSnapshot: onSnapshot,
		onError:    onError,
		notify:     make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.mu.Lock()
	id := s.nextWatcherID
	s.nextWatcherID++
	if s.watchers[q.Collection] == nil {
		s.watchers[q.Collection] = make(map[uint64]*watcher)
	}
	s.watchers[q.Collection][id] = w
	s.mu.Unlock()

	w.notify <- struct{}{}
	go s.runWatcher(id, w)

	var once sync.Once
	return func() {
		once.Do(func() {
			w.cancel()
			s.removeWatcher(q.Collection, id)
		})
	}, nil
}

// Close stops every live subscription.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for collection, watchers := range s.watchers {
		for _, w := range watchers {
			w.cancel()
		}
		delete(s.watchers, collection)
	}
}

func (s *Store) ActiveSubscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, watchers := range s.watchers {
		total += len(watchers)
	}
	return total
}

func (s *Store) runWatcher(id uint64, w *watcher) {
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.notify:
		}

		docs, err := s.Find(w.ctx, w.query)
		if w.ctx.Err() != nil {
			return
		}

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.removeWatcher(w.query.Collection, id)
			if w.onError != nil {
				w.onError(err)
			}
			return
		}

		w.onSnapshot(Snapshot{Query: w.query, Documents: docs, ReadAt: time.Now()})
	}
}

func (s *Store) removeWatcher(collection string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers[collection], id)
	if len(s.watchers[collection]) == 0 {
		delete(s.watchers, collection)
	}
}

func (s *Store) notifyWatchers(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.watchers[collection] {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}
