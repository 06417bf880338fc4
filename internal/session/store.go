package session

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
)

var (
	ErrAlreadyStarted = errors.New("session store already started")
	ErrNotReady       = errors.New("session is not ready")
	ErrNothingToRetry = errors.New("session has no failed load to retry")
)

type IdentitySource interface {
	OnIdentityChange(listener func(*entities.Identity)) (unsubscribe func())
}

type Loader interface {
	Load(ctx context.Context, identity entities.Identity) (*entities.Profile, error)
}

// Store is the single owner of the session state. Every load it starts is tagged with a
// generation; a result whose generation is no longer current is dropped.
type Store struct {
	source IdentitySource
	loader Loader

	ctx    context.Context
	cancel context.CancelFunc
	loads  sync.WaitGroup

	mu            sync.Mutex
	state         State
	generation    uint64
	cancelLoad    context.CancelFunc
	started       bool
	disposed      bool
	watchers      map[uint64]chan State
	nextWatcherID uint64
	hooks         []func(prev, next State)
}

func NewStore(source IdentitySource, loader Loader) (*Store, error) {
	if source == nil {
		return nil, errors.New("identity source is nil")
	}
	if loader == nil {
		return nil, errors.New("profile loader is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		source:   source,
		loader:   loader,
		ctx:      ctx,
		cancel:   cancel,
		state:    State{Status: StatusLoading},
		watchers: make(map[uint64]chan State),
	}, nil
}

// Start registers the one identity listener of this store. The returned dispose
// unregisters it, cancels in-flight loads and closes every Watch channel.
func (s *Store) Start() (func(), error) {

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	unsubscribe := s.source.OnIdentityChange(s.onIdentityChange)

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			s.dispose()
		})
	}, nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Watch returns a channel holding the latest state; intermediate states may be skipped
// by a slow reader. The current state is available immediately.
func (s *Store) Watch() (<-chan State, func()) {

	ch := make(chan State, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		ch <- s.state.clone()
		close(ch)
		return ch, func() {}
	}

	s.nextWatcherID++
	id := s.nextWatcherID
	s.watchers[id] = ch
	ch <- s.state.clone()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if watcher, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(watcher)
		}
	}
}

// OnTransition registers a hook called synchronously, in order, for every state change.
// Hooks must not call back into the store.
func (s *Store) OnTransition(hook func(prev, next State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Retry reloads the profile after a failed fetch. A missing profile is not retried.
func (s *Store) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || s.state.Status != StatusError || s.state.Identity == nil ||
		errors.Is(s.state.Err, ErrProfileMissing) {
		return ErrNothingToRetry
	}

	s.beginLoad(*s.state.Identity)
	return nil
}

// Refresh re-reads the profile of the current identity and stays Ready while doing so.
func (s *Store) Refresh(ctx context.Context) error {

	s.mu.Lock()
	if s.disposed || s.state.Status != StatusReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	identity := *s.state.Identity
	generation := s.generation
	s.mu.Unlock()

	profile, err := s.loader.Load(ctx, identity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || generation != s.generation || s.state.Status != StatusReady {
		return nil
	}
	s.setState(State{Identity: &identity, Profile: profile, Status: StatusReady})
	return nil
}

func (s *Store) onIdentityChange(identity *entities.Identity) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	if identity == nil {
		s.abortLoad()
		s.generation++
		if s.state.Status != StatusSignedOut {
			s.setState(State{Status: StatusSignedOut})
		}
		return
	}

	if s.state.Identity.SameAs(identity) &&
		(s.state.Status == StatusReady || s.state.Status == StatusLoading) {
		return
	}

	s.beginLoad(*identity)
}

// beginLoad must be called with mu held.
func (s *Store) beginLoad(identity entities.Identity) {

	s.abortLoad()
	s.generation++
	generation := s.generation

	s.setState(State{Identity: &identity, Status: StatusLoading})

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelLoad = cancel

	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		defer cancel()

		profile, err := s.loader.Load(ctx, identity)
		s.completeLoad(generation, identity, profile, err)
	}()
}

func (s *Store) completeLoad(generation uint64, identity entities.Identity, profile *entities.Profile, err error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || generation != s.generation {
		log.Debugf("discarding stale profile load for %s", identity.UID)
		return
	}
	s.cancelLoad = nil

	switch {
	case err != nil:
		s.setState(State{Identity: &identity, Status: StatusError, Err: err})
	case profile == nil:
		s.setState(State{Identity: &identity, Status: StatusError, Err: ErrProfileMissing})
	default:
		s.setState(State{Identity: &identity, Profile: profile, Status: StatusReady})
	}
}

func (s *Store) abortLoad() {
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
}

// setState must be called with mu held.
func (s *Store) setState(next State) {

	prev := s.state
	s.state = next

	log.Debugf("session %s -> %s", prev.Status, next.Status)

	for _, hook := range s.hooks {
		hook(prev.clone(), next.clone())
	}

	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- next.clone()
	}
}

func (s *Store) dispose() {

	s.mu.Lock()
	s.disposed = true
	s.abortLoad()
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.mu.Unlock()

	s.cancel()
	s.loads.Wait()
}
