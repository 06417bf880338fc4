package livequery

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/session"
	log "github.com/sirupsen/logrus"
)

// ScopeFunc derives the scope of a screen from the session. It returns false when the
// state gives the screen nothing to show.
type ScopeFunc func(state session.State) (docstore.Query, bool)

// Follow keeps the manager scoped to the session: a state without a user clears the
// subscription, and the manager is closed when ctx ends or states is closed.
func (m *Manager[T]) Follow(ctx context.Context, states <-chan session.State, scope ScopeFunc) error {

	defer m.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-states:
			if !ok {
				return nil
			}
			if !state.SignedIn() {
				m.Clear()
				continue
			}
			q, ok := scope(state)
			if !ok {
				m.Clear()
				continue
			}
			if err := m.SetScope(q); err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeSubscription).
					Errorf("failed to open live query: %v", err)
			}
		}
	}
}
