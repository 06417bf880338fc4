package navigation

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/session"
	log "github.com/sirupsen/logrus"
	"sync"
)

// Router follows session states and reports a graph only when it differs from the shown one.
type Router struct {
	onChange func(Graph)

	mu      sync.Mutex
	current *Graph
}

func NewRouter(onChange func(Graph)) *Router {
	return &Router{onChange: onChange}
}

func (r *Router) Current() (Graph, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Graph{}, false
	}
	return *r.current, true
}

// Run consumes states until ctx ends or states is closed.
func (r *Router) Run(ctx context.Context, states <-chan session.State) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-states:
			if !ok {
				return nil
			}
			r.apply(state)
		}
	}
}

func (r *Router) apply(state session.State) {

	next := Resolve(state)

	r.mu.Lock()
	if r.current != nil && r.current.Same(next) {
		r.mu.Unlock()
		return
	}
	r.current = &next
	r.mu.Unlock()

	log.Debugf("navigation graph -> %s (initial %q)", next.Name, next.Initial)
	if r.onChange != nil {
		r.onChange(next)
	}
}
