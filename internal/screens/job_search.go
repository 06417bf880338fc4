package screens

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/maxaizer/jobmarket/internal/livequery"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/maxaizer/jobmarket/internal/session"
	log "github.com/sirupsen/logrus"
	"strings"
	"sync"
)

// JobSearch narrows jobs in two steps: the title prefix is a server-side range
// query, the criteria run over the delivered list on the client.
type JobSearch struct {
	manager *livequery.Manager[entities.JobPosting]

	sendMu   sync.Mutex
	prefixes chan string

	mu       sync.Mutex
	criteria filter.Criteria
}

func NewJobSearch(subscriber livequery.Subscriber) *JobSearch {
	return &JobSearch{
		manager:  livequery.NewManager[entities.JobPosting](subscriber, repositories.DecodeJob),
		prefixes: make(chan string, 1),
	}
}

// Search replaces the title prefix. Only the latest pending prefix is applied.
func (s *JobSearch) Search(prefix string) {

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	select {
	case <-s.prefixes:
	default:
	}
	s.prefixes <- strings.TrimSpace(prefix)
}

func (s *JobSearch) SetCriteria(criteria filter.Criteria) error {

	if err := criteria.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.criteria = criteria
	s.mu.Unlock()
	return nil
}

func (s *JobSearch) Criteria() filter.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Results is the delivered list with the current criteria applied.
func (s *JobSearch) Results() []entities.JobPosting {
	return filter.Evaluate(s.manager.Items(), s.Criteria())
}

func (s *JobSearch) Updates() <-chan livequery.Update[entities.JobPosting] {
	return s.manager.Updates()
}

func (s *JobSearch) Err() error {
	return s.manager.Err()
}

func (s *JobSearch) Retry() error {
	return s.manager.Retry()
}

// Run applies session and prefix changes in order until ctx ends or states is closed.
func (s *JobSearch) Run(ctx context.Context, states <-chan session.State) error {

	defer s.manager.Close()

	var state session.State
	prefix := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok := <-states:
			if !ok {
				return nil
			}
			state = next
		case prefix = <-s.prefixes:
		}

		if !readyAs(entities.RoleEmployee, state) {
			s.manager.Clear()
			continue
		}
		if err := s.manager.SetScope(repositories.TitlePrefixQuery(prefix)); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSubscription).
				Errorf("failed to search jobs by %q: %v", prefix, err)
		}
	}
}
