package screens

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/livequery"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/maxaizer/jobmarket/internal/session"
)

// List is a screen showing one live query whose scope is derived from the session.
type List[T any] struct {
	manager *livequery.Manager[T]
	scope   livequery.ScopeFunc
}

func newList[T any](subscriber livequery.Subscriber, decode livequery.Decoder[T], scope livequery.ScopeFunc) *List[T] {
	return &List[T]{manager: livequery.NewManager(subscriber, decode), scope: scope}
}

// Run follows the session until ctx ends or states is closed, then releases the subscription.
func (l *List[T]) Run(ctx context.Context, states <-chan session.State) error {
	return l.manager.Follow(ctx, states, l.scope)
}

func (l *List[T]) Items() []T {
	return l.manager.Items()
}

func (l *List[T]) Updates() <-chan livequery.Update[T] {
	return l.manager.Updates()
}

func (l *List[T]) Err() error {
	return l.manager.Err()
}

func (l *List[T]) Retry() error {
	return l.manager.Retry()
}

func (l *List[T]) Live() bool {
	return l.manager.Live()
}

// readyAs reports whether the state is a loaded session of the given role.
func readyAs(role entities.Role, state session.State) bool {
	return state.Status == session.StatusReady && state.Identity != nil && state.Role() == role
}

func NewAddedJobs(subscriber livequery.Subscriber, relation repositories.OwnerRelation) *List[entities.JobPosting] {
	return newList[entities.JobPosting](subscriber, repositories.DecodeJob, func(state session.State) (docstore.Query, bool) {
		if !readyAs(entities.RoleEmployer, state) {
			return docstore.Query{}, false
		}
		return relation.JobsOwnedBy(*state.Identity), true
	})
}

func NewViewApplications(subscriber livequery.Subscriber, relation repositories.OwnerRelation) *List[entities.Application] {
	return newList[entities.Application](subscriber, repositories.DecodeApplication, employerApplications(relation))
}

// NewJobApplications lists the applications of one job. The owner filter keeps
// another employer's applicants out even with a guessed job id.
func NewJobApplications(subscriber livequery.Subscriber, relation repositories.OwnerRelation, jobID string) *List[entities.Application] {
	return newList[entities.Application](subscriber, repositories.DecodeApplication, func(state session.State) (docstore.Query, bool) {
		if jobID == "" || !readyAs(entities.RoleEmployer, state) {
			return docstore.Query{}, false
		}
		return relation.ApplicationsOwnedBy(*state.Identity).Where("jobId", docstore.Equal, jobID), true
	})
}

func NewMyApplications(subscriber livequery.Subscriber) *List[entities.Application] {
	return newList[entities.Application](subscriber, repositories.DecodeApplication, func(state session.State) (docstore.Query, bool) {
		if !readyAs(entities.RoleEmployee, state) {
			return docstore.Query{}, false
		}
		return repositories.ByApplicantQuery(state.Identity.UID), true
	})
}

func NewNotifications(subscriber livequery.Subscriber) *List[entities.Notification] {
	return newList[entities.Notification](subscriber, repositories.DecodeNotification, func(state session.State) (docstore.Query, bool) {
		if !readyAs(entities.RoleEmployee, state) {
			return docstore.Query{}, false
		}
		return repositories.ForRecipientQuery(state.Identity.UID), true
	})
}

func employerApplications(relation repositories.OwnerRelation) livequery.ScopeFunc {
	return func(state session.State) (docstore.Query, bool) {
		if !readyAs(entities.RoleEmployer, state) {
			return docstore.Query{}, false
		}
		return relation.ApplicationsOwnedBy(*state.Identity), true
	}
}
