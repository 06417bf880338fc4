package session

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobmarket/internal/config"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"time"
)

// ErrProfileMissing means a signed-in identity has no profile record.
var ErrProfileMissing = errors.New("profile missing for signed-in identity")

// FetchError is a transport failure of the profile point-read.
type FetchError struct {
	UID string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch profile of %s: %v", e.UID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type profileReader interface {
	Get(ctx context.Context, uid string) (*entities.Profile, error)
}

// ProfileLoader resolves an identity to its profile. It keeps no state between calls,
// so loads for different identities may run concurrently.
type ProfileLoader struct {
	profiles   profileReader
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
}

func NewProfileLoader(profiles profileReader, cfg config.SessionConfig) *ProfileLoader {
	return &ProfileLoader{
		profiles:   profiles,
		timeout:    cfg.ProfileFetchTimeout,
		attempts:   max(cfg.ProfileFetchAttempts, 1),
		retryDelay: cfg.ProfileFetchRetryDelay,
	}
}

func (l *ProfileLoader) Load(ctx context.Context, identity entities.Identity) (*entities.Profile, error) {

	start := time.Now()
	var profile *entities.Profile

	_, _, err := lo.AttemptWhileWithDelay(l.attempts, l.retryDelay, func(i int, _ time.Duration) (error, bool) {
		if err := ctx.Err(); err != nil {
			return err, false
		}

		var err error
		profile, err = l.readOnce(ctx, identity.UID)
		switch {
		case err == nil:
			return nil, false
		case errors.Is(err, docstore.ErrNotFound):
			return ErrProfileMissing, false
		case ctx.Err() != nil:
			return ctx.Err(), false
		default:
			log.Debugf("profile read attempt %d for %s failed: %v", i+1, identity.UID, err)
			return &FetchError{UID: identity.UID, Err: err}, true
		}
	})

	metrics.ProfileLoadDuration.WithLabelValues(loadOutcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (l *ProfileLoader) readOnce(ctx context.Context, uid string) (*entities.Profile, error) {
	readCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.profiles.Get(readCtx, uid)
}

func loadOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProfileMissing):
		return "missing"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
