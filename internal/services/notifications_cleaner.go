package services

import (
	"context"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type NotificationCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type NotificationsCleaner struct {
	notifications NotificationCleanupRepository
	cron          *cron.Cron
	retentionDays int
	now           func() time.Time
}

func NewNotificationsCleaner(notifications NotificationCleanupRepository, retentionDays int, schedule string) (*NotificationsCleaner, error) {

	if retentionDays <= 0 {
		return nil, errors.New("retention in days must be greater than zero")
	}

	nc := &NotificationsCleaner{
		notifications: notifications,
		cron:          cron.New(),
		retentionDays: retentionDays,
		now:           time.Now,
	}

	_, err := nc.cron.AddFunc(schedule, func() { nc.Clean(context.Background()) })
	if err != nil {
		return nil, errors.Wrapf(err, "invalid cleanup schedule %q", schedule)
	}

	nc.cron.Start()
	log.Infof("notifications cleaner started, retention in days: %d", nc.retentionDays)
	return nc, nil
}

func (nc *NotificationsCleaner) Stop() {
	<-nc.cron.Stop().Done()
}

// Clean removes notifications older than the retention period.
func (nc *NotificationsCleaner) Clean(ctx context.Context) int {
	cutoff := nc.now().Add(-time.Duration(nc.retentionDays) * 24 * time.Hour)
	removed, err := nc.notifications.RemoveOlderThan(ctx, cutoff)
	if err != nil {
		log.Errorf("Failed to clean old notifications: %v", err)
		return 0
	}
	log.Infof("Old notifications were cleaned at %v, removed: %v", nc.now(), removed)
	return removed
}
